package controllers

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"

	config "github.com/duclair/tontine-go/config"
	models "github.com/duclair/tontine-go/models"
)

// notifyUser writes an in-app notification record. Best effort: a failed
// insert is logged, never surfaced to the request that triggered it.
func notifyUser(cfg *config.Config, userID primitive.ObjectID, kind models.NotificationType, title, message string, tontine *models.Tontine, payment *models.Payment) {
	if userID.IsZero() {
		return
	}

	notif := models.Notification{
		ID:        primitive.NewObjectID(),
		UserID:    userID,
		Type:      kind,
		Title:     title,
		Message:   message,
		CreatedAt: time.Now(),
	}
	if tontine != nil {
		notif.TontineID = tontine.ID
	}
	if payment != nil {
		notif.PaymentID = payment.ID
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if _, err := cfg.Collection("notifications").InsertOne(ctx, notif); err != nil {
		log.Printf("could not store notification for %s: %v", userID.Hex(), err)
	}
}

// notifyParticipants fans a notification out to every participant with a
// registered account.
func notifyParticipants(cfg *config.Config, tontine *models.Tontine, kind models.NotificationType, title, message string) {
	for _, p := range tontine.Participants {
		notifyUser(cfg, p.UserID, kind, title, message, tontine, nil)
	}
}

// ---------------- LIST ----------------
func ListNotifications(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		uid := c.GetString("user_id")
		userID, err := primitive.ObjectIDFromHex(uid)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid user id"})
			return
		}

		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		filter := bson.M{"user_id": userID}
		if c.Query("unread") == "true" {
			filter["read"] = false
		}

		opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}).SetLimit(100)
		cursor, err := cfg.Collection("notifications").Find(ctx, filter, opts)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not fetch notifications"})
			return
		}

		var notifs []models.Notification
		if err := cursor.All(ctx, &notifs); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not decode notifications"})
			return
		}
		if notifs == nil {
			notifs = []models.Notification{}
		}

		c.JSON(http.StatusOK, notifs)
	}
}

// ---------------- MARK READ ----------------
func MarkNotificationRead(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		uid := c.GetString("user_id")
		userID, err := primitive.ObjectIDFromHex(uid)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid user id"})
			return
		}

		oid, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid notification id"})
			return
		}

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		res, err := cfg.Collection("notifications").UpdateOne(ctx,
			bson.M{"_id": oid, "user_id": userID},
			bson.M{"$set": bson.M{"read": true}})
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not update notification"})
			return
		}
		if res.MatchedCount == 0 {
			c.JSON(http.StatusNotFound, gin.H{"error": "notification not found"})
			return
		}

		c.JSON(http.StatusOK, gin.H{"message": "notification marked as read", "id": oid.Hex()})
	}
}
