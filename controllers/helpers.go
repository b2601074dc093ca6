package controllers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	config "github.com/duclair/tontine-go/config"
	engine "github.com/duclair/tontine-go/engine"
	models "github.com/duclair/tontine-go/models"
)

// errStaleWrite means another writer replaced the aggregate between our
// read and our write.
var errStaleWrite = errors.New("tontine was modified concurrently")

// currentUser loads the authenticated user's document.
func currentUser(c *gin.Context, cfg *config.Config) (*models.User, bool) {
	uid := c.GetString("user_id")
	userID, err := primitive.ObjectIDFromHex(uid)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid user id"})
		return nil, false
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var user models.User
	err = cfg.Collection("users").FindOne(ctx, bson.M{"_id": userID}).Decode(&user)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not found"})
		return nil, false
	}
	return &user, true
}

// loadTontine fetches the aggregate by the :id path param.
func loadTontine(c *gin.Context, cfg *config.Config) (*models.Tontine, bool) {
	oid, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid tontine id"})
		return nil, false
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var tontine models.Tontine
	err = cfg.Collection("tontines").FindOne(ctx, bson.M{"_id": oid}).Decode(&tontine)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "tontine not found"})
		return nil, false
	}
	return &tontine, true
}

// replaceTontine writes a new aggregate version. The filter matches on the
// version the command was computed from, so a stale writer gets
// errStaleWrite instead of silently clobbering a newer version.
func replaceTontine(cfg *config.Config, updated *models.Tontine) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	prev := updated.Version
	updated.Version = prev + 1

	res, err := cfg.Collection("tontines").ReplaceOne(ctx,
		bson.M{"_id": updated.ID, "version": prev}, updated)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return errStaleWrite
	}
	return nil
}

// respondEngineError maps the engine's typed rejections onto HTTP statuses.
func respondEngineError(c *gin.Context, err error) {
	switch {
	case engine.IsValidation(err):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case engine.IsCapacity(err):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case engine.IsState(err):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}

// persistOrRespond writes the new aggregate version and answers the request
// on failure. Returns true when the write landed.
func persistOrRespond(c *gin.Context, cfg *config.Config, updated *models.Tontine) bool {
	if err := replaceTontine(cfg, updated); err != nil {
		if errors.Is(err, errStaleWrite) {
			c.JSON(http.StatusConflict, gin.H{"error": errStaleWrite.Error()})
		} else {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not save tontine"})
		}
		return false
	}
	return true
}
