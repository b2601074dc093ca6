package controllers

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"

	config "github.com/duclair/tontine-go/config"
	engine "github.com/duclair/tontine-go/engine"
	models "github.com/duclair/tontine-go/models"
	utils "github.com/duclair/tontine-go/utils"
)

// ---------------- ADD ----------------
func AddParticipant(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := currentUser(c, cfg)
		if !ok {
			return
		}
		tontine, ok := loadTontine(c, cfg)
		if !ok {
			return
		}
		if tontine.InitiatorID != user.ID {
			c.JSON(http.StatusForbidden, gin.H{"error": "only the initiator can add participants"})
			return
		}

		var input struct {
			FirstName string `json:"first_name" binding:"required"`
			LastName  string `json:"last_name" binding:"required"`
			Email     string `json:"email" binding:"required,email"`
			Phone     string `json:"phone"`
			Address   string `json:"address"`
		}
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		participant := models.Participant{
			ID:        uuid.NewString(),
			FirstName: input.FirstName,
			LastName:  input.LastName,
			Email:     strings.ToLower(strings.TrimSpace(input.Email)),
			Phone:     input.Phone,
			Address:   input.Address,
			AddedBy:   "manual",
		}

		updated, err := engine.AddParticipant(tontine, participant, time.Now())
		if err != nil {
			respondEngineError(c, err)
			return
		}

		if !persistOrRespond(c, cfg, updated) {
			return
		}

		c.JSON(http.StatusCreated, gin.H{
			"message": "participant added",
			"tontine": updated,
		})
	}
}

// ---------------- JOIN BY CODE ----------------
func JoinTontine(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := currentUser(c, cfg)
		if !ok {
			return
		}

		var input struct {
			InviteCode string `json:"invite_code" binding:"required"`
		}
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		var tontine models.Tontine
		err := cfg.Collection("tontines").FindOne(ctx, bson.M{
			"invite_code": strings.ToUpper(strings.TrimSpace(input.InviteCode)),
		}).Decode(&tontine)
		if err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "no tontine matches this invite code"})
			return
		}

		if tontine.ParticipantByUser(user.ID) != nil {
			c.JSON(http.StatusConflict, gin.H{"error": "you already joined this tontine"})
			return
		}

		participant := models.Participant{
			ID:        uuid.NewString(),
			UserID:    user.ID,
			FirstName: user.FirstName,
			LastName:  user.LastName,
			Email:     user.Email,
			Phone:     user.Phone,
			Address:   user.Address,
			AddedBy:   "code",
		}

		updated, err := engine.AddParticipant(&tontine, participant, time.Now())
		if err != nil {
			respondEngineError(c, err)
			return
		}

		if !persistOrRespond(c, cfg, updated) {
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"message": "joined tontine",
			"tontine": updated,
		})
	}
}

// ---------------- REMOVE ----------------
func RemoveParticipant(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := currentUser(c, cfg)
		if !ok {
			return
		}
		tontine, ok := loadTontine(c, cfg)
		if !ok {
			return
		}
		if tontine.InitiatorID != user.ID {
			c.JSON(http.StatusForbidden, gin.H{"error": "only the initiator can remove participants"})
			return
		}

		updated, err := engine.RemoveParticipant(tontine, c.Param("participantId"), time.Now())
		if err != nil {
			respondEngineError(c, err)
			return
		}

		if !persistOrRespond(c, cfg, updated) {
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"message": "participant removed",
			"tontine": updated,
		})
	}
}

// ---------------- REORDER ----------------
func ReorderParticipants(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := currentUser(c, cfg)
		if !ok {
			return
		}
		tontine, ok := loadTontine(c, cfg)
		if !ok {
			return
		}
		if tontine.InitiatorID != user.ID {
			c.JSON(http.StatusForbidden, gin.H{"error": "only the initiator can reorder participants"})
			return
		}
		if tontine.Status != models.StatusDraft {
			c.JSON(http.StatusConflict, gin.H{"error": "order is frozen once the tontine has started"})
			return
		}

		var input struct {
			Order []string `json:"order" binding:"required"`
		}
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		updated, err := engine.ReorderParticipants(tontine, input.Order, time.Now())
		if err != nil {
			respondEngineError(c, err)
			return
		}

		if !persistOrRespond(c, cfg, updated) {
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"message": "participants reordered",
			"tontine": updated,
		})
	}
}

// ---------------- INVITE BY EMAIL ----------------
func InviteParticipant(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := currentUser(c, cfg)
		if !ok {
			return
		}
		tontine, ok := loadTontine(c, cfg)
		if !ok {
			return
		}
		if tontine.InitiatorID != user.ID {
			c.JSON(http.StatusForbidden, gin.H{"error": "only the initiator can send invites"})
			return
		}

		var input struct {
			Email string `json:"email" binding:"required,email"`
			Name  string `json:"name"`
		}
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		err := utils.SendInviteEmail(input.Email, input.Name, tontine.Name, tontine.InviteCode, tontine.InviteLink)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not send invite", "details": err.Error()})
			return
		}

		c.JSON(http.StatusOK, gin.H{"message": "invite sent to " + input.Email})
	}
}
