package controllers

import (
	"context"
	"math/rand"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	config "github.com/duclair/tontine-go/config"
	engine "github.com/duclair/tontine-go/engine"
	models "github.com/duclair/tontine-go/models"
	utils "github.com/duclair/tontine-go/utils"
)

type tontineInput struct {
	Name                  string                `json:"name"`
	Description           string                `json:"description"`
	Type                  models.TontineType    `json:"type"`
	Amount                int64                 `json:"amount"`
	Currency              string                `json:"currency"`
	Frequency             models.Frequency      `json:"frequency"`
	CustomDays            int                   `json:"custom_days"`
	PaymentDay            *models.PaymentDay    `json:"payment_day"`
	StartDate             string                `json:"start_date"`
	EndDate               *string               `json:"end_date"`
	CollectWindow         *models.CollectWindow `json:"collect_window"`
	MaxParticipants       int                   `json:"max_participants"`
	UnlimitedParticipants bool                  `json:"unlimited_participants"`
	OrderType             models.OrderType      `json:"order_type"`
	GainType              models.GainType       `json:"gain_type"`
	PackDescription       string                `json:"pack_description"`
}

func parseDate(value string) (time.Time, bool) {
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t, true
	}
	// Try fallback formats
	for _, layout := range []string{"2006-01-02", "2006-01-02 15:04", "2006-01-02 15:04:05"} {
		if t, err := time.Parse(layout, value); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// ---------------- CREATE ----------------
func CreateTontine(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := currentUser(c, cfg)
		if !ok {
			return
		}

		var input tontineInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		startDate, ok := parseDate(input.StartDate)
		if !ok {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid start_date format, use RFC3339 or YYYY-MM-DD"})
			return
		}
		var endDate *time.Time
		if input.EndDate != nil && *input.EndDate != "" {
			parsed, ok := parseDate(*input.EndDate)
			if !ok {
				c.JSON(http.StatusBadRequest, gin.H{"error": "invalid end_date format, use RFC3339 or YYYY-MM-DD"})
				return
			}
			endDate = &parsed
		}

		orderType := input.OrderType
		if orderType == "" {
			orderType = models.OrderManual
		}
		gainType := input.GainType
		if gainType == "" {
			gainType = models.GainMoney
		}

		now := time.Now()
		tontine := models.Tontine{
			ID:                    primitive.NewObjectID(),
			InitiatorID:           user.ID,
			Name:                  input.Name,
			Description:           input.Description,
			Type:                  input.Type,
			Amount:                input.Amount,
			Currency:              input.Currency,
			Frequency:             input.Frequency,
			CustomDays:            input.CustomDays,
			PaymentDay:            input.PaymentDay,
			StartDate:             startDate,
			EndDate:               endDate,
			CollectWindow:         input.CollectWindow,
			MaxParticipants:       input.MaxParticipants,
			UnlimitedParticipants: input.UnlimitedParticipants,
			CurrentCycle:          0,
			Status:                models.StatusDraft,
			OrderType:             orderType,
			GainType:              gainType,
			PackDescription:       input.PackDescription,
			InviteCode:            utils.GenerateInviteCode(),
			Participants:          []models.Participant{},
			Version:               1,
			CreatedAt:             now,
			UpdatedAt:             now,
		}
		tontine.InviteLink = utils.BuildInviteLink(cfg.BaseURL, tontine.ID.Hex(), tontine.InviteCode)

		if err := engine.ValidateConfig(&tontine); err != nil {
			respondEngineError(c, err)
			return
		}

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if _, err := cfg.Collection("tontines").InsertOne(ctx, tontine); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not create tontine"})
			return
		}

		c.JSON(http.StatusCreated, tontine)
	}
}

// ---------------- LIST ----------------
func ListTontines(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := currentUser(c, cfg)
		if !ok {
			return
		}

		col := cfg.Collection("tontines")
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		// --- Build filter: tontines the user runs or takes part in ---
		filter := bson.M{"$or": []bson.M{
			{"initiator_id": user.ID},
			{"participants.user_id": user.ID},
		}}
		if q := c.Query("q"); q != "" {
			filter["name"] = bson.M{"$regex": q, "$options": "i"}
		}
		if status := c.Query("status"); status != "" {
			filter["status"] = status
		}

		// --- Fetch data ---
		cursor, err := col.Find(ctx, filter)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not fetch tontines"})
			return
		}

		var tontines []models.Tontine
		if err := cursor.All(ctx, &tontines); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not decode tontines"})
			return
		}

		if len(tontines) == 0 {
			c.JSON(http.StatusOK, []models.Tontine{})
			return
		}

		// --- Pick the most recently updated tontine ---
		latest := tontines[0]
		for _, t := range tontines {
			if t.UpdatedAt.After(latest.UpdatedAt) {
				latest = t
			}
		}

		// --- Generate ETag from latest tontine ---
		etag := utils.GenerateETag(latest.ID, latest.UpdatedAt)
		if match := c.GetHeader("If-None-Match"); match != "" && match == etag {
			c.Status(http.StatusNotModified)
			return
		}
		c.Header("ETag", etag)
		c.Header("Last-Modified", latest.UpdatedAt.UTC().Format(http.TimeFormat))

		c.JSON(http.StatusOK, tontines)
	}
}

// participantView is a participant enriched with the derived status of the
// current cycle.
type participantView struct {
	models.Participant
	CurrentPaymentStatus models.PaymentStatus `json:"current_payment_status"`
	IsCurrentBeneficiary bool                 `json:"is_current_beneficiary"`
}

// ---------------- GET ----------------
func GetTontine(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		tontine, ok := loadTontine(c, cfg)
		if !ok {
			return
		}

		etag := utils.GenerateETag(tontine.ID, tontine.UpdatedAt)
		if match := c.GetHeader("If-None-Match"); match != "" && match == etag {
			c.Status(http.StatusNotModified)
			return
		}
		c.Header("ETag", etag)

		now := time.Now()
		views := make([]participantView, 0, len(tontine.Participants))
		beneficiary := tontine.CurrentBeneficiary()
		for i := range tontine.Participants {
			p := &tontine.Participants[i]
			status := models.PaymentPending
			if tontine.Status == models.StatusActive || tontine.Status == models.StatusSuspended {
				status = engine.PaymentStatusAt(tontine, p, now)
			}
			views = append(views, participantView{
				Participant:          *p,
				CurrentPaymentStatus: status,
				IsCurrentBeneficiary: beneficiary != nil && beneficiary.ID == p.ID,
			})
		}

		resp := gin.H{
			"tontine":      tontine,
			"participants": views,
		}
		if tontine.Status == models.StatusActive {
			if due, err := engine.DueDateForCycle(tontine, tontine.CurrentCycle); err == nil {
				resp["next_due_date"] = due
				resp["in_collect_window"] = engine.InCollectWindow(tontine, now)
			}
		}

		c.JSON(http.StatusOK, resp)
	}
}

// ---------------- UPDATE ----------------
func UpdateTontine(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		role := c.GetString("role")
		requesterID := c.GetString("user_id")
		if requesterID == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		tontine, ok := loadTontine(c, cfg)
		if !ok {
			return
		}

		if role != "admin" && tontine.InitiatorID.Hex() != requesterID {
			c.JSON(http.StatusForbidden, gin.H{"error": "access denied"})
			return
		}

		// configuration is frozen once the tontine leaves draft
		if tontine.Status != models.StatusDraft {
			c.JSON(http.StatusConflict, gin.H{"error": "only a draft tontine can be edited"})
			return
		}

		var input tontineInput
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		updated := tontine.Clone()
		if input.Name != "" {
			updated.Name = input.Name
		}
		if input.Description != "" {
			updated.Description = input.Description
		}
		if input.Type != "" {
			updated.Type = input.Type
		}
		if input.Amount > 0 {
			updated.Amount = input.Amount
		}
		if input.Currency != "" {
			updated.Currency = input.Currency
		}
		if input.Frequency != "" {
			updated.Frequency = input.Frequency
		}
		if input.CustomDays > 0 {
			updated.CustomDays = input.CustomDays
		}
		if input.PaymentDay != nil {
			updated.PaymentDay = input.PaymentDay
		}
		if input.StartDate != "" {
			parsed, ok := parseDate(input.StartDate)
			if !ok {
				c.JSON(http.StatusBadRequest, gin.H{"error": "invalid start_date format, use RFC3339 or YYYY-MM-DD"})
				return
			}
			updated.StartDate = parsed
		}
		if input.EndDate != nil && *input.EndDate != "" {
			parsed, ok := parseDate(*input.EndDate)
			if !ok {
				c.JSON(http.StatusBadRequest, gin.H{"error": "invalid end_date format, use RFC3339 or YYYY-MM-DD"})
				return
			}
			updated.EndDate = &parsed
		}
		if input.CollectWindow != nil {
			updated.CollectWindow = input.CollectWindow
		}
		if input.MaxParticipants > 0 {
			updated.MaxParticipants = input.MaxParticipants
		}
		updated.UnlimitedParticipants = input.UnlimitedParticipants
		if input.OrderType != "" {
			updated.OrderType = input.OrderType
		}
		if input.GainType != "" {
			updated.GainType = input.GainType
		}
		if input.PackDescription != "" {
			updated.PackDescription = input.PackDescription
		}
		updated.UpdatedAt = time.Now()

		if err := engine.ValidateConfig(updated); err != nil {
			respondEngineError(c, err)
			return
		}

		if !persistOrRespond(c, cfg, updated) {
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"message": "tontine updated successfully",
			"tontine": updated,
		})
	}
}

// ---------------- DELETE ----------------
func DeleteTontine(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		role := c.GetString("role")
		requesterID := c.GetString("user_id")
		if requesterID == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		tontine, ok := loadTontine(c, cfg)
		if !ok {
			return
		}

		if role != "admin" && tontine.InitiatorID.Hex() != requesterID {
			c.JSON(http.StatusForbidden, gin.H{"error": "access denied"})
			return
		}

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		res, err := cfg.Collection("tontines").DeleteOne(ctx, bson.M{"_id": tontine.ID})
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete tontine"})
			return
		}
		if res.DeletedCount == 0 {
			c.JSON(http.StatusNotFound, gin.H{"error": "tontine not found"})
			return
		}

		// best-effort cleanup of uploaded receipts
		for _, p := range tontine.Participants {
			for _, payment := range p.PaymentHistory {
				if payment.ReceiptURL != "" {
					utils.DeleteFromCloudinary(payment.ReceiptURL)
				}
			}
		}

		c.JSON(http.StatusOK, gin.H{
			"message": "tontine deleted successfully",
			"id":      tontine.ID.Hex(),
		})
	}
}

// ---------------- START ----------------
func StartTontine(cfg *config.Config) gin.HandlerFunc {
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
			c.JSON(http.StatusForbidden, gin.H{"error": "only the initiator can start the tontine"})
			return
		}

		rng := rand.New(rand.NewSource(time.Now().UnixNano()))
		updated, err := engine.Start(tontine, rng, time.Now())
		if err != nil {
			respondEngineError(c, err)
			return
		}

		if !persistOrRespond(c, cfg, updated) {
			return
		}

		notifyParticipants(cfg, updated, models.NotifTontineStarted,
			"Tontine démarrée",
			"La tontine \""+updated.Name+"\" a démarré, le premier cycle est ouvert.")

		c.JSON(http.StatusOK, gin.H{
			"message": "tontine started",
			"tontine": updated,
		})
	}
}

// ---------------- SUSPEND / RESUME ----------------
func ToggleSuspension(cfg *config.Config) gin.HandlerFunc {
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
			c.JSON(http.StatusForbidden, gin.H{"error": "only the initiator can suspend the tontine"})
			return
		}

		updated, err := engine.ToggleSuspension(tontine, time.Now())
		if err != nil {
			respondEngineError(c, err)
			return
		}

		if !persistOrRespond(c, cfg, updated) {
			return
		}

		if updated.Status == models.StatusSuspended {
			notifyParticipants(cfg, updated, models.NotifTontineSuspended,
				"Tontine suspendue",
				"La tontine \""+updated.Name+"\" est suspendue, les paiements sont gelés.")
		}

		c.JSON(http.StatusOK, gin.H{
			"message": "tontine is now " + string(updated.Status),
			"tontine": updated,
		})
	}
}

// ---------------- DASHBOARD ----------------
func DashboardStats(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := currentUser(c, cfg)
		if !ok {
			return
		}

		col := cfg.Collection("tontines")
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		cursor, err := col.Find(ctx, bson.M{"$or": []bson.M{
			{"initiator_id": user.ID},
			{"participants.user_id": user.ID},
		}})
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not fetch tontines"})
			return
		}
		var tontines []models.Tontine
		if err := cursor.All(ctx, &tontines); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "could not decode tontines"})
			return
		}

		now := time.Now()
		var active, pendingPayments, upcomingPayouts int
		var totalAmount int64
		for i := range tontines {
			t := &tontines[i]
			if t.Status != models.StatusActive {
				continue
			}
			active++
			totalAmount += t.Amount * int64(len(t.Participants))

			if p := t.ParticipantByUser(user.ID); p != nil {
				status := engine.PaymentStatusAt(t, p, now)
				if status == models.PaymentPending || status == models.PaymentOverdue {
					pendingPayments++
				}
				if t.Type == models.TypeTraditional && !p.HasReceivedPayout {
					upcomingPayouts++
				}
			}
		}

		c.JSON(http.StatusOK, gin.H{
			"active_tontines":  active,
			"pending_payments": pendingPayments,
			"upcoming_payouts": upcomingPayouts,
			"total_amount":     totalAmount,
		})
	}
}
