package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	config "github.com/duclair/tontine-go/config"
	engine "github.com/duclair/tontine-go/engine"
	models "github.com/duclair/tontine-go/models"
	utils "github.com/duclair/tontine-go/utils"
)

// ---------------- MARK PAID ----------------
// Multipart form: optional "receipt" file uploaded to Cloudinary and kept
// on the payment record.
func MarkPaymentPaid(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := currentUser(c, cfg)
		if !ok {
			return
		}
		tontine, ok := loadTontine(c, cfg)
		if !ok {
			return
		}

		participantID := c.Param("participantId")
		participant := tontine.ParticipantByID(participantID)
		if participant == nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "participant not found"})
			return
		}

		// a participant marks their own payment; the initiator can record
		// one on a member's behalf (cash handed over in person)
		if participant.UserID != user.ID && tontine.InitiatorID != user.ID {
			c.JSON(http.StatusForbidden, gin.H{"error": "you cannot mark this participant's payment"})
			return
		}

		// --- Handle receipt upload ---
		var receiptURL string
		form, err := c.MultipartForm()
		if err != nil && err != http.ErrNotMultipart {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid form data"})
			return
		}
		if form != nil {
			if files := form.File["receipt"]; len(files) > 0 {
				fileHeader := files[0]
				file, err := fileHeader.Open()
				if err != nil {
					c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to open file"})
					return
				}
				receiptURL, err = utils.UploadReceipt(file, fileHeader)
				file.Close()
				if err != nil {
					c.JSON(http.StatusInternalServerError, gin.H{
						"error":   "receipt upload failed",
						"details": err.Error(),
						"file":    fileHeader.Filename,
					})
					return
				}
			}
		}

		actor := engine.Actor{ID: user.ID.Hex(), Name: user.FullName()}
		updated, err := engine.MarkPaid(tontine, participantID, actor, receiptURL, time.Now())
		if err != nil {
			respondEngineError(c, err)
			return
		}

		if !persistOrRespond(c, cfg, updated) {
			return
		}

		payment := updated.ParticipantByID(participantID).PaymentForCycle(updated.CurrentCycle)
		notifyUser(cfg, updated.InitiatorID, models.NotifPaymentReceived,
			"Paiement déclaré",
			participant.FirstName+" "+participant.LastName+" a déclaré son paiement pour le cycle en cours.",
			updated, payment)

		c.JSON(http.StatusOK, gin.H{
			"message": "payment marked as paid",
			"payment": payment,
		})
	}
}

// ---------------- VALIDATE ----------------
func ValidatePayment(cfg *config.Config) gin.HandlerFunc {
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
			c.JSON(http.StatusForbidden, gin.H{"error": "only the initiator can validate payments"})
			return
		}

		participantID := c.Param("participantId")
		participant := tontine.ParticipantByID(participantID)
		if participant == nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "participant not found"})
			return
		}

		// validation may close the cycle, so remember which one we were on
		cycle := tontine.CurrentCycle

		actor := engine.Actor{ID: user.ID.Hex(), Name: user.FullName()}
		updated, err := engine.ValidatePayment(tontine, participantID, actor, time.Now())
		if err != nil {
			respondEngineError(c, err)
			return
		}

		if !persistOrRespond(c, cfg, updated) {
			return
		}

		payment := updated.ParticipantByID(participantID).PaymentForCycle(cycle)
		if !participant.UserID.IsZero() {
			notifyUser(cfg, participant.UserID, models.NotifPaymentValidated,
				"Paiement validé",
				"Votre paiement pour la tontine \""+updated.Name+"\" a été validé.",
				updated, payment)
		}

		resp := gin.H{
			"message": "payment validated",
			"payment": payment,
			"tontine": updated,
		}
		if updated.CurrentCycle > cycle {
			resp["message"] = "payment validated, cycle advanced"
			if b := updated.CurrentBeneficiary(); b != nil && !b.UserID.IsZero() {
				notifyUser(cfg, b.UserID, models.NotifPayoutReady,
					"Tour de bénéfice",
					"C'est votre tour de recevoir la cagnotte de la tontine \""+updated.Name+"\".",
					updated, nil)
			}
		}
		if updated.Status == models.StatusCompleted {
			resp["message"] = "payment validated, tontine completed"
		}

		c.JSON(http.StatusOK, resp)
	}
}
