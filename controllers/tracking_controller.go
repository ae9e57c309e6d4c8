package controller

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"inviteflow/engine"
	"inviteflow/models"
	"inviteflow/utils"
)

type TrackingController struct {
	DB *gorm.DB
}

func NewTrackingController(db *gorm.DB) *TrackingController {
	return &TrackingController{DB: db}
}

// TrackOpen serves the 1x1 pixel and records the open. The pixel is always
// returned, whatever happens to the bookkeeping, so broken tracking never
// shows up in the recipient's mail client.
func (tc *TrackingController) TrackOpen(c *fiber.Ctx) error {
	messageID := c.Params("messageID")
	token := c.Params("token")

	if utils.VerifyTrackingToken(messageID, token) {
		if err := tc.recordOpen(messageID); err != nil {
			utils.LogError("track_open", err, map[string]interface{}{
				"message_id": messageID,
			})
		}
	}

	c.Set("Content-Type", "image/gif")
	c.Set("Cache-Control", "no-store, no-cache, must-revalidate")
	return c.Send(utils.TrackingPixelGIF)
}

func (tc *TrackingController) recordOpen(messageID string) error {
	return tc.DB.Transaction(func(tx *gorm.DB) error {
		var record models.SendRecord
		if err := tx.Where("message_id = ?", messageID).First(&record).Error; err != nil {
			return err
		}
		if record.OpenedAt != nil {
			return nil
		}

		now := time.Now()
		record.OpenedAt = &now
		if err := tx.Save(&record).Error; err != nil {
			return err
		}

		var recipient models.Recipient
		if err := tx.First(&recipient, record.RecipientID).Error; err != nil {
			return err
		}
		if !recipient.EmailOpened {
			recipient.EmailOpened = true
			if err := tx.Save(&recipient).Error; err != nil {
				return err
			}
		}

		// Count the recipient once per campaign, not once per message
		var priorOpens int64
		tx.Model(&models.SendRecord{}).
			Where("campaign_id = ? AND recipient_id = ? AND opened_at IS NOT NULL AND id <> ?",
				record.CampaignID, record.RecipientID, record.ID).
			Count(&priorOpens)
		if priorOpens > 0 {
			return nil
		}

		var campaign models.EmailCampaign
		if err := tx.First(&campaign, record.CampaignID).Error; err != nil {
			return err
		}
		if err := engine.RecordOpened(&campaign); err != nil {
			return err
		}
		if err := tx.Save(&campaign).Error; err != nil {
			return err
		}

		if err := models.BumpDailyStat(tx, engine.Day(now), engine.EventOpened); err != nil {
			return err
		}

		utils.LogEvent("email_opened", map[string]interface{}{
			"campaign_id":  record.CampaignID,
			"recipient_id": record.RecipientID,
		})
		return nil
	})
}

// TrackEvent ingests engagement webhooks (response, confirm, decline) keyed
// by the message id of the email the recipient acted on.
func (tc *TrackingController) TrackEvent(c *fiber.Ctx) error {
	var input struct {
		MessageID string `json:"message_id" validate:"required"`
		Event     string `json:"event" validate:"required,oneof=response confirm decline"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}
	if err := utils.ValidateStruct(input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", err)
	}

	var record models.SendRecord
	if err := tc.DB.Where("message_id = ?", input.MessageID).First(&record).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Unknown message", nil)
	}

	target := map[string]string{
		"response": models.RecipientResponded,
		"confirm":  models.RecipientConfirmed,
		"decline":  models.RecipientDeclined,
	}[input.Event]

	err := tc.DB.Transaction(func(tx *gorm.DB) error {
		var recipient models.Recipient
		if err := tx.First(&recipient, record.RecipientID).Error; err != nil {
			return err
		}

		if err := engine.TransitionRecipient(&recipient, target); err != nil {
			return err
		}
		recipient.LastContactDate = utils.Pointer(time.Now())
		if err := tx.Save(&recipient).Error; err != nil {
			return err
		}

		// A response is counted against the campaign the moment the
		// recipient first moves to responded; the transition table makes
		// that happen at most once.
		if target == models.RecipientResponded {
			var campaign models.EmailCampaign
			if err := tx.First(&campaign, record.CampaignID).Error; err != nil {
				return err
			}
			if err := engine.RecordResponded(&campaign); err != nil {
				return err
			}
			if err := tx.Save(&campaign).Error; err != nil {
				return err
			}
			if err := models.BumpDailyStat(tx, engine.Day(time.Now()), engine.EventResponded); err != nil {
				return err
			}
		}

		utils.LogEvent("recipient_"+input.Event, map[string]interface{}{
			"campaign_id":  record.CampaignID,
			"recipient_id": record.RecipientID,
		})
		return nil
	})
	if err != nil {
		var invalid *engine.InvalidTransitionError
		if errors.As(err, &invalid) {
			return utils.ErrorResponse(c, fiber.StatusConflict, "Illegal status transition", err)
		}
		utils.LogError("track_event", err, map[string]interface{}{
			"message_id": input.MessageID,
			"event":      input.Event,
		})
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to record event", err)
	}

	return c.JSON(utils.SuccessResponse(fiber.Map{"message": "Event recorded"}))
}
