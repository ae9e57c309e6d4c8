package controller

import (
	"errors"
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"inviteflow/engine"
	"inviteflow/models"
	"inviteflow/utils"
)

type CampaignController struct {
	DB     *gorm.DB
	Logger *log.Logger
}

func NewCampaignController(db *gorm.DB, logger *log.Logger) *CampaignController {
	return &CampaignController{
		DB:     db,
		Logger: logger,
	}
}

// CreateCampaign binds a sequence to a recipient cohort. The cohort and
// its count are frozen here; later recipient edits don't touch it.
func (cc *CampaignController) CreateCampaign(c *fiber.Ctx) error {
	var input struct {
		Name         string `json:"name" validate:"required,max=200"`
		SequenceID   uint   `json:"sequence_id" validate:"required"`
		RecipientIDs []uint `json:"recipient_ids" validate:"required,min=1"`
	}

	if err := c.BodyParser(&input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}
	if err := utils.ValidateStruct(input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", err)
	}

	var sequence models.EmailSequence
	if err := cc.DB.First(&sequence, input.SequenceID).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Sequence not found", nil)
	}

	var recipientCount int64
	cc.DB.Model(&models.Recipient{}).Where("id IN ?", input.RecipientIDs).Count(&recipientCount)
	if recipientCount != int64(len(input.RecipientIDs)) {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "One or more recipients not found", nil)
	}

	campaign := models.EmailCampaign{
		Name:           input.Name,
		SequenceID:     sequence.ID,
		Status:         models.CampaignDraft,
		RecipientCount: len(input.RecipientIDs),
	}

	tx := cc.DB.Begin()
	if err := tx.Create(&campaign).Error; err != nil {
		tx.Rollback()
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to create campaign", err)
	}
	for _, recipientID := range input.RecipientIDs {
		if err := tx.Create(&models.CampaignRecipient{
			CampaignID:  campaign.ID,
			RecipientID: recipientID,
		}).Error; err != nil {
			tx.Rollback()
			return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to attach recipients", err)
		}
	}
	tx.Commit()

	return c.Status(fiber.StatusCreated).JSON(utils.SuccessResponse(campaign))
}

// GetCampaigns returns all campaigns
func (cc *CampaignController) GetCampaigns(c *fiber.Ctx) error {
	var campaigns []models.EmailCampaign
	if err := cc.DB.Order("created_at DESC").Find(&campaigns).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to fetch campaigns", err)
	}
	return c.JSON(utils.SuccessResponse(campaigns))
}

// GetCampaign returns a single campaign
func (cc *CampaignController) GetCampaign(c *fiber.Ctx) error {
	var campaign models.EmailCampaign
	if err := cc.DB.First(&campaign, c.Params("id")).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Campaign not found", nil)
	}
	return c.JSON(utils.SuccessResponse(campaign))
}

// UpdateCampaign renames a draft campaign
func (cc *CampaignController) UpdateCampaign(c *fiber.Ctx) error {
	var input struct {
		Name string `json:"name" validate:"required,max=200"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}
	if err := utils.ValidateStruct(input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", err)
	}

	var campaign models.EmailCampaign
	if err := cc.DB.First(&campaign, c.Params("id")).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Campaign not found", nil)
	}

	campaign.Name = input.Name
	if err := cc.DB.Save(&campaign).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to update campaign", err)
	}

	return c.JSON(utils.SuccessResponse(campaign))
}

// StartCampaign activates a campaign. With a future start_date the
// campaign is scheduled and the dispatch worker activates it when the
// date arrives; otherwise it goes in-progress immediately.
func (cc *CampaignController) StartCampaign(c *fiber.Ctx) error {
	var input struct {
		StartDate *time.Time `json:"start_date"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}

	var campaign models.EmailCampaign
	if err := cc.DB.First(&campaign, c.Params("id")).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Campaign not found", nil)
	}

	// Planning failures surface here rather than silently in the worker
	var sequence models.EmailSequence
	if err := cc.DB.First(&sequence, campaign.SequenceID).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusConflict, "Campaign sequence no longer exists", nil)
	}
	_, warnings, err := engine.ResolvePlan(&sequence, dbTemplateStore{cc.DB})
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusConflict, "Campaign sequence cannot be resolved", err)
	}

	now := time.Now()
	start := now
	target := models.CampaignInProgress
	if input.StartDate != nil && input.StartDate.After(now) {
		start = *input.StartDate
		target = models.CampaignScheduled
	}

	if err := engine.TransitionCampaign(&campaign, target); err != nil {
		var invalid *engine.InvalidTransitionError
		if errors.As(err, &invalid) {
			return utils.ErrorResponse(c, fiber.StatusConflict, "Campaign cannot be started from its current status", err)
		}
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to start campaign", err)
	}
	campaign.StartDate = &start

	if err := cc.DB.Save(&campaign).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to start campaign", err)
	}

	cc.Logger.Printf("Campaign %d %s (start %s)", campaign.ID, campaign.Status, start.Format(time.RFC3339))

	resp := fiber.Map{"campaign": campaign}
	if len(warnings) > 0 {
		resp["warnings"] = warnings
	}
	return c.JSON(utils.SuccessResponse(resp))
}

// GetCampaignStats returns counters and zero-safe rates for a campaign
func (cc *CampaignController) GetCampaignStats(c *fiber.Ctx) error {
	var campaign models.EmailCampaign
	if err := cc.DB.First(&campaign, c.Params("id")).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Campaign not found", nil)
	}

	var pendingRecipients int64
	cc.DB.Model(&models.CampaignRecipient{}).
		Where("campaign_id = ? AND recipient_id NOT IN (?)",
			campaign.ID,
			cc.DB.Model(&models.SendRecord{}).Select("recipient_id").Where("campaign_id = ?", campaign.ID)).
		Count(&pendingRecipients)

	return c.JSON(utils.SuccessResponse(fiber.Map{
		"recipient_count":    campaign.RecipientCount,
		"sent_count":         campaign.SentCount,
		"open_count":         campaign.OpenCount,
		"response_count":     campaign.ResponseCount,
		"open_rate":          engine.OpenRate(&campaign),
		"response_rate":      engine.ResponseRate(&campaign),
		"pending_recipients": pendingRecipients,
		"status":             campaign.Status,
		"start_date":         campaign.StartDate,
		"completion_date":    campaign.CompletionDate,
	}))
}
