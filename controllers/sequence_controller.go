package controller

import (
	"errors"
	"log"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"inviteflow/engine"
	"inviteflow/models"
	"inviteflow/utils"
)

type SequenceController struct {
	DB     *gorm.DB
	Logger *log.Logger
}

func NewSequenceController(db *gorm.DB, logger *log.Logger) *SequenceController {
	return &SequenceController{
		DB:     db,
		Logger: logger,
	}
}

// dbTemplateStore resolves template references against the database for
// sequence planning.
type dbTemplateStore struct {
	db *gorm.DB
}

func (s dbTemplateStore) TemplateByID(id uint) (*models.EmailTemplate, error) {
	var template models.EmailTemplate
	if err := s.db.First(&template, id).Error; err != nil {
		return nil, err
	}
	return &template, nil
}

type sequenceInput struct {
	Name                 string `json:"name" validate:"required,max=200"`
	InitialEmailID       uint   `json:"initial_email_id" validate:"required"`
	FollowUpEmailID      *uint  `json:"follow_up_email_id"`
	FinalReminderEmailID *uint  `json:"final_reminder_email_id"`
	FollowUpDays         int    `json:"follow_up_days" validate:"min=0"`
	FinalReminderDays    int    `json:"final_reminder_days" validate:"min=0"`
}

// CreateSequence creates a sequence after resolving it once against the
// template store, so a broken initial reference never gets saved.
// Chronology problems come back as warnings, not failures.
func (sc *SequenceController) CreateSequence(c *fiber.Ctx) error {
	var input sequenceInput
	if err := c.BodyParser(&input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}
	if err := utils.ValidateStruct(input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", err)
	}

	sequence := models.EmailSequence{
		Name:                 input.Name,
		InitialEmailID:       input.InitialEmailID,
		FollowUpEmailID:      input.FollowUpEmailID,
		FinalReminderEmailID: input.FinalReminderEmailID,
		FollowUpDays:         input.FollowUpDays,
		FinalReminderDays:    input.FinalReminderDays,
	}

	_, warnings, err := engine.ResolvePlan(&sequence, dbTemplateStore{sc.DB})
	if err != nil {
		var missing *engine.MissingInitialTemplateError
		if errors.As(err, &missing) {
			return utils.ErrorResponse(c, fiber.StatusBadRequest, "Initial email template not found", err)
		}
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to resolve sequence", err)
	}

	if err := sc.DB.Create(&sequence).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to create sequence", err)
	}

	resp := fiber.Map{"sequence": sequence}
	if len(warnings) > 0 {
		resp["warnings"] = warnings
	}
	return c.Status(fiber.StatusCreated).JSON(utils.SuccessResponse(resp))
}

// GetSequences returns all sequences
func (sc *SequenceController) GetSequences(c *fiber.Ctx) error {
	var sequences []models.EmailSequence
	if err := sc.DB.Order("created_at DESC").Find(&sequences).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to fetch sequences", err)
	}
	return c.JSON(utils.SuccessResponse(sequences))
}

// GetSequence returns a sequence together with its resolved plan
func (sc *SequenceController) GetSequence(c *fiber.Ctx) error {
	var sequence models.EmailSequence
	if err := sc.DB.First(&sequence, c.Params("id")).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Sequence not found", nil)
	}

	resp := fiber.Map{"sequence": sequence}
	plan, warnings, err := engine.ResolvePlan(&sequence, dbTemplateStore{sc.DB})
	if err != nil {
		resp["plan_error"] = err.Error()
	} else {
		steps := make([]fiber.Map, 0, len(plan.Steps))
		for _, step := range plan.Steps {
			steps = append(steps, fiber.Map{
				"offset_days": step.OffsetDays,
				"template_id": step.Template.ID,
				"template":    step.Template.Name,
				"type":        step.Template.Type,
			})
		}
		resp["plan"] = steps
	}
	if len(warnings) > 0 {
		resp["warnings"] = warnings
	}

	return c.JSON(utils.SuccessResponse(resp))
}

// UpdateSequence updates a sequence, re-resolving it first
func (sc *SequenceController) UpdateSequence(c *fiber.Ctx) error {
	var input sequenceInput
	if err := c.BodyParser(&input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}
	if err := utils.ValidateStruct(input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", err)
	}

	var sequence models.EmailSequence
	if err := sc.DB.First(&sequence, c.Params("id")).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Sequence not found", nil)
	}

	sequence.Name = input.Name
	sequence.InitialEmailID = input.InitialEmailID
	sequence.FollowUpEmailID = input.FollowUpEmailID
	sequence.FinalReminderEmailID = input.FinalReminderEmailID
	sequence.FollowUpDays = input.FollowUpDays
	sequence.FinalReminderDays = input.FinalReminderDays

	_, warnings, err := engine.ResolvePlan(&sequence, dbTemplateStore{sc.DB})
	if err != nil {
		var missing *engine.MissingInitialTemplateError
		if errors.As(err, &missing) {
			return utils.ErrorResponse(c, fiber.StatusBadRequest, "Initial email template not found", err)
		}
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to resolve sequence", err)
	}

	if err := sc.DB.Save(&sequence).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to update sequence", err)
	}

	resp := fiber.Map{"sequence": sequence}
	if len(warnings) > 0 {
		resp["warnings"] = warnings
	}
	return c.JSON(utils.SuccessResponse(resp))
}

// DeleteSequence removes a sequence that no campaign references
func (sc *SequenceController) DeleteSequence(c *fiber.Ctx) error {
	var sequence models.EmailSequence
	if err := sc.DB.First(&sequence, c.Params("id")).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Sequence not found", nil)
	}

	var referencing int64
	sc.DB.Model(&models.EmailCampaign{}).Where("sequence_id = ?", sequence.ID).Count(&referencing)
	if referencing > 0 {
		return utils.ErrorResponse(c, fiber.StatusConflict, "Sequence is referenced by existing campaigns", nil)
	}

	if err := sc.DB.Delete(&sequence).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to delete sequence", err)
	}

	return c.JSON(utils.SuccessResponse(fiber.Map{"message": "Sequence deleted"}))
}
