package controller

import (
	"log"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"inviteflow/engine"
	"inviteflow/models"
	"inviteflow/utils"
)

type TemplateController struct {
	DB     *gorm.DB
	Logger *log.Logger
}

func NewTemplateController(db *gorm.DB, logger *log.Logger) *TemplateController {
	return &TemplateController{
		DB:     db,
		Logger: logger,
	}
}

type templateInput struct {
	Name    string `json:"name" validate:"required,max=200"`
	Subject string `json:"subject" validate:"required"`
	Body    string `json:"body" validate:"required"`
	Type    string `json:"type" validate:"required,oneof=invitation followup final-reminder"`
}

// CreateTemplate creates a new email template
func (tc *TemplateController) CreateTemplate(c *fiber.Ctx) error {
	var input templateInput
	if err := c.BodyParser(&input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}
	if err := utils.ValidateStruct(input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", err)
	}

	template := models.EmailTemplate{
		Name:    input.Name,
		Subject: input.Subject,
		Body:    input.Body,
		Type:    input.Type,
	}

	if err := tc.DB.Create(&template).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to create template", err)
	}

	return c.Status(fiber.StatusCreated).JSON(utils.SuccessResponse(template))
}

// GetTemplates returns all templates, optionally filtered by type
func (tc *TemplateController) GetTemplates(c *fiber.Ctx) error {
	query := tc.DB.Model(&models.EmailTemplate{})
	if t := c.Query("type"); t != "" {
		query = query.Where("type = ?", t)
	}

	var templates []models.EmailTemplate
	if err := query.Order("created_at DESC").Find(&templates).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to fetch templates", err)
	}

	return c.JSON(utils.SuccessResponse(templates))
}

// GetTemplate returns a single template
func (tc *TemplateController) GetTemplate(c *fiber.Ctx) error {
	var template models.EmailTemplate
	if err := tc.DB.First(&template, c.Params("id")).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Template not found", nil)
	}
	return c.JSON(utils.SuccessResponse(template))
}

// UpdateTemplate updates a template in place
func (tc *TemplateController) UpdateTemplate(c *fiber.Ctx) error {
	var input templateInput
	if err := c.BodyParser(&input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}
	if err := utils.ValidateStruct(input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", err)
	}

	var template models.EmailTemplate
	if err := tc.DB.First(&template, c.Params("id")).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Template not found", nil)
	}

	template.Name = input.Name
	template.Subject = input.Subject
	template.Body = input.Body
	template.Type = input.Type

	if err := tc.DB.Save(&template).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to update template", err)
	}

	return c.JSON(utils.SuccessResponse(template))
}

// DeleteTemplate removes a template. Sequences referencing it keep the id;
// the resolver reports the dangling reference when the sequence is next
// planned.
func (tc *TemplateController) DeleteTemplate(c *fiber.Ctx) error {
	var template models.EmailTemplate
	if err := tc.DB.First(&template, c.Params("id")).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Template not found", nil)
	}

	var referencing int64
	tc.DB.Model(&models.EmailSequence{}).
		Where("initial_email_id = ? OR follow_up_email_id = ? OR final_reminder_email_id = ?",
			template.ID, template.ID, template.ID).
		Count(&referencing)

	if err := tc.DB.Delete(&template).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to delete template", err)
	}

	resp := fiber.Map{"message": "Template deleted"}
	if referencing > 0 {
		resp["warning"] = "template is still referenced by existing sequences"
		tc.Logger.Printf("Template %d deleted while referenced by %d sequences", template.ID, referencing)
	}
	return c.JSON(utils.SuccessResponse(resp))
}

// PreviewTemplate renders a template against a recipient, exercising the
// personalization engine without sending anything
func (tc *TemplateController) PreviewTemplate(c *fiber.Ctx) error {
	var input struct {
		RecipientID uint `json:"recipient_id" validate:"required"`
	}
	if err := c.BodyParser(&input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}
	if err := utils.ValidateStruct(input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", err)
	}

	var template models.EmailTemplate
	if err := tc.DB.First(&template, c.Params("id")).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Template not found", nil)
	}

	var recipient models.Recipient
	if err := tc.DB.First(&recipient, input.RecipientID).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Recipient not found", nil)
	}

	attrs := engine.PersonalizationFor(&recipient)
	return c.JSON(utils.SuccessResponse(fiber.Map{
		"subject": engine.PersonalizeSubject(template.Subject, attrs),
		"body":    engine.PersonalizeBody(template.Body, attrs),
	}))
}
