package controller

import (
	"bytes"
	"errors"
	"log"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"inviteflow/engine"
	"inviteflow/models"
	"inviteflow/utils"
)

type RecipientController struct {
	DB     *gorm.DB
	Logger *log.Logger
}

func NewRecipientController(db *gorm.DB, logger *log.Logger) *RecipientController {
	return &RecipientController{
		DB:     db,
		Logger: logger,
	}
}

// CreateRecipient creates a single recipient with validation
func (rc *RecipientController) CreateRecipient(c *fiber.Ctx) error {
	var input struct {
		FirstName    string `json:"first_name" validate:"required,max=100"`
		LastName     string `json:"last_name" validate:"required,max=100"`
		Email        string `json:"email" validate:"required,email"`
		Organization string `json:"organization" validate:"required,max=200"`
		Role         string `json:"role" validate:"required,max=200"`
		Achievement  string `json:"achievement" validate:"required"`
		Source       string `json:"source"`
	}

	if err := c.BodyParser(&input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}
	if err := utils.ValidateStruct(input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", err)
	}

	// Check if recipient already exists
	var existing models.Recipient
	if err := rc.DB.Where("email = ?", strings.ToLower(input.Email)).First(&existing).Error; err == nil {
		return utils.ErrorResponse(c, fiber.StatusConflict, "Recipient with this email already exists", nil)
	}

	recipient := models.Recipient{
		FirstName:    input.FirstName,
		LastName:     input.LastName,
		Email:        strings.ToLower(input.Email),
		Organization: input.Organization,
		Role:         input.Role,
		Achievement:  input.Achievement,
		Source:       input.Source,
		Status:       models.RecipientNoResponse,
	}

	if err := rc.DB.Create(&recipient).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to create recipient", err)
	}

	return c.Status(fiber.StatusCreated).JSON(utils.SuccessResponse(recipient))
}

// GetRecipients returns paginated recipients with an optional status filter
func (rc *RecipientController) GetRecipients(c *fiber.Ctx) error {
	page, _ := strconv.Atoi(c.Query("page", "1"))
	limit, _ := strconv.Atoi(c.Query("limit", "20"))
	if limit > 100 {
		limit = 100
	}
	if page < 1 {
		page = 1
	}

	query := rc.DB.Model(&models.Recipient{})
	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}
	if search := c.Query("search"); search != "" {
		like := "%" + search + "%"
		query = query.Where("first_name ILIKE ? OR last_name ILIKE ? OR email ILIKE ? OR organization ILIKE ?",
			like, like, like, like)
	}

	var total int64
	query.Count(&total)

	var recipients []models.Recipient
	if err := query.Order("created_at DESC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&recipients).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to fetch recipients", err)
	}

	return c.JSON(utils.PaginatedResponse{
		Data:  recipients,
		Total: total,
		Page:  page,
		Limit: limit,
	})
}

// GetRecipient returns a single recipient
func (rc *RecipientController) GetRecipient(c *fiber.Ctx) error {
	var recipient models.Recipient
	if err := rc.DB.First(&recipient, c.Params("id")).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Recipient not found", nil)
	}
	return c.JSON(utils.SuccessResponse(recipient))
}

// UpdateRecipientStatus moves a recipient through the engagement states.
// Illegal moves are rejected instead of trusting the writer.
func (rc *RecipientController) UpdateRecipientStatus(c *fiber.Ctx) error {
	var input struct {
		Status string `json:"status" validate:"required,oneof=no-response invited responded confirmed declined"`
	}

	if err := c.BodyParser(&input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Invalid request body", err)
	}
	if err := utils.ValidateStruct(input); err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "Validation failed", err)
	}

	var recipient models.Recipient
	if err := rc.DB.First(&recipient, c.Params("id")).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Recipient not found", nil)
	}

	if err := engine.TransitionRecipient(&recipient, input.Status); err != nil {
		var invalid *engine.InvalidTransitionError
		if errors.As(err, &invalid) {
			return utils.ErrorResponse(c, fiber.StatusConflict, "Illegal status transition", err)
		}
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to update status", err)
	}
	recipient.LastContactDate = utils.Pointer(time.Now())

	if err := rc.DB.Save(&recipient).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to update recipient", err)
	}

	return c.JSON(utils.SuccessResponse(recipient))
}

// DeleteRecipient removes a recipient (UI affordance; the engine itself
// never deletes)
func (rc *RecipientController) DeleteRecipient(c *fiber.Ctx) error {
	var recipient models.Recipient
	if err := rc.DB.First(&recipient, c.Params("id")).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusNotFound, "Recipient not found", nil)
	}

	if err := rc.DB.Delete(&recipient).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to delete recipient", err)
	}

	return c.JSON(utils.SuccessResponse(fiber.Map{"message": "Recipient deleted"}))
}

// ImportRecipients imports recipients from a CSV upload. The file is
// accepted or rejected as one unit: a malformed row rolls back everything.
func (rc *RecipientController) ImportRecipients(c *fiber.Ctx) error {
	file, err := c.FormFile("file")
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "File upload error", err)
	}

	// Check file size (max 5MB)
	if file.Size > 5<<20 {
		return utils.ErrorResponse(c, fiber.StatusBadRequest, "File too large (max 5MB)", nil)
	}

	src, err := file.Open()
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to open file", err)
	}
	defer src.Close()

	recipients, err := utils.ParseRecipientsCSV(src)
	if err != nil {
		var formatErr *utils.ImportFormatError
		if errors.As(err, &formatErr) {
			return utils.ErrorResponse(c, fiber.StatusBadRequest, "Import rejected", err)
		}
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to parse file", err)
	}

	if err := rc.DB.Transaction(func(tx *gorm.DB) error {
		return tx.CreateInBatches(&recipients, 100).Error
	}); err != nil {
		rc.Logger.Printf("Failed to import recipients: %v", err)
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to import recipients", err)
	}

	rc.Logger.Printf("Imported %d recipients from %s", len(recipients), file.Filename)

	return c.JSON(utils.SuccessResponse(fiber.Map{
		"message":  "Recipients imported successfully",
		"imported": len(recipients),
	}))
}

// ExportRecipients exports all recipients to CSV. The file is rendered
// into a buffer first so a failure can still use the JSON error envelope.
func (rc *RecipientController) ExportRecipients(c *fiber.Ctx) error {
	var recipients []models.Recipient
	if err := rc.DB.Order("created_at").Find(&recipients).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to fetch recipients", err)
	}

	var buf bytes.Buffer
	if err := utils.WriteRecipientsCSV(&buf, recipients); err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to export recipients", err)
	}

	c.Set("Content-Type", "text/csv")
	c.Set("Content-Disposition", "attachment; filename=recipients_export_"+time.Now().Format("20060102")+".csv")
	return c.Send(buf.Bytes())
}

// GetImportTemplate returns the CSV header users fill in before uploading
func (rc *RecipientController) GetImportTemplate(c *fiber.Ctx) error {
	c.Set("Content-Type", "text/csv")
	c.Set("Content-Disposition", "attachment; filename=recipients_template.csv")
	return c.SendString(utils.RecipientCSVTemplate())
}
