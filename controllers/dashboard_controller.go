package controller

import (
	"log"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"inviteflow/engine"
	"inviteflow/models"
	"inviteflow/utils"
)

type DashboardController struct {
	DB     *gorm.DB
	Logger *log.Logger
}

func NewDashboardController(db *gorm.DB, logger *log.Logger) *DashboardController {
	return &DashboardController{
		DB:     db,
		Logger: logger,
	}
}

// GetDashboardStats returns the global outreach snapshot, recomputed from
// campaign counters on every request.
func (dc *DashboardController) GetDashboardStats(c *fiber.Ctx) error {
	var campaigns []models.EmailCampaign
	if err := dc.DB.Find(&campaigns).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to fetch campaigns", err)
	}

	var confirmed int64
	dc.DB.Model(&models.Recipient{}).
		Where("status = ?", models.RecipientConfirmed).
		Count(&confirmed)

	var daily []models.DailyStat
	if err := dc.DB.Order("date").Find(&daily).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to fetch daily stats", err)
	}

	return c.JSON(utils.SuccessResponse(engine.RollUp(campaigns, int(confirmed), daily)))
}

// GetMetricsOverTime returns the per-day event series for the last N days
// (default 30).
func (dc *DashboardController) GetMetricsOverTime(c *fiber.Ctx) error {
	days, _ := strconv.Atoi(c.Query("days", "30"))
	if days < 1 || days > 365 {
		days = 30
	}
	since := engine.Day(time.Now().AddDate(0, 0, -days+1))

	var daily []models.DailyStat
	if err := dc.DB.Where("date >= ?", since).Order("date").Find(&daily).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to fetch daily stats", err)
	}

	return c.JSON(utils.SuccessResponse(fiber.Map{
		"since": since,
		"days":  days,
		"stats": daily,
	}))
}

// GetStatusBreakdown returns recipient counts grouped by engagement status
func (dc *DashboardController) GetStatusBreakdown(c *fiber.Ctx) error {
	type row struct {
		Status string `json:"status"`
		Count  int64  `json:"count"`
	}
	var rows []row
	if err := dc.DB.Model(&models.Recipient{}).
		Select("status, COUNT(*) AS count").
		Group("status").
		Find(&rows).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Failed to fetch breakdown", err)
	}

	return c.JSON(utils.SuccessResponse(rows))
}
