package routes

import (
	"log"
	"os"

	controller "inviteflow/controllers"
	"inviteflow/middleware"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/websocket/v2"
	"gorm.io/gorm"
)

func SetupAPIRoutes(app *fiber.App, db *gorm.DB) {
	// Initialize controllers with their respective loggers
	recipientController := controller.NewRecipientController(db, log.New(os.Stdout, "RECIPIENT: ", log.LstdFlags))
	templateController := controller.NewTemplateController(db, log.New(os.Stdout, "TEMPLATE: ", log.LstdFlags))
	sequenceController := controller.NewSequenceController(db, log.New(os.Stdout, "SEQUENCE: ", log.LstdFlags))
	campaignController := controller.NewCampaignController(db, log.New(os.Stdout, "CAMPAIGN: ", log.LstdFlags))
	dashboardController := controller.NewDashboardController(db, log.New(os.Stdout, "DASHBOARD: ", log.LstdFlags))

	// API group with versioning and protection
	api := app.Group("/api/v1", middleware.Protected(), logger.New(logger.Config{
		Format: "[${time}] ${status} - ${latency} ${method} ${path}\n",
	}))

	// Recipient routes
	recipient := api.Group("/recipients")
	recipient.Post("/", recipientController.CreateRecipient)
	recipient.Get("/", recipientController.GetRecipients)
	recipient.Get("/import/template", recipientController.GetImportTemplate)
	recipient.Get("/export", recipientController.ExportRecipients)
	recipient.Get("/:id", recipientController.GetRecipient)
	recipient.Put("/:id/status", recipientController.UpdateRecipientStatus)
	recipient.Delete("/:id", recipientController.DeleteRecipient)
	recipient.Post("/import", middleware.ImportRateLimiter(), recipientController.ImportRecipients)

	// Template routes
	template := api.Group("/templates")
	template.Post("/", templateController.CreateTemplate)
	template.Get("/", templateController.GetTemplates)
	template.Get("/:id", templateController.GetTemplate)
	template.Put("/:id", templateController.UpdateTemplate)
	template.Delete("/:id", templateController.DeleteTemplate)
	template.Post("/:id/preview", templateController.PreviewTemplate)

	// Sequence routes
	sequence := api.Group("/sequences")
	sequence.Post("/", sequenceController.CreateSequence)
	sequence.Get("/", sequenceController.GetSequences)
	sequence.Get("/:id", sequenceController.GetSequence)
	sequence.Put("/:id", sequenceController.UpdateSequence)
	sequence.Delete("/:id", sequenceController.DeleteSequence)

	// Campaign routes
	campaign := api.Group("/campaigns")
	campaign.Post("/", campaignController.CreateCampaign)
	campaign.Get("/", campaignController.GetCampaigns)
	campaign.Get("/:id", campaignController.GetCampaign)
	campaign.Put("/:id", campaignController.UpdateCampaign)
	campaign.Post("/:id/start", campaignController.StartCampaign)
	campaign.Get("/:id/stats", campaignController.GetCampaignStats)

	// Dashboard routes
	dashboard := api.Group("/dashboard")
	dashboard.Get("/stats", dashboardController.GetDashboardStats)
	dashboard.Get("/metrics", dashboardController.GetMetricsOverTime)
	dashboard.Get("/status-breakdown", dashboardController.GetStatusBreakdown)

	// WebSocket route for campaign progress
	app.Get("/api/v1/campaigns/progress", websocket.New(controller.HandleCampaignProgressWS(db)))

	log.Println("API routes initialized successfully")
}

// SetupTrackingRoutes wires the public endpoints hit by mail clients and
// engagement webhooks. No auth: the pixel URL carries its own token.
func SetupTrackingRoutes(app *fiber.App, db *gorm.DB) {
	trackingController := controller.NewTrackingController(db)

	app.Get("/track/open/:messageID/:token", trackingController.TrackOpen)
	app.Post("/track/events", middleware.TrackingRateLimiter(), trackingController.TrackEvent)
}

func SetupRoutes(app *fiber.App, db *gorm.DB) {
	// Setup health check endpoint
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	SetupTrackingRoutes(app, db)
	SetupAPIRoutes(app, db)

	// Setup 404 handler
	app.Use(func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error":   "Not Found",
			"message": "The requested resource was not found",
		})
	})
}
