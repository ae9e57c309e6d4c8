package controller

import (
	"log"
	"time"

	"github.com/gofiber/websocket/v2"
	"gorm.io/gorm"

	"inviteflow/models"
)

type campaignProgress struct {
	CampaignID uint   `json:"campaign_id"`
	Status     string `json:"status"`
	Sent       int    `json:"sent"`
	Opened     int    `json:"opened"`
	Responded  int    `json:"responded"`
	Recipients int    `json:"recipients"`
	Percent    int    `json:"percent"`
}

// HandleCampaignProgressWS streams live counters for one campaign until it
// completes or the client goes away.
func HandleCampaignProgressWS(db *gorm.DB) func(*websocket.Conn) {
	return func(c *websocket.Conn) {
		defer c.Close()

		var input struct {
			CampaignID uint `json:"campaign_id"`
		}
		if err := c.ReadJSON(&input); err != nil {
			log.Printf("WS: error reading JSON: %v", err)
			return
		}

		ticker := time.NewTicker(2 * time.Second)
		defer ticker.Stop()

		for range ticker.C {
			var campaign models.EmailCampaign
			if err := db.First(&campaign, input.CampaignID).Error; err != nil {
				c.WriteJSON(map[string]string{"error": "campaign not found"})
				return
			}

			progress := campaignProgress{
				CampaignID: campaign.ID,
				Status:     campaign.Status,
				Sent:       campaign.SentCount,
				Opened:     campaign.OpenCount,
				Responded:  campaign.ResponseCount,
				Recipients: campaign.RecipientCount,
			}
			if campaign.RecipientCount > 0 {
				progress.Percent = campaign.SentCount * 100 / campaign.RecipientCount
			}

			if err := c.WriteJSON(progress); err != nil {
				log.Printf("WS: error writing JSON: %v", err)
				return
			}

			if campaign.Status == models.CampaignCompleted {
				return
			}
		}
	}
}
