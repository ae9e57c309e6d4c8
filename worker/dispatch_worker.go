package worker

import (
	"context"
	"fmt"
	"log"
	"time"

	"gorm.io/gorm"

	"inviteflow/config"
	"inviteflow/engine"
	"inviteflow/models"
	"inviteflow/utils"
)

// DispatchWorker drives campaign execution: it activates scheduled
// campaigns, sends whichever sequence step each recipient is due for, and
// completes campaigns once every recipient has received every step.
type DispatchWorker struct {
	DB     *gorm.DB
	Mailer utils.Mailer
	Hooks  utils.HookGenerator
	Logger *log.Logger
}

func NewDispatchWorker(db *gorm.DB, mailer utils.Mailer, hooks utils.HookGenerator, logger *log.Logger) *DispatchWorker {
	return &DispatchWorker{
		DB:     db,
		Mailer: mailer,
		Hooks:  hooks,
		Logger: logger,
	}
}

func (dw *DispatchWorker) Start(ctx context.Context) {
	// Initial delay to let the server start up
	time.Sleep(10 * time.Second)

	dw.Logger.Println("Dispatch worker started")

	ticker := time.NewTicker(config.AppConfig.DispatchEvery)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			dw.Logger.Println("Dispatch worker shutting down...")
			return
		case <-ticker.C:
			dw.Tick(ctx, time.Now())
		}
	}
}

// Tick runs one full dispatch pass. Exposed so a pass can be driven
// directly without the ticker.
func (dw *DispatchWorker) Tick(ctx context.Context, now time.Time) {
	dw.activateScheduled(now)

	var active []models.EmailCampaign
	if err := dw.DB.Where("status = ?", models.CampaignInProgress).Find(&active).Error; err != nil {
		dw.Logger.Printf("Error fetching active campaigns: %v", err)
		return
	}

	for i := range active {
		if ctx.Err() != nil {
			return
		}
		if err := dw.processCampaign(ctx, &active[i], now); err != nil {
			dw.Logger.Printf("Error processing campaign %d: %v", active[i].ID, err)
		}
	}
}

// activateScheduled flips scheduled campaigns to in-progress once their
// start date arrives.
func (dw *DispatchWorker) activateScheduled(now time.Time) {
	var scheduled []models.EmailCampaign
	if err := dw.DB.Where("status = ? AND start_date <= ?", models.CampaignScheduled, now).
		Find(&scheduled).Error; err != nil {
		dw.Logger.Printf("Error fetching scheduled campaigns: %v", err)
		return
	}

	for i := range scheduled {
		campaign := &scheduled[i]
		if err := engine.TransitionCampaign(campaign, models.CampaignInProgress); err != nil {
			dw.Logger.Printf("Cannot activate campaign %d: %v", campaign.ID, err)
			continue
		}
		if err := dw.DB.Save(campaign).Error; err != nil {
			dw.Logger.Printf("Error activating campaign %d: %v", campaign.ID, err)
			continue
		}
		dw.Logger.Printf("Campaign %d activated", campaign.ID)
	}
}

// workerTemplateStore resolves templates for sequence planning inside the
// worker.
type workerTemplateStore struct {
	db *gorm.DB
}

func (s workerTemplateStore) TemplateByID(id uint) (*models.EmailTemplate, error) {
	var template models.EmailTemplate
	if err := s.db.First(&template, id).Error; err != nil {
		return nil, err
	}
	return &template, nil
}

func (dw *DispatchWorker) processCampaign(ctx context.Context, campaign *models.EmailCampaign, now time.Time) error {
	var sequence models.EmailSequence
	if err := dw.DB.First(&sequence, campaign.SequenceID).Error; err != nil {
		return fmt.Errorf("sequence %d: %w", campaign.SequenceID, err)
	}

	plan, warnings, err := engine.ResolvePlan(&sequence, workerTemplateStore{dw.DB})
	if err != nil {
		return fmt.Errorf("resolving sequence %d: %w", sequence.ID, err)
	}
	for _, w := range warnings {
		dw.Logger.Printf("Campaign %d plan warning: %s", campaign.ID, w)
	}

	var members []models.CampaignRecipient
	if err := dw.DB.Where("campaign_id = ?", campaign.ID).Find(&members).Error; err != nil {
		return err
	}

	var records []models.SendRecord
	if err := dw.DB.Where("campaign_id = ?", campaign.ID).Find(&records).Error; err != nil {
		return err
	}
	sentByRecipient := make(map[uint]map[int]bool, len(members))
	for _, r := range records {
		if sentByRecipient[r.RecipientID] == nil {
			sentByRecipient[r.RecipientID] = make(map[int]bool)
		}
		sentByRecipient[r.RecipientID][r.StepOffset] = true
	}

	allDone := true
	for _, member := range members {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		sentOffsets := sentByRecipient[member.RecipientID]
		if sentOffsets == nil {
			sentOffsets = map[int]bool{}
		}

		due := engine.NextDue(campaign, plan, sentOffsets, now)
		if due != nil {
			if err := dw.sendStep(ctx, campaign, member.RecipientID, due, len(sentOffsets) == 0, now); err != nil {
				dw.Logger.Printf("Campaign %d recipient %d: %v", campaign.ID, member.RecipientID, err)
				allDone = false
				continue
			}
			sentOffsets[due.OffsetDays] = true
		}

		// Tied offsets collapse to one send, so completion compares
		// against the distinct-offset count, not the step count.
		if len(sentOffsets) < plan.DispatchableOffsets() {
			allDone = false
		}
	}

	if allDone && len(members) > 0 {
		return dw.completeCampaign(campaign, now)
	}
	return nil
}

// sendStep resolves, personalizes and delivers one plan step to one
// recipient, then records it. The unique index on the send record makes a
// concurrent or retried send a no-op instead of a double count.
func (dw *DispatchWorker) sendStep(ctx context.Context, campaign *models.EmailCampaign, recipientID uint, step *engine.PlanStep, firstStep bool, now time.Time) error {
	var recipient models.Recipient
	if err := dw.DB.First(&recipient, recipientID).Error; err != nil {
		return err
	}

	attrs := engine.PersonalizationFor(&recipient)
	subject := engine.PersonalizeSubject(step.Template.Subject, attrs)
	body := engine.PersonalizeBody(step.Template.Body, attrs)

	// Hook generation is best-effort: a failed or slow generator never
	// blocks the send, the email just goes out without the extra line.
	if dw.Hooks != nil && step.Template.Type == models.TemplateInvitation {
		hook, err := dw.Hooks.GenerateHook(ctx, recipient.Achievement, recipient.Organization)
		if err != nil {
			dw.Logger.Printf("Hook generation failed for recipient %d: %v", recipient.ID, err)
		} else {
			body = engine.InsertHook(body, attrs.FirstName, hook)
		}
	}

	messageID := utils.NewMessageID()
	body = utils.InjectTracking(body, config.AppConfig.TrackingURL, messageID)

	_, err := dw.Mailer.Send(utils.Email{
		From:      fmt.Sprintf("%s <%s>", config.AppConfig.FromName, config.AppConfig.FromEmail),
		To:        recipient.Email,
		Subject:   subject,
		Body:      body,
		MessageID: messageID,
	})
	if err != nil {
		// TransportError is retryable: the record is never written, so
		// the next tick tries again.
		utils.LogError("email_delivery", err, map[string]interface{}{
			"campaign_id":  campaign.ID,
			"recipient_id": recipient.ID,
			"step_offset":  step.OffsetDays,
		})
		return err
	}

	return dw.DB.Transaction(func(tx *gorm.DB) error {
		record := models.SendRecord{
			CampaignID:  campaign.ID,
			RecipientID: recipient.ID,
			StepOffset:  step.OffsetDays,
			MessageID:   messageID,
			SentAt:      now,
		}
		if err := tx.Create(&record).Error; err != nil {
			return err
		}

		if firstStep {
			if err := engine.RecordSent(campaign); err != nil {
				return err
			}
			if err := tx.Model(campaign).Update("sent_count", campaign.SentCount).Error; err != nil {
				return err
			}
		}

		if recipient.Status == models.RecipientNoResponse {
			if err := engine.TransitionRecipient(&recipient, models.RecipientInvited); err != nil {
				return err
			}
		}
		recipient.LastContactDate = utils.Pointer(now)
		if err := tx.Save(&recipient).Error; err != nil {
			return err
		}

		return models.BumpDailyStat(tx, engine.Day(now), engine.EventSent)
	})
}

func (dw *DispatchWorker) completeCampaign(campaign *models.EmailCampaign, now time.Time) error {
	if err := engine.TransitionCampaign(campaign, models.CampaignCompleted); err != nil {
		return err
	}
	campaign.CompletionDate = &now
	if err := dw.DB.Save(campaign).Error; err != nil {
		return err
	}
	dw.Logger.Printf("Campaign %d completed", campaign.ID)
	return nil
}
