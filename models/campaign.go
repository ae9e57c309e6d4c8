package models

import (
	"time"

	"gorm.io/gorm"
)

// Campaign statuses
const (
	CampaignDraft      = "draft"
	CampaignScheduled  = "scheduled"
	CampaignInProgress = "in-progress"
	CampaignCompleted  = "completed"
)

// EmailCampaign binds a sequence to a recipient cohort and accumulates
// execution state
type EmailCampaign struct {
	gorm.Model
	Name       string `gorm:"not null" json:"name"`
	SequenceID uint   `gorm:"not null;index" json:"sequence_id"`

	// Scheduling
	Status         string     `gorm:"default:'draft'" json:"status"` // draft, scheduled, in-progress, completed
	StartDate      *time.Time `json:"start_date"`
	CompletionDate *time.Time `json:"completion_date"`

	// Statistics (denormalized for performance). RecipientCount is frozen
	// at creation; sent/open/response count recipients, not messages, and
	// must never exceed RecipientCount / SentCount respectively.
	RecipientCount int `gorm:"default:0" json:"recipient_count"`
	SentCount      int `gorm:"default:0" json:"sent_count"`
	OpenCount      int `gorm:"default:0" json:"open_count"`
	ResponseCount  int `gorm:"default:0" json:"response_count"`

	// Relations
	Sequence           EmailSequence       `json:"-"`
	CampaignRecipients []CampaignRecipient `gorm:"foreignKey:CampaignID" json:"recipients,omitempty"`
	SendRecords        []SendRecord        `gorm:"foreignKey:CampaignID" json:"send_records,omitempty"`
}

// CampaignRecipient joins campaigns to their selected recipients. The set
// is fixed when the campaign is created; recipients are referenced by id,
// never copied.
type CampaignRecipient struct {
	gorm.Model
	CampaignID  uint `gorm:"not null;index" json:"campaign_id"`
	RecipientID uint `gorm:"not null;index" json:"recipient_id"`
}

// SendRecord marks one sequence step as sent to one recipient. The unique
// index is the idempotency key for dispatch: a retried send hits the
// constraint instead of double-counting.
type SendRecord struct {
	gorm.Model
	CampaignID  uint      `gorm:"not null;uniqueIndex:idx_campaign_recipient_step" json:"campaign_id"`
	RecipientID uint      `gorm:"not null;uniqueIndex:idx_campaign_recipient_step" json:"recipient_id"`
	StepOffset  int       `gorm:"not null;uniqueIndex:idx_campaign_recipient_step" json:"step_offset"`
	MessageID   string    `gorm:"index" json:"message_id"`
	SentAt      time.Time `gorm:"not null" json:"sent_at"`

	// OpenedAt gates open counting: only the first pixel hit per send
	// record bumps the campaign counter.
	OpenedAt *time.Time `json:"opened_at"`
}
