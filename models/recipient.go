package models

import (
	"time"

	"gorm.io/gorm"
)

// Recipient statuses. Transitions between them are enforced by the
// engine's transition table, not by the model.
const (
	RecipientNoResponse = "no-response"
	RecipientInvited    = "invited"
	RecipientResponded  = "responded"
	RecipientConfirmed  = "confirmed"
	RecipientDeclined   = "declined"
)

// Recipient represents a single outreach contact
type Recipient struct {
	gorm.Model
	FirstName    string `gorm:"not null" json:"first_name"`
	LastName     string `gorm:"not null" json:"last_name"`
	Email        string `gorm:"not null;index" json:"email"`
	Organization string `json:"organization"`
	Role         string `json:"role"`
	Achievement  string `gorm:"type:text" json:"achievement"`
	Source       string `json:"source"`

	// Outreach state
	Status          string     `gorm:"default:'no-response'" json:"status"` // no-response, invited, responded, confirmed, declined
	LastContactDate *time.Time `json:"last_contact_date"`
	EmailOpened     bool       `gorm:"default:false" json:"email_opened"`
	EmailClicked    bool       `gorm:"default:false" json:"email_clicked"`

	// Relations
	SendRecords []SendRecord `gorm:"foreignKey:RecipientID" json:"send_records,omitempty"`
}
