package models

import "gorm.io/gorm"

// Template roles within a sequence
const (
	TemplateInvitation    = "invitation"
	TemplateFollowUp      = "followup"
	TemplateFinalReminder = "final-reminder"
)

// EmailTemplate represents reusable email content with {Placeholder} tokens
// in subject and body
type EmailTemplate struct {
	gorm.Model
	Name    string `gorm:"not null" json:"name"`
	Subject string `gorm:"not null" json:"subject"`
	Body    string `gorm:"type:text" json:"body"`
	Type    string `gorm:"not null;index" json:"type"` // invitation, followup, final-reminder
}
