package models

import "gorm.io/gorm"

// EmailSequence chains an initial email to optional follow-up and final
// reminder emails. Offsets are whole days measured from campaign start,
// not from each other.
type EmailSequence struct {
	gorm.Model
	Name string `gorm:"not null" json:"name"`

	InitialEmailID       uint  `gorm:"not null;index" json:"initial_email_id"`
	FollowUpEmailID      *uint `json:"follow_up_email_id"`
	FinalReminderEmailID *uint `json:"final_reminder_email_id"`

	FollowUpDays      int `gorm:"default:0" json:"follow_up_days"`
	FinalReminderDays int `gorm:"default:0" json:"final_reminder_days"`

	// Relations
	InitialEmail       EmailTemplate  `gorm:"foreignKey:InitialEmailID" json:"-"`
	FollowUpEmail      *EmailTemplate `gorm:"foreignKey:FollowUpEmailID" json:"-"`
	FinalReminderEmail *EmailTemplate `gorm:"foreignKey:FinalReminderEmailID" json:"-"`
}
