package models

import (
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// DailyStat holds one calendar day of send/open/response counts. Today's
// row is incremented as events occur; past rows are never rewritten.
type DailyStat struct {
	gorm.Model
	Date      time.Time `gorm:"not null;uniqueIndex" json:"date"`
	Sent      int       `gorm:"default:0" json:"sent"`
	Opened    int       `gorm:"default:0" json:"opened"`
	Responded int       `gorm:"default:0" json:"responded"`
}

// BumpDailyStat increments one counter column on the row for day,
// creating the row if the day has no entry yet.
func BumpDailyStat(db *gorm.DB, day time.Time, column string) error {
	stat := DailyStat{Date: day}
	switch column {
	case "sent":
		stat.Sent = 1
	case "opened":
		stat.Opened = 1
	case "responded":
		stat.Responded = 1
	default:
		return fmt.Errorf("unknown daily stat column %q", column)
	}

	return db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "date"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			column: gorm.Expr(column + " + 1"),
		}),
	}).Create(&stat).Error
}
