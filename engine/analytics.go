package engine

import (
	"time"

	"inviteflow/models"
)

// AnalyticsData is the global outreach snapshot shown on the dashboard.
// It is always recomputed from campaign-level truth, never persisted, so
// it cannot drift.
type AnalyticsData struct {
	TotalRecipients   int                `json:"total_recipients"`
	EmailsSent        int                `json:"emails_sent"`
	EmailsOpened      int                `json:"emails_opened"`
	ResponsesReceived int                `json:"responses_received"`
	RSVPConfirmed     int                `json:"rsvp_confirmed"`
	DailyStats        []models.DailyStat `json:"daily_stats"`
}

// Event kinds recorded in the daily series
const (
	EventSent      = "sent"
	EventOpened    = "opened"
	EventResponded = "responded"
)

// RollUp sums campaign counters into the global snapshot. confirmed is the
// count of recipients whose RSVP landed on confirmed; daily is the stored
// per-day series, passed through ordered by date.
func RollUp(campaigns []models.EmailCampaign, confirmed int, daily []models.DailyStat) AnalyticsData {
	data := AnalyticsData{
		RSVPConfirmed: confirmed,
		DailyStats:    daily,
	}
	for i := range campaigns {
		data.TotalRecipients += campaigns[i].RecipientCount
		data.EmailsSent += campaigns[i].SentCount
		data.EmailsOpened += campaigns[i].OpenCount
		data.ResponsesReceived += campaigns[i].ResponseCount
	}
	return data
}

// Day truncates a timestamp to its calendar day in UTC.
func Day(t time.Time) time.Time {
	return time.Date(t.UTC().Year(), t.UTC().Month(), t.UTC().Day(), 0, 0, 0, 0, time.UTC)
}

// BumpDaily records one event in the daily series: today's entry is
// incremented in place, a new day gets appended. Past entries are never
// rewritten.
func BumpDaily(daily []models.DailyStat, at time.Time, kind string) []models.DailyStat {
	day := Day(at)
	var entry *models.DailyStat
	if n := len(daily); n > 0 && daily[n-1].Date.Equal(day) {
		entry = &daily[n-1]
	} else {
		daily = append(daily, models.DailyStat{Date: day})
		entry = &daily[len(daily)-1]
	}
	switch kind {
	case EventSent:
		entry.Sent++
	case EventOpened:
		entry.Opened++
	case EventResponded:
		entry.Responded++
	}
	return daily
}
