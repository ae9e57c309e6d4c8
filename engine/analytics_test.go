package engine

import (
	"testing"
	"time"

	"inviteflow/models"
)

func TestRollUpSumsCampaignCounters(t *testing.T) {
	campaigns := []models.EmailCampaign{
		{RecipientCount: 10, SentCount: 8, OpenCount: 4, ResponseCount: 2},
		{RecipientCount: 5, SentCount: 5, OpenCount: 3, ResponseCount: 1},
		{RecipientCount: 7}, // draft, nothing sent
	}

	data := RollUp(campaigns, 2, nil)
	if data.TotalRecipients != 22 {
		t.Errorf("total recipients = %d, want 22", data.TotalRecipients)
	}
	if data.EmailsSent != 13 {
		t.Errorf("emails sent = %d, want 13", data.EmailsSent)
	}
	if data.EmailsOpened != 7 {
		t.Errorf("emails opened = %d, want 7", data.EmailsOpened)
	}
	if data.ResponsesReceived != 3 {
		t.Errorf("responses = %d, want 3", data.ResponsesReceived)
	}
	if data.RSVPConfirmed != 2 {
		t.Errorf("confirmed = %d, want 2", data.RSVPConfirmed)
	}
}

func TestRollUpEmpty(t *testing.T) {
	data := RollUp(nil, 0, nil)
	if data.EmailsSent != 0 || data.TotalRecipients != 0 {
		t.Errorf("empty roll-up not zero: %+v", data)
	}
}

func TestBumpDaily(t *testing.T) {
	day1 := time.Date(2025, 3, 1, 10, 30, 0, 0, time.UTC)
	day2 := time.Date(2025, 3, 2, 8, 0, 0, 0, time.UTC)

	var daily []models.DailyStat
	daily = BumpDaily(daily, day1, EventSent)
	daily = BumpDaily(daily, day1.Add(2*time.Hour), EventSent)
	daily = BumpDaily(daily, day1.Add(3*time.Hour), EventOpened)
	daily = BumpDaily(daily, day2, EventResponded)

	if len(daily) != 2 {
		t.Fatalf("expected 2 daily entries, got %d", len(daily))
	}
	if daily[0].Sent != 2 || daily[0].Opened != 1 || daily[0].Responded != 0 {
		t.Errorf("day 1 = %+v", daily[0])
	}
	if daily[1].Responded != 1 || daily[1].Sent != 0 {
		t.Errorf("day 2 = %+v", daily[1])
	}
	if !daily[0].Date.Equal(Day(day1)) {
		t.Errorf("day 1 date = %v", daily[0].Date)
	}
}
