package engine

import (
	"errors"
	"testing"
	"time"

	"inviteflow/models"
)

func planWithOffsets(offsets ...int) *SequencePlan {
	plan := &SequencePlan{}
	for i, off := range offsets {
		plan.Steps = append(plan.Steps, PlanStep{
			OffsetDays: off,
			Template:   models.EmailTemplate{Name: []string{"initial", "follow-up", "final"}[i%3]},
		})
	}
	return plan
}

func startedCampaign(start time.Time) *models.EmailCampaign {
	return &models.EmailCampaign{
		Status:    models.CampaignInProgress,
		StartDate: &start,
	}
}

func TestNextDueLatestEligibleStep(t *testing.T) {
	start := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	plan := planWithOffsets(0, 5, 10)

	tests := []struct {
		name       string
		daysAfter  int
		sent       map[int]bool
		wantOffset int
		wantNone   bool
	}{
		{name: "day 0 returns initial", daysAfter: 0, wantOffset: 0},
		{name: "day 7 returns follow-up, not initial or final", daysAfter: 7, wantOffset: 5},
		{name: "day 12 returns final", daysAfter: 12, wantOffset: 10},
		{name: "day 7 with follow-up sent falls back to initial", daysAfter: 7, sent: map[int]bool{5: true}, wantOffset: 0},
		{name: "everything sent returns none", daysAfter: 12, sent: map[int]bool{0: true, 5: true, 10: true}, wantNone: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			now := start.Add(time.Duration(tt.daysAfter) * 24 * time.Hour)
			step := NextDue(startedCampaign(start), plan, tt.sent, now)
			if tt.wantNone {
				if step != nil {
					t.Fatalf("expected no due step, got offset %d", step.OffsetDays)
				}
				return
			}
			if step == nil {
				t.Fatal("expected a due step, got none")
			}
			if step.OffsetDays != tt.wantOffset {
				t.Errorf("expected offset %d, got %d", tt.wantOffset, step.OffsetDays)
			}
		})
	}
}

func TestNextDueTerminalAndTiming(t *testing.T) {
	start := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	now := start.Add(7 * 24 * time.Hour)
	plan := planWithOffsets(0, 5, 10)

	completed := startedCampaign(start)
	completed.Status = models.CampaignCompleted
	if step := NextDue(completed, plan, nil, now); step != nil {
		t.Errorf("completed campaign dispatched offset %d", step.OffsetDays)
	}

	draft := &models.EmailCampaign{Status: models.CampaignDraft}
	if step := NextDue(draft, plan, nil, now); step != nil {
		t.Errorf("campaign without start date dispatched offset %d", step.OffsetDays)
	}

	future := startedCampaign(now.Add(48 * time.Hour))
	future.Status = models.CampaignScheduled
	if step := NextDue(future, plan, nil, now); step != nil {
		t.Errorf("future campaign dispatched offset %d", step.OffsetDays)
	}
}

func TestNextDueTieGoesToLaterStep(t *testing.T) {
	start := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	plan := &SequencePlan{Steps: []PlanStep{
		{OffsetDays: 0, Template: models.EmailTemplate{Name: "initial"}},
		{OffsetDays: 5, Template: models.EmailTemplate{Name: "follow-up"}},
		{OffsetDays: 5, Template: models.EmailTemplate{Name: "final"}},
	}}

	step := NextDue(startedCampaign(start), plan, nil, start.Add(5*24*time.Hour))
	if step == nil {
		t.Fatal("expected a due step")
	}
	if step.Template.Name != "final" {
		t.Errorf("tie should go to the later-declared step, got %q", step.Template.Name)
	}
}

// A plan whose follow-up and final reminder share a day offset can only
// ever record two sends; completion must key on distinct offsets or the
// campaign never finishes.
func TestTiedOffsetsStillComplete(t *testing.T) {
	start := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	plan := &SequencePlan{Steps: []PlanStep{
		{OffsetDays: 0, Template: models.EmailTemplate{Name: "initial"}},
		{OffsetDays: 5, Template: models.EmailTemplate{Name: "follow-up"}},
		{OffsetDays: 5, Template: models.EmailTemplate{Name: "final"}},
	}}

	if got := plan.DispatchableOffsets(); got != 2 {
		t.Fatalf("DispatchableOffsets = %d, want 2", got)
	}

	campaign := startedCampaign(start)
	now := start.Add(6 * 24 * time.Hour)

	sent := map[int]bool{}
	for {
		step := NextDue(campaign, plan, sent, now)
		if step == nil {
			break
		}
		sent[step.OffsetDays] = true
	}

	if len(sent) != plan.DispatchableOffsets() {
		t.Fatalf("recorded %d offsets after exhaustion, want %d: campaign would never complete",
			len(sent), plan.DispatchableOffsets())
	}
	if len(sent) >= len(plan.Steps) {
		t.Fatalf("tied offsets produced %d sends for %d steps", len(sent), len(plan.Steps))
	}
}

// Full walk of a three-step campaign: at day 6 an untouched recipient gets
// the follow-up, the sent counter caps at the frozen cohort size.
func TestCampaignEndToEnd(t *testing.T) {
	start := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	seq := &models.EmailSequence{
		InitialEmailID:       1,
		FollowUpEmailID:      uintPtr(2),
		FinalReminderEmailID: uintPtr(3),
		FollowUpDays:         5,
		FinalReminderDays:    10,
	}
	plan, _, err := ResolvePlan(seq, testStore())
	if err != nil {
		t.Fatalf("resolve plan: %v", err)
	}

	campaign := startedCampaign(start)
	campaign.RecipientCount = 3

	step := NextDue(campaign, plan, map[int]bool{}, start.Add(6*24*time.Hour))
	if step == nil {
		t.Fatal("expected follow-up to be due at day 6")
	}
	if step.Template.Type != models.TemplateFollowUp {
		t.Errorf("expected follow-up template, got %q", step.Template.Type)
	}

	for i := 0; i < 3; i++ {
		if err := RecordSent(campaign); err != nil {
			t.Fatalf("recordSent %d: %v", i+1, err)
		}
	}
	if campaign.SentCount != 3 {
		t.Errorf("expected sentCount 3, got %d", campaign.SentCount)
	}

	err = RecordSent(campaign)
	var overflow *CounterOverflowError
	if !errors.As(err, &overflow) {
		t.Fatalf("expected CounterOverflowError on 4th send, got %v", err)
	}
	if campaign.SentCount != 3 {
		t.Errorf("failed increment changed sentCount to %d", campaign.SentCount)
	}
}
