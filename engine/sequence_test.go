package engine

import (
	"errors"
	"strings"
	"testing"

	"gorm.io/gorm"

	"inviteflow/models"
)

// mapStore is an in-memory TemplateStore for tests.
type mapStore map[uint]models.EmailTemplate

func (m mapStore) TemplateByID(id uint) (*models.EmailTemplate, error) {
	tmpl, ok := m[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &tmpl, nil
}

func testStore() mapStore {
	return mapStore{
		1: {Name: "Invitation", Type: models.TemplateInvitation},
		2: {Name: "Follow Up", Type: models.TemplateFollowUp},
		3: {Name: "Final Reminder", Type: models.TemplateFinalReminder},
	}
}

func uintPtr(v uint) *uint { return &v }

func TestResolvePlanInitialOnly(t *testing.T) {
	seq := &models.EmailSequence{InitialEmailID: 1}

	plan, warnings, err := ResolvePlan(seq, testStore())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(warnings) != 0 {
		t.Errorf("unexpected warnings: %v", warnings)
	}
	if len(plan.Steps) != 1 {
		t.Fatalf("expected 1 step, got %d", len(plan.Steps))
	}
	if plan.Steps[0].OffsetDays != 0 {
		t.Errorf("expected initial step at offset 0, got %d", plan.Steps[0].OffsetDays)
	}
	if plan.Steps[0].Template.Name != "Invitation" {
		t.Errorf("unexpected template %q", plan.Steps[0].Template.Name)
	}
}

func TestResolvePlanFullChain(t *testing.T) {
	seq := &models.EmailSequence{
		InitialEmailID:       1,
		FollowUpEmailID:      uintPtr(2),
		FinalReminderEmailID: uintPtr(3),
		FollowUpDays:         5,
		FinalReminderDays:    10,
	}

	plan, warnings, err := ResolvePlan(seq, testStore())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(warnings) != 0 {
		t.Errorf("unexpected warnings: %v", warnings)
	}
	offsets := []int{plan.Steps[0].OffsetDays, plan.Steps[1].OffsetDays, plan.Steps[2].OffsetDays}
	if offsets[0] != 0 || offsets[1] != 5 || offsets[2] != 10 {
		t.Errorf("unexpected offsets %v", offsets)
	}
}

func TestResolvePlanMissingInitial(t *testing.T) {
	seq := &models.EmailSequence{InitialEmailID: 99}

	_, _, err := ResolvePlan(seq, testStore())
	var missing *MissingInitialTemplateError
	if !errors.As(err, &missing) {
		t.Fatalf("expected MissingInitialTemplateError, got %v", err)
	}
	if missing.TemplateID != 99 {
		t.Errorf("expected template id 99, got %d", missing.TemplateID)
	}
}

func TestResolvePlanDanglingFollowUp(t *testing.T) {
	seq := &models.EmailSequence{
		InitialEmailID:  1,
		FollowUpEmailID: uintPtr(42),
		FollowUpDays:    5,
	}

	plan, warnings, err := ResolvePlan(seq, testStore())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(plan.Steps) != 1 {
		t.Errorf("dangling follow-up should be skipped, got %d steps", len(plan.Steps))
	}
	if len(warnings) != 1 {
		t.Fatalf("expected 1 warning, got %v", warnings)
	}
}

func TestResolvePlanChronologyWarning(t *testing.T) {
	seq := &models.EmailSequence{
		InitialEmailID:       1,
		FollowUpEmailID:      uintPtr(2),
		FinalReminderEmailID: uintPtr(3),
		FollowUpDays:         7,
		FinalReminderDays:    5,
	}

	plan, warnings, err := ResolvePlan(seq, testStore())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// Warning only, never a hard failure
	if len(plan.Steps) != 3 {
		t.Errorf("expected all 3 steps despite warning, got %d", len(plan.Steps))
	}
	if len(warnings) != 1 || !strings.Contains(warnings[0], "does not come after") {
		t.Errorf("expected chronology warning, got %v", warnings)
	}
}
