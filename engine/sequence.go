package engine

import (
	"fmt"

	"inviteflow/models"
)

// TemplateStore resolves template references for sequence planning.
type TemplateStore interface {
	TemplateByID(id uint) (*models.EmailTemplate, error)
}

// PlanStep is one email in a campaign's chronological plan, keyed by
// day-count from campaign start.
type PlanStep struct {
	OffsetDays int
	Template   models.EmailTemplate
}

// SequencePlan is the resolved, ordered send plan for one sequence. Steps
// are kept in declaration order (initial, follow-up, final reminder); the
// dispatcher handles offset ordering and ties.
type SequencePlan struct {
	SequenceID uint
	Steps      []PlanStep
}

// DispatchableOffsets counts the distinct day offsets in the plan. Steps
// sharing an offset collapse to one send (the tie goes to the later
// declaration), so completion is reached when this many offsets have been
// recorded, not when every declared step has.
func (p *SequencePlan) DispatchableOffsets() int {
	seen := make(map[int]bool, len(p.Steps))
	for _, step := range p.Steps {
		seen[step.OffsetDays] = true
	}
	return len(seen)
}

// ResolvePlan resolves a sequence's template references into concrete plan
// steps. The initial email is required and resolves at offset 0; the
// follow-up and final reminder are included only when set. A sane plan has
// strictly increasing offsets, but that is the author's intent rather than
// a rule: violations come back as warnings, not failures. A dangling
// optional reference is skipped with a warning.
func ResolvePlan(seq *models.EmailSequence, store TemplateStore) (*SequencePlan, []string, error) {
	initial, err := store.TemplateByID(seq.InitialEmailID)
	if err != nil || initial == nil {
		return nil, nil, &MissingInitialTemplateError{SequenceID: seq.ID, TemplateID: seq.InitialEmailID}
	}

	plan := &SequencePlan{
		SequenceID: seq.ID,
		Steps:      []PlanStep{{OffsetDays: 0, Template: *initial}},
	}
	var warnings []string

	if seq.FollowUpEmailID != nil {
		followUp, err := store.TemplateByID(*seq.FollowUpEmailID)
		if err != nil || followUp == nil {
			warnings = append(warnings, fmt.Sprintf("follow-up template %d not found, step skipped", *seq.FollowUpEmailID))
		} else {
			plan.Steps = append(plan.Steps, PlanStep{OffsetDays: seq.FollowUpDays, Template: *followUp})
		}
	}

	if seq.FinalReminderEmailID != nil {
		final, err := store.TemplateByID(*seq.FinalReminderEmailID)
		if err != nil || final == nil {
			warnings = append(warnings, fmt.Sprintf("final reminder template %d not found, step skipped", *seq.FinalReminderEmailID))
		} else {
			plan.Steps = append(plan.Steps, PlanStep{OffsetDays: seq.FinalReminderDays, Template: *final})
			if seq.FollowUpEmailID != nil && seq.FinalReminderDays <= seq.FollowUpDays {
				warnings = append(warnings, fmt.Sprintf(
					"final reminder day %d does not come after follow-up day %d",
					seq.FinalReminderDays, seq.FollowUpDays))
			}
		}
	}

	return plan, warnings, nil
}
