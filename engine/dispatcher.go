package engine

import (
	"sort"
	"time"

	"inviteflow/models"
)

// NextDue decides which step of the plan, if any, should be sent to a
// recipient right now. sentOffsets holds the step offsets already recorded
// as sent for this (campaign, recipient) pair.
//
// The decision walks the plan in ascending offset order and returns the
// latest step whose offset has been reached and which has not yet been
// sent, so a recipient who joins late gets the most advanced applicable
// email rather than a stale earlier one. Ties on the same offset go to the
// later-declared step (final reminder beats follow-up beats initial).
//
// Returns nil when the campaign is completed, has no start date, starts in
// the future, or has nothing due.
func NextDue(campaign *models.EmailCampaign, plan *SequencePlan, sentOffsets map[int]bool, now time.Time) *PlanStep {
	if campaign.Status == models.CampaignCompleted {
		return nil
	}
	if campaign.StartDate == nil || now.Before(*campaign.StartDate) {
		return nil
	}
	elapsedDays := int(now.Sub(*campaign.StartDate).Hours() / 24)

	// Stable sort keeps declaration order for equal offsets, so the last
	// qualifying step is the later-declared one.
	steps := make([]PlanStep, len(plan.Steps))
	copy(steps, plan.Steps)
	sort.SliceStable(steps, func(i, j int) bool {
		return steps[i].OffsetDays < steps[j].OffsetDays
	})

	var due *PlanStep
	for i := range steps {
		if steps[i].OffsetDays > elapsedDays {
			break
		}
		if sentOffsets[steps[i].OffsetDays] {
			continue
		}
		due = &steps[i]
	}
	return due
}
