package engine

import "inviteflow/models"

// Explicit transition tables. Status fields used to be free-assignable
// strings trusted to every writer; here every status change goes through
// these tables and illegal moves are rejected at the boundary.

var recipientTransitions = map[string][]string{
	models.RecipientNoResponse: {models.RecipientInvited},
	models.RecipientInvited:    {models.RecipientResponded},
	models.RecipientResponded:  {models.RecipientConfirmed, models.RecipientDeclined},
	models.RecipientConfirmed:  {},
	models.RecipientDeclined:   {},
}

var campaignTransitions = map[string][]string{
	models.CampaignDraft:      {models.CampaignScheduled, models.CampaignInProgress},
	models.CampaignScheduled:  {models.CampaignInProgress},
	models.CampaignInProgress: {models.CampaignCompleted},
	models.CampaignCompleted:  {},
}

func allowed(table map[string][]string, from, to string) bool {
	for _, next := range table[from] {
		if next == to {
			return true
		}
	}
	return false
}

// TransitionRecipient moves a recipient to a new engagement status, or
// fails with InvalidTransitionError.
func TransitionRecipient(r *models.Recipient, to string) error {
	if !allowed(recipientTransitions, r.Status, to) {
		return &InvalidTransitionError{Entity: "recipient", From: r.Status, To: to}
	}
	r.Status = to
	return nil
}

// TransitionCampaign moves a campaign through its lifecycle, or fails with
// InvalidTransitionError. Completed is terminal.
func TransitionCampaign(c *models.EmailCampaign, to string) error {
	if !allowed(campaignTransitions, c.Status, to) {
		return &InvalidTransitionError{Entity: "campaign", From: c.Status, To: to}
	}
	c.Status = to
	return nil
}
