package engine

import "inviteflow/models"

// Campaign counter updates. Each call increments by exactly one and trusts
// the caller to raise it once per real event; de-duplication happens
// upstream against the recipient-level send record. The invariant checks
// are the backstop: an overflow means a duplicate event slipped through
// and must be surfaced, not clamped.

// RecordSent counts one more recipient reached by the campaign.
func RecordSent(c *models.EmailCampaign) error {
	if c.SentCount >= c.RecipientCount {
		return &CounterOverflowError{Counter: "sent_count", Value: c.SentCount, Limit: c.RecipientCount}
	}
	c.SentCount++
	return nil
}

// RecordOpened counts one more recipient who opened their email.
func RecordOpened(c *models.EmailCampaign) error {
	if c.OpenCount >= c.SentCount {
		return &CounterOverflowError{Counter: "open_count", Value: c.OpenCount, Limit: c.SentCount}
	}
	c.OpenCount++
	return nil
}

// RecordResponded counts one more recipient who responded.
func RecordResponded(c *models.EmailCampaign) error {
	if c.ResponseCount >= c.SentCount {
		return &CounterOverflowError{Counter: "response_count", Value: c.ResponseCount, Limit: c.SentCount}
	}
	c.ResponseCount++
	return nil
}

// OpenRate returns opened/sent as a percentage, 0 when nothing was sent.
func OpenRate(c *models.EmailCampaign) float64 {
	if c.SentCount == 0 {
		return 0
	}
	return float64(c.OpenCount) / float64(c.SentCount) * 100
}

// ResponseRate returns responded/sent as a percentage, 0 when nothing was
// sent.
func ResponseRate(c *models.EmailCampaign) float64 {
	if c.SentCount == 0 {
		return 0
	}
	return float64(c.ResponseCount) / float64(c.SentCount) * 100
}
