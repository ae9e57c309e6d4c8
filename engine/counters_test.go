package engine

import (
	"errors"
	"testing"

	"inviteflow/models"
)

func TestRecordSentOverflow(t *testing.T) {
	c := &models.EmailCampaign{RecipientCount: 2}

	if err := RecordSent(c); err != nil {
		t.Fatalf("first send: %v", err)
	}
	if err := RecordSent(c); err != nil {
		t.Fatalf("second send: %v", err)
	}

	err := RecordSent(c)
	var overflow *CounterOverflowError
	if !errors.As(err, &overflow) {
		t.Fatalf("expected CounterOverflowError, got %v", err)
	}
	if overflow.Counter != "sent_count" {
		t.Errorf("unexpected counter name %q", overflow.Counter)
	}
	if c.SentCount != 2 {
		t.Errorf("rejected call mutated sentCount to %d", c.SentCount)
	}
}

func TestRecordOpenedBoundedBySent(t *testing.T) {
	c := &models.EmailCampaign{RecipientCount: 5, SentCount: 1}

	if err := RecordOpened(c); err != nil {
		t.Fatalf("first open: %v", err)
	}
	err := RecordOpened(c)
	var overflow *CounterOverflowError
	if !errors.As(err, &overflow) {
		t.Fatalf("expected CounterOverflowError, got %v", err)
	}
	if c.OpenCount != 1 {
		t.Errorf("rejected call mutated openCount to %d", c.OpenCount)
	}
}

func TestRecordRespondedBoundedBySent(t *testing.T) {
	c := &models.EmailCampaign{RecipientCount: 5}

	err := RecordResponded(c)
	var overflow *CounterOverflowError
	if !errors.As(err, &overflow) {
		t.Fatalf("response without send should overflow, got %v", err)
	}
}

func TestRatesZeroSafe(t *testing.T) {
	c := &models.EmailCampaign{RecipientCount: 10}

	if rate := OpenRate(c); rate != 0 {
		t.Errorf("open rate with no sends = %v, want 0", rate)
	}
	if rate := ResponseRate(c); rate != 0 {
		t.Errorf("response rate with no sends = %v, want 0", rate)
	}

	c.SentCount = 4
	c.OpenCount = 2
	c.ResponseCount = 1
	if rate := OpenRate(c); rate != 50 {
		t.Errorf("open rate = %v, want 50", rate)
	}
	if rate := ResponseRate(c); rate != 25 {
		t.Errorf("response rate = %v, want 25", rate)
	}
}
