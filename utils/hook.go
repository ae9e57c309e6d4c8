package utils

import (
	"context"
	"fmt"
	"math/rand"
	"time"
)

// HookGenerator produces a short personalization sentence inserted after
// the salutation. Generation may be slow or fail; callers fall back to the
// un-hooked body instead of aborting the send.
type HookGenerator interface {
	GenerateHook(ctx context.Context, achievement, organization string) (string, error)
}

// StubHookGenerator stands in for a real AI service. It picks from a fixed
// set of hook sentences after a simulated API delay.
type StubHookGenerator struct {
	Delay time.Duration
}

var hookTemplates = []string{
	"Your %s is a perfect example of innovation driving India's future economy.",
	"Your leadership in %s aligns perfectly with our vision for a $30T Indian economy by 2047.",
	"The impact of your %s on India's economic landscape is precisely what we aim to celebrate.",
	"We're impressed by how %s's %s is contributing to India's economic transformation.",
	"Your groundbreaking %s represents the kind of leadership India needs to reach $30T by 2047.",
}

func (g *StubHookGenerator) GenerateHook(ctx context.Context, achievement, organization string) (string, error) {
	delay := g.Delay
	if delay == 0 {
		delay = time.Second
	}
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case <-time.After(delay):
	}

	i := rand.Intn(len(hookTemplates))
	if i == 3 {
		return fmt.Sprintf(hookTemplates[i], organization, achievement), nil
	}
	return fmt.Sprintf(hookTemplates[i], achievement), nil
}
