package utils

import (
	"context"
	"strings"
	"testing"
	"time"
)

func TestStubHookGeneratorMentionsAchievement(t *testing.T) {
	g := &StubHookGenerator{Delay: time.Millisecond}

	// The generator picks a hook at random; every variant must mention
	// either the achievement or the organization.
	for i := 0; i < 20; i++ {
		hook, err := g.GenerateHook(context.Background(), "AI diagnostics platform", "Nivaan Labs")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !strings.Contains(hook, "AI diagnostics platform") && !strings.Contains(hook, "Nivaan Labs") {
			t.Fatalf("hook mentions neither achievement nor organization: %q", hook)
		}
		if strings.Contains(hook, "%s") {
			t.Fatalf("unfilled placeholder in hook: %q", hook)
		}
	}
}

func TestStubHookGeneratorHonorsContext(t *testing.T) {
	g := &StubHookGenerator{Delay: time.Minute}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err := g.GenerateHook(ctx, "achievement", "org")
	if err == nil {
		t.Fatalf("expected context error, got nil")
	}
}
