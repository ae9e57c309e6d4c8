package engine

import (
	"strings"

	"inviteflow/models"
)

// Default literals used when optional recipient fields are empty, so a
// rendered email never shows a gap.
const (
	DefaultAchievement = "contribution to India's growth"
	DefaultSource      = "recent news"
)

// Personalization carries the recipient attributes that can be substituted
// into template placeholders.
type Personalization struct {
	FirstName    string
	LastName     string
	Organization string
	Role         string
	Achievement  string
	Source       string
}

// PersonalizationFor builds the attribute bag for a recipient.
func PersonalizationFor(r *models.Recipient) Personalization {
	return Personalization{
		FirstName:    r.FirstName,
		LastName:     r.LastName,
		Organization: r.Organization,
		Role:         r.Role,
		Achievement:  r.Achievement,
		Source:       r.Source,
	}
}

// PersonalizeSubject substitutes the name and organization placeholders in
// a subject line. Whole-token, case-sensitive, single pass: a replacement
// value that happens to contain a placeholder token is left alone.
func PersonalizeSubject(template string, p Personalization) string {
	return strings.NewReplacer(
		"{FirstName}", p.FirstName,
		"{LastName}", p.LastName,
		"{Organization}", p.Organization,
	).Replace(template)
}

// PersonalizeBody substitutes all six known placeholders in a body.
// Achievement and Source fall back to their default literals when empty.
func PersonalizeBody(template string, p Personalization) string {
	achievement := p.Achievement
	if achievement == "" {
		achievement = DefaultAchievement
	}
	source := p.Source
	if source == "" {
		source = DefaultSource
	}
	return strings.NewReplacer(
		"{FirstName}", p.FirstName,
		"{LastName}", p.LastName,
		"{Organization}", p.Organization,
		"{Role}", p.Role,
		"{Achievement}", achievement,
		"{Source}", source,
	).Replace(template)
}

// InsertHook places a personalization hook on its own paragraph after the
// salutation line ("Dear <FirstName>,"). If the salutation is not found
// the body is returned unchanged.
func InsertHook(body, firstName, hook string) string {
	if hook == "" {
		return body
	}
	salutation := "Dear " + firstName + ","
	idx := strings.Index(body, salutation)
	if idx == -1 {
		return body
	}
	insertAt := idx + len(salutation)
	// Skip the newline ending the salutation line, if present
	if nl := strings.Index(body[insertAt:], "\n"); nl != -1 {
		insertAt += nl + 1
	} else {
		insertAt = len(body)
	}
	return body[:insertAt] + "\n" + hook + "\n\n" + body[insertAt:]
}
