package engine

import "fmt"

// MissingInitialTemplateError marks a sequence whose required initial
// template cannot be resolved. Fatal to the sequence, not the system.
type MissingInitialTemplateError struct {
	SequenceID uint
	TemplateID uint
}

func (e *MissingInitialTemplateError) Error() string {
	return fmt.Sprintf("sequence %d: initial template %d not found", e.SequenceID, e.TemplateID)
}

// CounterOverflowError indicates a counter increment would break a
// campaign invariant. It is surfaced, never clamped, because it points at
// a duplicate-send bug upstream.
type CounterOverflowError struct {
	Counter string
	Value   int
	Limit   int
}

func (e *CounterOverflowError) Error() string {
	return fmt.Sprintf("%s is already at its limit (%d of %d)", e.Counter, e.Value, e.Limit)
}

// InvalidTransitionError rejects a status change the transition table does
// not allow.
type InvalidTransitionError struct {
	Entity string
	From   string
	To     string
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("%s cannot move from %q to %q", e.Entity, e.From, e.To)
}
