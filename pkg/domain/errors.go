package domain

import "fmt"

// InvalidPayloadError reports a caller-supplied payload with an empty
// required field. Raised before any store interaction.
type InvalidPayloadError struct {
	Field string
}

func (e InvalidPayloadError) Error() string {
	return fmt.Sprintf("invalid payload: missing required field %q", e.Field)
}

// NotFoundError reports that a referenced or looked-up entity does not exist.
type NotFoundError struct {
	Entity EntityType
	ID     ID
}

func (e NotFoundError) Error() string {
	return fmt.Sprintf("%s %d not found", e.Entity, e.ID)
}

// StateError reports a valid-shape request that violates a state-machine
// rule, such as ending a trip that is not ongoing.
type StateError struct {
	Entity EntityType
	ID     ID
	Reason string
}

func (e StateError) Error() string {
	return fmt.Sprintf("%s %d: %s", e.Entity, e.ID, e.Reason)
}

// SizeExceededError reports a record whose encoded form exceeds the store's
// per-record ceiling. Caller-correctable, never fatal.
type SizeExceededError struct {
	Entity EntityType
	Size   int
	Limit  int
}

func (e SizeExceededError) Error() string {
	return fmt.Sprintf("%s record encodes to %d bytes, exceeding the %d byte limit", e.Entity, e.Size, e.Limit)
}

// InvariantViolationError reports an impossible internal condition such as
// identifier sequence exhaustion. Fatal to the operation; never retried.
type InvariantViolationError struct {
	Reason string
}

func (e InvariantViolationError) Error() string {
	return "invariant violation: " + e.Reason
}
