package domain

import (
	"time"

	"github.com/google/uuid"
)

// ViewState is everything a hosting surface needs to render one submission.
type ViewState struct {
	Seq         uint64         `json:"seq"`
	Code        string         `json:"code"`
	Address     *AddressRecord `json:"address"`
	Temperature *float64       `json:"temperature"`
	Error       string         `json:"error,omitempty"`
	ErrorKind   ErrorKind      `json:"error_kind,omitempty"`
	InFlight    bool           `json:"in_flight"`
	StartedAt   time.Time      `json:"started_at"`
	CompletedAt time.Time      `json:"completed_at"`
}

// Begin returns the reset, in-flight state for submission seq.
func Begin(seq uint64) ViewState {
	return ViewState{
		Seq:       seq,
		InFlight:  true,
		StartedAt: Now(),
	}
}

// Fail records err on the state and clears any result fields.
func (v *ViewState) Fail(err error) {
	v.Address = nil
	v.Temperature = nil
	v.ErrorKind, v.Error = Classify(err)
}

// Finish marks the state terminal.
func (v *ViewState) Finish() {
	v.InFlight = false
	v.CompletedAt = Now()
}

// Succeeded reports whether the state is terminal and carries no error.
func (v ViewState) Succeeded() bool {
	return !v.InFlight && v.Error == ""
}

// Outcome labels the state for metrics and events: "in_flight", "success",
// or the error kind.
func (v ViewState) Outcome() string {
	switch {
	case v.InFlight:
		return "in_flight"
	case v.Error == "":
		return "success"
	default:
		return string(v.ErrorKind)
	}
}

// Duration is the time between start and completion, zero while in flight.
func (v ViewState) Duration() time.Duration {
	if v.InFlight || v.CompletedAt.IsZero() {
		return 0
	}
	return v.CompletedAt.Sub(v.StartedAt)
}

// LookupEvent is the record of a completed submission published to the event sink.
type LookupEvent struct {
	ID          string         `json:"id"`
	Seq         uint64         `json:"seq"`
	Code        string         `json:"code"`
	Outcome     string         `json:"outcome"`
	ErrorKind   ErrorKind      `json:"error_kind,omitempty"`
	Error       string         `json:"error,omitempty"`
	Address     *AddressRecord `json:"address,omitempty"`
	Temperature *float64       `json:"temperature"`
	StartedAt   time.Time      `json:"started_at"`
	CompletedAt time.Time      `json:"completed_at"`
	DurationMS  int64          `json:"duration_ms"`
}

// NewLookupEvent builds an event from a terminal view state.
func NewLookupEvent(v ViewState) LookupEvent {
	return LookupEvent{
		ID:          uuid.NewString(),
		Seq:         v.Seq,
		Code:        v.Code,
		Outcome:     v.Outcome(),
		ErrorKind:   v.ErrorKind,
		Error:       v.Error,
		Address:     v.Address,
		Temperature: v.Temperature,
		StartedAt:   v.StartedAt,
		CompletedAt: v.CompletedAt,
		DurationMS:  v.Duration().Milliseconds(),
	}
}
