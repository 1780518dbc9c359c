// Package events defines the domain event surface for the audience platform.
//
// The member service publishes every lifecycle and label-relation change
// through a Sink. Publishers never know who is listening; downstream
// consumers (analytics, webhooks) attach their own sink implementation at
// wiring time. Tests use a capturing fake.
package events

import (
	"context"
	"database/sql"
	"time"

	"github.com/ignite/audience-hub/internal/domain"
)

// Event names emitted by the member service.
const (
	MemberAdded   = "member.added"
	MemberEdited  = "member.edited"
	MemberDeleted = "member.deleted"

	MemberLabelAttached = "member.label.attached"
	MemberLabelDetached = "member.label.detached"
	LabelAttached       = "label.attached"
	LabelDetached       = "label.detached"
)

// Event is one domain event. Member carries the full relation-inclusive
// snapshot of the affected member so consumers never re-fetch. Label is set
// only on label-scoped events. Tx is the open transaction of the triggering
// operation when the event fires inside one; listeners may use it to do
// further work in the same commit boundary. It is never serialized.
type Event struct {
	Name       string         `json:"name"`
	Member     *domain.Member `json:"member,omitempty"`
	Label      *domain.Label  `json:"label,omitempty"`
	Tx         *sql.Tx        `json:"-"`
	OccurredAt time.Time      `json:"occurred_at"`
}

// Sink receives domain events. Emit is called synchronously from inside the
// triggering operation, after the underlying write has been applied.
// Implementations must not block for long and must tolerate being called
// while a database transaction is still open.
type Sink interface {
	Emit(ctx context.Context, e Event)
}

// SinkFunc adapts a function to the Sink interface.
type SinkFunc func(ctx context.Context, e Event)

// Emit calls f.
func (f SinkFunc) Emit(ctx context.Context, e Event) { f(ctx, e) }

// NopSink discards all events.
type NopSink struct{}

// Emit does nothing.
func (NopSink) Emit(context.Context, Event) {}
