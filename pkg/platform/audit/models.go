package audit

import (
	"context"
	"time"

	"healx/pkg/attrs"
	id "healx/pkg/domain"
)

// EventCategory classifies lifecycle events by their primary purpose so sinks
// can apply different retention.
type EventCategory string

const (
	// CategoryCompliance covers events with regulatory significance: the
	// registration, review and custody trail of a batch.
	CategoryCompliance EventCategory = "compliance"

	// CategorySecurity covers events relevant to abuse detection, such as a
	// provenance marker being replayed.
	CategorySecurity EventCategory = "security"

	// CategoryOperations covers routine activity that may be sampled.
	CategoryOperations EventCategory = "operations"
)

// Event is emitted from domain logic to capture key actions. Keep it
// transport-agnostic so stores and sinks can fan out.
type Event struct {
	Category  EventCategory
	Timestamp time.Time
	BatchID   id.BatchID
	Action    string
	// ActorWallet is the participant that performed the action. Empty for
	// anonymous verification.
	ActorWallet id.WalletAddress
	// Status is the batch status after the action.
	Status string
	// Marker is the provenance marker recorded by the action, if any.
	Marker string
	// Detail carries action-specific context: transfer location, rejection
	// reason, verification method.
	Detail    string
	RequestID string
}

// Store persists or forwards events. Implementations must be safe for
// concurrent use.
type Store interface {
	Append(ctx context.Context, event Event) error
}

type AuditEvent string

const (
	// Identity events
	EventProfileCreated AuditEvent = "profile_created"
	EventSessionIssued  AuditEvent = "session_issued"

	// Batch lifecycle events
	EventBatchRegistered AuditEvent = "batch_registered"
	EventBatchApproved   AuditEvent = "batch_approved"
	EventBatchRejected   AuditEvent = "batch_rejected"
	EventTransferLogged  AuditEvent = "transfer_logged"
	EventBatchVerified   AuditEvent = "batch_verified"

	// Provenance events
	EventMarkerReplayed AuditEvent = "marker_replayed"
)

var eventCategories = map[AuditEvent]EventCategory{
	EventProfileCreated:  CategoryCompliance,
	EventBatchRegistered: CategoryCompliance,
	EventBatchApproved:   CategoryCompliance,
	EventBatchRejected:   CategoryCompliance,
	EventTransferLogged:  CategoryCompliance,

	EventMarkerReplayed: CategorySecurity,

	EventSessionIssued: CategoryOperations,
	EventBatchVerified: CategoryOperations,
}

// Category returns the EventCategory for this audit event.
// Unknown events default to CategoryOperations.
func (e AuditEvent) Category() EventCategory {
	if cat, ok := eventCategories[e]; ok {
		return cat
	}
	return CategoryOperations
}

func (e AuditEvent) String() string {
	return string(e)
}

// FromAttributes builds the event for action from the key/value list a
// service logged it with. Recognised keys: batch_id, actor_wallet, status,
// marker, detail, request_id.
func FromAttributes(action AuditEvent, attributes []any) Event {
	return Event{
		BatchID:     id.BatchID(attrs.ExtractString(attributes, "batch_id")),
		Action:      action.String(),
		ActorWallet: id.WalletAddress(attrs.ExtractString(attributes, "actor_wallet")),
		Status:      attrs.ExtractString(attributes, "status"),
		Marker:      attrs.ExtractString(attributes, "marker"),
		Detail:      attrs.ExtractString(attributes, "detail"),
		RequestID:   attrs.ExtractString(attributes, "request_id"),
	}
}
