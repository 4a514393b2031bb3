package outbox

import "time"

// Status tracks an event through the relay: pending rows are up for grabs,
// in_progress rows are leased, sent and failed are terminal (failed rows keep
// their last error for inspection).
type Status string

const (
	StatusPending    Status = "pending"
	StatusInProgress Status = "in_progress"
	StatusSent       Status = "sent"
	StatusFailed     Status = "failed"
)

// Event is one outbox row. Payload is the serialized domain event;
// Traceparent carries the W3C trace context of the request that produced it.
type Event struct {
	ID            int64
	AggregateType string
	AggregateID   string
	Type          string
	Payload       []byte
	Traceparent   string
	CreatedAt     time.Time
	Status        Status
	RetryCount    int
	LastError     *string
}
