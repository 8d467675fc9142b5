package schema

// SchemaVersion is the current event schema version.
const SchemaVersion uint16 = 1

// Subjects carried by the bus.
const (
	SubjectActivity     = "activity_logs"
	SubjectNotification = "notification_logs"
)

// EventType defines the category of an event published on the bus.
type EventType uint16

const (
	EventUnknown EventType = iota
	EventActivity
	EventNotification
)

// Subject returns the bus subject the event type travels on.
func (t EventType) Subject() string {
	switch t {
	case EventActivity:
		return SubjectActivity
	case EventNotification:
		return SubjectNotification
	default:
		return ""
	}
}

// EventHeader is the common metadata attached to every event.
type EventHeader struct {
	Type     EventType `json:"type"`
	Version  uint16    `json:"version"`
	ID       string    `json:"id"`
	TenantID string    `json:"tenant_id"`
	Seq      uint64    `json:"seq"`
	TsEvent  int64     `json:"ts_event"`
	TraceID  string    `json:"trace_id,omitempty"`
}

// NewHeader builds a header with the current schema version.
func NewHeader(eventType EventType, id, tenantID string, seq uint64, tsEvent int64) EventHeader {
	return EventHeader{
		Type:     eventType,
		Version:  SchemaVersion,
		ID:       id,
		TenantID: tenantID,
		Seq:      seq,
		TsEvent:  tsEvent,
	}
}
