package events

import (
	"sync"
	"time"

	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

const (
	EventBookingCreated  = "booking_created"
	EventBookingApproved = "booking_approved"
	EventBookingRejected = "booking_rejected"
	EventCommentAdded    = "comment_added"
	EventItemCreated     = "item_created"
	EventRequestCreated  = "request_created"
)

// AllEventTypes lists every event the core publishes.
var AllEventTypes = []string{
	EventBookingCreated,
	EventBookingApproved,
	EventBookingRejected,
	EventCommentAdded,
	EventItemCreated,
	EventRequestCreated,
}

// BookingEventPayload describes the minimal booking snapshot for event consumers.
type BookingEventPayload struct {
	BookingID   int64     `json:"booking_id"`
	ItemID      int64     `json:"item_id"`
	ItemName    string    `json:"item_name"`
	OwnerID     int64     `json:"owner_id"`
	BookerID    int64     `json:"booker_id"`
	Status      string    `json:"status"`
	Start       time.Time `json:"start"`
	End         time.Time `json:"end"`
	ChangedByID int64     `json:"changed_by_id,omitempty"`
	// Overwrite is set when a terminal booking was transitioned again.
	Overwrite bool `json:"overwrite,omitempty"`
}

type CommentEventPayload struct {
	CommentID int64 `json:"comment_id"`
	ItemID    int64 `json:"item_id"`
	AuthorID  int64 `json:"author_id"`
}

type ItemEventPayload struct {
	ItemID    int64  `json:"item_id"`
	OwnerID   int64  `json:"owner_id"`
	RequestID *int64 `json:"request_id,omitempty"`
}

type RequestEventPayload struct {
	RequestID   int64 `json:"request_id"`
	RequestorID int64 `json:"requestor_id"`
}

// Event represents a lightweight domain event.
type Event struct {
	Type      string
	Payload   []byte
	CreatedAt time.Time
}

// Decode unmarshals the event payload into v.
func (e *Event) Decode(v interface{}) error {
	return json.Unmarshal(e.Payload, v)
}

// EventHandler reacts to an event.
type EventHandler func(event *Event) error

// EventBus provides in-process pub/sub for events.
type EventBus struct {
	subscribers map[string][]EventHandler
	mu          sync.RWMutex
}

// NewEventBus constructs an empty bus.
func NewEventBus() *EventBus {
	return &EventBus{subscribers: make(map[string][]EventHandler)}
}

// Subscribe registers a handler for a given event type.
func (b *EventBus) Subscribe(eventType string, handler EventHandler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subscribers[eventType] = append(b.subscribers[eventType], handler)
}

// Publish notifies subscribers of the event type and returns the first handler error.
func (b *EventBus) Publish(event *Event) error {
	b.mu.RLock()
	handlers := append([]EventHandler(nil), b.subscribers[event.Type]...)
	b.mu.RUnlock()

	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now()
	}

	var first error
	for _, handler := range handlers {
		// все подписчики вызываются, даже если один упал
		if err := handler(event); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// PublishJSON serializes the payload and publishes an event. A nil bus drops the event.
func (b *EventBus) PublishJSON(eventType string, payload interface{}) error {
	if b == nil {
		return nil
	}

	event, err := NewJSONEvent(eventType, payload)
	if err != nil {
		return err
	}
	return b.Publish(&event)
}

// NewJSONEvent builds an Event with JSON payload for manual publishing.
func NewJSONEvent(eventType string, payload interface{}) (Event, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return Event{}, err
	}

	return Event{Type: eventType, Payload: raw, CreatedAt: time.Now()}, nil
}
