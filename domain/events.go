package domain

import "time"

// EventType identifies the kind of change a feed message carries.
type EventType string

const (
	EventCreated EventType = "created"
	EventUpdated EventType = "updated"
	EventDeleted EventType = "deleted"
	EventStatus  EventType = "status"
)

// MenuEvent is a normalized menu change. Item is set for created/updated,
// ID for deleted.
type MenuEvent struct {
	Type EventType
	Item *MenuItem
	ID   string
}

// OrderEvent is a normalized order change. Order is set for created/updated.
// Status events carry only the affected ID, the authoritative status and,
// when the order reached the terminal state, its completion timestamp.
type OrderEvent struct {
	Type        EventType
	Order       *Order
	ID          string
	Status      Status
	CompletedAt time.Time
}
