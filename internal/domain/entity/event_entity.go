package entity

import (
	"fmt"
	"time"
)

// EventKind names the mutation a DomainEvent reports.
type EventKind string

const (
	EventUserCreated EventKind = "USER_CREATED"
	EventUserUpdated EventKind = "USER_UPDATED"
	EventUserDeleted EventKind = "USER_DELETED"
)

// DomainEvent is published after a user mutation has been stored.
// It is a plain value: two events are equal when all fields are equal.
type DomainEvent struct {
	Timestamp int64     `json:"timestamp"` // milliseconds since epoch
	UserID    UserID    `json:"user_id"`
	Kind      EventKind `json:"type"`
}

func NewDomainEvent(kind EventKind, userID UserID, at time.Time) DomainEvent {
	return DomainEvent{Timestamp: at.UnixMilli(), UserID: userID, Kind: kind}
}

func (e DomainEvent) String() string {
	return fmt.Sprintf("DomainEvent[timestamp=%d, userId=%d, type=%s]", e.Timestamp, e.UserID, e.Kind)
}
