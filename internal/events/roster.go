// Package events defines the payloads emitted when an activity roster changes.
package events

import (
	"time"

	"github.com/google/uuid"
)

// RosterAction names the kind of roster change.
type RosterAction string

const (
	ActionSignedUp     RosterAction = "signed_up"
	ActionUnregistered RosterAction = "unregistered"
)

// RosterChanged is emitted after a participant is added to or removed from an activity.
type RosterChanged struct {
	EventID          string       `json:"event_id"`
	Activity         string       `json:"activity"`
	Email            string       `json:"email"`
	Action           RosterAction `json:"action"`
	ParticipantCount int          `json:"participant_count"`
	OccurredAt       time.Time    `json:"occurred_at"`
}

// NewRosterChanged stamps a fresh event id on the change.
func NewRosterChanged(activity, email string, action RosterAction, count int, at time.Time) RosterChanged {
	return RosterChanged{
		EventID:          uuid.NewString(),
		Activity:         activity,
		Email:            email,
		Action:           action,
		ParticipantCount: count,
		OccurredAt:       at.UTC(),
	}
}
