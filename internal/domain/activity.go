package domain

import (
	"errors"
	"fmt"
	"slices"
	"strings"
)

// Activity is an extracurricular offering together with its current roster.
// Participants are kept in signup order and never contain the same email twice.
type Activity struct {
	Name            string
	Description     string
	Schedule        string
	MaxParticipants int
	Participants    []string
}

// HasParticipant reports whether email is on the roster.
func (a Activity) HasParticipant(email string) bool {
	return slices.Contains(a.Participants, email)
}

// IsFull reports whether the roster has reached MaxParticipants.
func (a Activity) IsFull() bool {
	return len(a.Participants) >= a.MaxParticipants
}

// Clone returns a copy that does not share the participant slice.
func (a Activity) Clone() Activity {
	out := a
	out.Participants = make([]string, len(a.Participants))
	copy(out.Participants, a.Participants)
	return out
}

// Validate checks the structural invariants of a seeded activity.
func (a Activity) Validate() error {
	if strings.TrimSpace(a.Name) == "" {
		return errors.New("activity name is required")
	}
	if a.MaxParticipants <= 0 {
		return fmt.Errorf("activity %q: max_participants must be > 0", a.Name)
	}
	seen := make(map[string]struct{}, len(a.Participants))
	for _, email := range a.Participants {
		if _, dup := seen[email]; dup {
			return fmt.Errorf("activity %q: duplicate participant %q", a.Name, email)
		}
		seen[email] = struct{}{}
	}
	return nil
}
