package domain_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"example.com/mergington/internal/domain"
	"example.com/mergington/internal/events"
	"example.com/mergington/internal/registry"
)

func newService(t *testing.T, notifier *stubNotifier, opts ...domain.Option) *domain.Service {
	t.Helper()
	repo, err := registry.NewInMemoryRepository([]domain.Activity{
		{Name: "Chess Club", Description: "chess", Schedule: "Fridays", MaxParticipants: 2, Participants: []string{"michael@mergington.edu"}},
	})
	require.NoError(t, err)
	if notifier == nil {
		return domain.NewService(repo, nil, opts...)
	}
	return domain.NewService(repo, notifier, opts...)
}

func TestSignupAppendsAndNotifies(t *testing.T) {
	notifier := &stubNotifier{}
	svc := newService(t, notifier)

	activity, err := svc.Signup(context.Background(), "Chess Club", "new@mergington.edu")
	require.NoError(t, err)
	require.Equal(t, []string{"michael@mergington.edu", "new@mergington.edu"}, activity.Participants)

	require.Len(t, notifier.events, 1)
	evt := notifier.events[0]
	require.Equal(t, events.ActionSignedUp, evt.Action)
	require.Equal(t, "Chess Club", evt.Activity)
	require.Equal(t, 2, evt.ParticipantCount)
	require.NotEmpty(t, evt.EventID)
}

func TestSignupStoresBlankEmailVerbatim(t *testing.T) {
	notifier := &stubNotifier{}
	svc := newService(t, notifier)
	ctx := context.Background()

	activity, err := svc.Signup(ctx, "Chess Club", " ")
	require.NoError(t, err)
	require.Equal(t, []string{"michael@mergington.edu", " "}, activity.Participants)

	activity, err = svc.Signup(ctx, "Chess Club", "")
	require.NoError(t, err)
	require.Equal(t, []string{"michael@mergington.edu", " ", ""}, activity.Participants)

	_, err = svc.Signup(ctx, "Chess Club", " ")
	require.ErrorIs(t, err, domain.ErrAlreadySignedUp)

	activity, err = svc.Unregister(ctx, "Chess Club", "")
	require.NoError(t, err)
	require.Equal(t, []string{"michael@mergington.edu", " "}, activity.Participants)
	require.Len(t, notifier.events, 3)
}

func TestConcurrentSignupsNotifyInRosterOrder(t *testing.T) {
	notifier := &stubNotifier{}
	svc := newService(t, notifier)

	const students = 50
	var wg sync.WaitGroup
	for i := 0; i < students; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := svc.Signup(context.Background(), "Chess Club", fmt.Sprintf("s%02d@mergington.edu", i))
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	require.Len(t, notifier.events, students)
	for i, evt := range notifier.events {
		require.Equal(t, i+2, evt.ParticipantCount, "event %d delivered out of roster order", i)
	}
}

func TestSignupDoesNotEnforceCapacityByDefault(t *testing.T) {
	svc := newService(t, nil)
	ctx := context.Background()

	for _, email := range []string{"a@mergington.edu", "b@mergington.edu", "c@mergington.edu"} {
		_, err := svc.Signup(ctx, "Chess Club", email)
		require.NoError(t, err)
	}
	activity, err := svc.GetActivity(ctx, "Chess Club")
	require.NoError(t, err)
	require.Len(t, activity.Participants, 4)
}

func TestSignupEnforcesCapacityWhenEnabled(t *testing.T) {
	svc := newService(t, nil, domain.WithCapacityEnforcement(true))
	ctx := context.Background()

	_, err := svc.Signup(ctx, "Chess Club", "a@mergington.edu")
	require.NoError(t, err)
	_, err = svc.Signup(ctx, "Chess Club", "b@mergington.edu")
	require.ErrorIs(t, err, domain.ErrActivityFull)
}

func TestUnregisterRemovesAndNotifies(t *testing.T) {
	notifier := &stubNotifier{}
	svc := newService(t, notifier)

	activity, err := svc.Unregister(context.Background(), "Chess Club", "michael@mergington.edu")
	require.NoError(t, err)
	require.Empty(t, activity.Participants)
	require.Len(t, notifier.events, 1)
	require.Equal(t, events.ActionUnregistered, notifier.events[0].Action)
	require.Equal(t, 0, notifier.events[0].ParticipantCount)

	_, err = svc.Unregister(context.Background(), "Chess Club", "michael@mergington.edu")
	require.ErrorIs(t, err, domain.ErrNotSignedUp)
}

func TestGetActivityNotFound(t *testing.T) {
	svc := newService(t, nil)

	_, err := svc.GetActivity(context.Background(), "Robotics")
	require.ErrorIs(t, err, domain.ErrActivityNotFound)

	_, err = svc.Signup(context.Background(), "Robotics", "new@mergington.edu")
	require.ErrorIs(t, err, domain.ErrActivityNotFound)
	_, err = svc.Unregister(context.Background(), "Robotics", "new@mergington.edu")
	require.ErrorIs(t, err, domain.ErrActivityNotFound)
}

func TestNotifierFailureIsLoggedNotReturned(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	notifier := &stubNotifier{err: errors.New("broker unavailable")}
	svc := newService(t, notifier, domain.WithLogger(zap.New(core)))

	_, err := svc.Signup(context.Background(), "Chess Club", "new@mergington.edu")
	require.NoError(t, err)
	require.Equal(t, 1, logs.FilterMessage("roster notification failed").Len())
}

type stubNotifier struct {
	mu     sync.Mutex
	events []events.RosterChanged
	err    error
}

func (s *stubNotifier) Notify(_ context.Context, evt events.RosterChanged) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, evt)
	return s.err
}
