// Package domain defines the business logic for the activity registry.
package domain

import (
	"context"
	"errors"
	"sync"
	"time"

	"go.uber.org/zap"

	"example.com/mergington/internal/events"
	"example.com/mergington/internal/notify"
	"example.com/mergington/internal/observability"
)

var (
	// ErrActivityNotFound is returned when the activity name is not in the registry.
	ErrActivityNotFound = errors.New("activity not found")
	// ErrAlreadySignedUp is returned when the email is already on the roster.
	ErrAlreadySignedUp = errors.New("student is already signed up for this activity")
	// ErrNotSignedUp is returned when unregistering an email that is not on the roster.
	ErrNotSignedUp = errors.New("student is not signed up for this activity")
	// ErrActivityFull is returned when capacity enforcement is on and the roster is full.
	ErrActivityFull = errors.New("activity is full")
	// ErrEmailRequired is returned by callers when no email parameter was supplied.
	// Present values, blank ones included, are stored verbatim.
	ErrEmailRequired = errors.New("email is required")
)

// Repository captures registry storage operations. Membership checks and the
// mutation that follows them must happen atomically inside the implementation.
type Repository interface {
	List(ctx context.Context) ([]Activity, error)
	Get(ctx context.Context, name string) (*Activity, error)
	AddParticipant(ctx context.Context, name, email string, enforceCapacity bool) (Activity, error)
	RemoveParticipant(ctx context.Context, name, email string) (Activity, error)
}

// Option configures a Service.
type Option func(*Service)

// WithCapacityEnforcement makes Signup reject emails once MaxParticipants is reached.
func WithCapacityEnforcement(enabled bool) Option {
	return func(s *Service) { s.enforceCapacity = enabled }
}

// WithLogger sets the logger used for notifier failures.
func WithLogger(l *zap.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// Service orchestrates sign-up workflows.
type Service struct {
	repo            Repository
	notifier        notify.Notifier
	logger          *zap.Logger
	enforceCapacity bool
	now             func() time.Time

	// rosterLocks holds one *sync.Mutex per known activity name. It orders a
	// roster change and its notification against other changes to the same activity.
	rosterLocks sync.Map
}

// NewService constructs a Service.
func NewService(repo Repository, notifier notify.Notifier, opts ...Option) *Service {
	if notifier == nil {
		notifier = notify.NoopNotifier{}
	}
	s := &Service{
		repo:     repo,
		notifier: notifier,
		logger:   zap.NewNop(),
		now:      func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ListActivities returns every activity in seed order.
func (s *Service) ListActivities(ctx context.Context) ([]Activity, error) {
	return s.repo.List(ctx)
}

// GetActivity fetches a single activity by name.
func (s *Service) GetActivity(ctx context.Context, name string) (*Activity, error) {
	activity, err := s.repo.Get(ctx, name)
	if err != nil {
		return nil, err
	}
	if activity == nil {
		return nil, ErrActivityNotFound
	}
	return activity, nil
}

// Signup appends email to the roster of the named activity.
func (s *Service) Signup(ctx context.Context, name, email string) (Activity, error) {
	unlock, err := s.lockRoster(ctx, name)
	if err != nil {
		observability.RecordRejection(observability.OperationSignup, rejectionReason(err))
		return Activity{}, err
	}
	defer unlock()

	activity, err := s.repo.AddParticipant(ctx, name, email, s.enforceCapacity)
	if err != nil {
		observability.RecordRejection(observability.OperationSignup, rejectionReason(err))
		return Activity{}, err
	}

	observability.RecordSignup(name, s.now())
	s.publish(ctx, activity, email, events.ActionSignedUp)
	return activity, nil
}

// Unregister removes email from the roster of the named activity.
func (s *Service) Unregister(ctx context.Context, name, email string) (Activity, error) {
	unlock, err := s.lockRoster(ctx, name)
	if err != nil {
		observability.RecordRejection(observability.OperationUnregister, rejectionReason(err))
		return Activity{}, err
	}
	defer unlock()

	activity, err := s.repo.RemoveParticipant(ctx, name, email)
	if err != nil {
		observability.RecordRejection(observability.OperationUnregister, rejectionReason(err))
		return Activity{}, err
	}

	observability.RecordUnregistration(name, s.now())
	s.publish(ctx, activity, email, events.ActionUnregistered)
	return activity, nil
}

// lockRoster serialises changes to one activity, including their notification,
// so sinks keyed by activity see events in roster order. Locks are only created
// for names the registry knows.
func (s *Service) lockRoster(ctx context.Context, name string) (func(), error) {
	if _, err := s.GetActivity(ctx, name); err != nil {
		return nil, err
	}
	v, _ := s.rosterLocks.LoadOrStore(name, &sync.Mutex{})
	mu := v.(*sync.Mutex)
	mu.Lock()
	return mu.Unlock, nil
}

// publish never fails the calling operation; the roster change has already been applied.
// Callers hold the activity's roster lock, so a slow sink delays later changes to that activity.
func (s *Service) publish(ctx context.Context, activity Activity, email string, action events.RosterAction) {
	evt := events.NewRosterChanged(activity.Name, email, action, len(activity.Participants), s.now())
	if err := s.notifier.Notify(ctx, evt); err != nil {
		s.logger.Warn("roster notification failed",
			zap.String("activity", activity.Name),
			zap.String("action", string(action)),
			zap.String("event_id", evt.EventID),
			zap.Error(err),
		)
	}
}

func rejectionReason(err error) string {
	switch {
	case errors.Is(err, ErrActivityNotFound):
		return "not_found"
	case errors.Is(err, ErrAlreadySignedUp):
		return "already_signed_up"
	case errors.Is(err, ErrNotSignedUp):
		return "not_signed_up"
	case errors.Is(err, ErrActivityFull):
		return "full"
	default:
		return "error"
	}
}
