package occupancy

import (
	"context"
	"errors"
	"time"

	"github.com/nerrad567/aircontrol-core/internal/actuator"
	"github.com/nerrad567/aircontrol-core/internal/room"
)

// DefaultInterval is the time between two passes.
const DefaultInterval = time.Minute

// Logger defines the logging interface used by the sweep.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

// Applier is the dispatcher operation the sweep needs.
type Applier interface {
	Apply(ctx context.Context, cmd actuator.Command) error
}

// Options configures a Sweep.
type Options struct {
	Interval time.Duration

	// IncludeSlightlyOpen also closes SlightlyOpen windows.
	IncludeSlightlyOpen bool

	// Location is the time zone of the opening hours. Default UTC.
	Location *time.Location

	Logger Logger
	Now    func() time.Time
}

// Sweep periodically enforces opening hours.
type Sweep struct {
	store        *room.Store
	applier      Applier
	interval     time.Duration
	slightlyOpen bool
	loc          *time.Location
	logger       Logger
	now          func() time.Time
}

// Result summarises one pass.
type Result struct {
	Checked int
	Closed  int
	Failed  int
}

// New creates a sweep over store that closes windows through applier.
func New(store *room.Store, applier Applier, opts Options) *Sweep {
	s := &Sweep{
		store:        store,
		applier:      applier,
		interval:     opts.Interval,
		slightlyOpen: opts.IncludeSlightlyOpen,
		loc:          opts.Location,
		logger:       opts.Logger,
		now:          opts.Now,
	}
	if s.interval <= 0 {
		s.interval = DefaultInterval
	}
	if s.loc == nil {
		s.loc = time.UTC
	}
	if s.logger == nil {
		s.logger = noopLogger{}
	}
	if s.now == nil {
		s.now = time.Now
	}
	return s
}

// Run sweeps every interval until ctx is cancelled. It always returns nil.
func (s *Sweep) Run(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.logger.Info("occupancy sweep started", "interval", s.interval.String())
	for {
		select {
		case <-ctx.Done():
			s.logger.Info("occupancy sweep stopped")
			return nil
		case <-ticker.C:
			// The pass gets a context that is not cancelled by shutdown so it
			// finishes the rooms it started.
			res := s.SweepOnce(context.WithoutCancel(ctx))
			if res.Closed > 0 || res.Failed > 0 {
				s.logger.Info("occupancy sweep pass",
					"checked", res.Checked, "closed", res.Closed, "failed", res.Failed)
			}
		}
	}
}

// SweepOnce runs a single pass over every known room.
func (s *Sweep) SweepOnce(ctx context.Context) Result {
	var res Result
	for _, id := range s.store.IDs() {
		closed, err := s.sweepRoom(ctx, id)
		res.Checked++
		switch {
		case err != nil:
			res.Failed++
		case closed:
			res.Closed++
		}
	}
	return res
}

func (s *Sweep) sweepRoom(ctx context.Context, id room.ID) (bool, error) {
	unlock, err := s.store.LockExisting(id)
	if err != nil {
		return false, nil
	}
	defer unlock()

	r, err := s.store.Get(id)
	if err != nil || !r.Resolved {
		return false, nil
	}

	hour := s.now().In(s.loc).Hour()
	if r.Hours.Contains(hour) || !s.mustClose(r.Window) {
		return false, nil
	}

	err = s.applier.Apply(ctx, actuator.Command{
		Room:     id,
		Actuator: room.Windows,
		State:    room.Closed,
		Source:   actuator.SourceSweep,
	})
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, actuator.ErrAlreadyInState):
		return false, nil
	case actuator.IsRejection(err):
		s.logger.Info("sweep close rejected", "room", id.String(), "reason", err.Error())
		return false, err
	default:
		s.logger.Warn("sweep close failed", "room", id.String(), "error", err)
		return false, err
	}
}

func (s *Sweep) mustClose(w room.State) bool {
	return w == room.Open || (s.slightlyOpen && w == room.SlightlyOpen)
}
