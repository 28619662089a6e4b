package scheduler

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

// Poller is one periodic task owned by the supervisor. Run must be safe to
// call repeatedly; the supervisor guarantees at most one in-flight run.
type Poller interface {
	Name() string
	Run(ctx context.Context) error
}

// Supervisor owns the periodic timers for the background pollers. Each
// poller gets its own interval and an atomic busy flag: a tick that fires
// while the previous run is still executing is dropped, not queued.
type Supervisor struct {
	cron *cron.Cron
	log  *logrus.Logger

	ctx    context.Context
	cancel context.CancelFunc
}

// NewSupervisor creates a new scheduler supervisor
func NewSupervisor(log *logrus.Logger) *Supervisor {
	ctx, cancel := context.WithCancel(context.Background())

	return &Supervisor{
		cron:   cron.New(),
		log:    log,
		ctx:    ctx,
		cancel: cancel,
	}
}

// Register schedules a poller at the given interval. Must be called before
// Start.
func (s *Supervisor) Register(p Poller, every time.Duration) error {
	if every <= 0 {
		return fmt.Errorf("poller %q requires a positive interval", p.Name())
	}

	if _, err := s.cron.AddFunc(fmt.Sprintf("@every %s", every), s.tick(p)); err != nil {
		return fmt.Errorf("failed to schedule poller %q: %w", p.Name(), err)
	}

	s.log.WithFields(logrus.Fields{
		"poller":   p.Name(),
		"interval": every.String(),
	}).Info("poller registered")
	return nil
}

// tick wraps one poller run behind its busy flag. A tick arriving while the
// previous run is still executing is dropped, not queued.
func (s *Supervisor) tick(p Poller) func() {
	var busy atomic.Bool
	return func() {
		if !busy.CompareAndSwap(false, true) {
			s.log.WithField("poller", p.Name()).Debug("previous run still in flight, dropping tick")
			return
		}
		defer busy.Store(false)

		started := time.Now()
		if err := p.Run(s.ctx); err != nil {
			s.log.WithField("poller", p.Name()).WithError(err).Error("poller run failed")
			return
		}
		s.log.WithFields(logrus.Fields{
			"poller":   p.Name(),
			"duration": time.Since(started).String(),
		}).Debug("poller run finished")
	}
}

// Start begins ticking all registered pollers
func (s *Supervisor) Start() {
	s.cron.Start()
}

// Stop cancels the poller context and waits for in-flight runs to finish
func (s *Supervisor) Stop() {
	s.cancel()
	<-s.cron.Stop().Done()
}
