package utils

import (
	"context"
	"time"

	applog "edutrack/logger"

	"github.com/pkg/errors"
	"github.com/robfig/cron/v3"
)

// Reconciler re-derives stored aggregates and reports how many rows changed.
type Reconciler interface {
	RecomputeAll(ctx context.Context) (int, error)
}

// Scheduler runs aggregate reconciliation on a cron schedule.
type Scheduler struct {
	cron       *cron.Cron
	reconciler Reconciler
	spec       string
	timeout    time.Duration
}

func NewScheduler(spec string, reconciler Reconciler, loc *time.Location) *Scheduler {
	return &Scheduler{
		cron:       cron.New(cron.WithLocation(loc)),
		reconciler: reconciler,
		spec:       spec,
		timeout:    5 * time.Minute,
	}
}

// Start registers the reconciliation job. An empty schedule disables it.
func (s *Scheduler) Start() error {
	logger := applog.For("scheduler")
	if s.spec == "" {
		logger.Info().Msg("aggregate reconciliation disabled")
		return nil
	}
	if _, err := s.cron.AddFunc(s.spec, s.RunOnce); err != nil {
		return errors.Wrapf(err, "invalid reconcile schedule %q", s.spec)
	}
	s.cron.Start()
	logger.Info().Str("schedule", s.spec).Msg("aggregate reconciliation scheduled")
	return nil
}

// RunOnce performs a single reconciliation pass.
func (s *Scheduler) RunOnce() {
	logger := applog.For("scheduler")
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	started := time.Now()
	changed, err := s.reconciler.RecomputeAll(ctx)
	if err != nil {
		logger.Error().Err(err).Msg("aggregate reconciliation failed")
		return
	}
	if changed > 0 {
		logger.Warn().Int("trainings", changed).Msg("aggregate drift corrected")
	}
	logger.Info().Dur("took", time.Since(started)).Msg("aggregate reconciliation finished")
}

func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
}
