// Package jobs schedules the background maintenance of reservations.
package jobs

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

const runTimeout = time.Minute

// StayCompleter marks finished stays as completed.
type StayCompleter interface {
	CompletePastStays(ctx context.Context) (int, error)
}

// Scheduler wraps a cron runner with the reservation jobs.
type Scheduler struct {
	cron *cron.Cron
	log  *zap.Logger
}

// New registers the stay completion job under schedule (standard five field
// cron syntax) without starting it.
func New(schedule string, stays StayCompleter, log *zap.Logger) (*Scheduler, error) {
	if log == nil {
		log = zap.NewNop()
	}
	c := cron.New(cron.WithLocation(time.UTC))
	s := &Scheduler{cron: c, log: log}
	if _, err := c.AddFunc(schedule, func() { s.completeStays(stays) }); err != nil {
		return nil, errors.Wrapf(err, "schedule %q", schedule)
	}
	return s, nil
}

func (s *Scheduler) Start() {
	s.cron.Start()
	s.log.Info("cron jobs started", zap.Int("jobs", len(s.cron.Entries())))
}

// Stop prevents new runs and waits for a running job to finish or ctx to
// expire.
func (s *Scheduler) Stop(ctx context.Context) {
	select {
	case <-s.cron.Stop().Done():
	case <-ctx.Done():
		s.log.Warn("cron stop timed out")
	}
}

func (s *Scheduler) completeStays(stays StayCompleter) {
	ctx, cancel := context.WithTimeout(context.Background(), runTimeout)
	defer cancel()
	start := time.Now()
	n, err := stays.CompletePastStays(ctx)
	if err != nil {
		s.log.Error("complete past stays", zap.Error(err))
		return
	}
	s.log.Info("completed past stays", zap.Int("count", n), zap.Duration("took", time.Since(start)))
}
