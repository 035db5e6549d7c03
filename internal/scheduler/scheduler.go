package scheduler

import (
	"context"
	"sync"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Job is a unit of periodic work. Run must be safe to call while a previous
// run is still going.
type Job interface {
	Run(ctx context.Context)
}

type Scheduler struct {
	cron *cron.Cron
	job  Job
	spec string
	log  *zap.Logger

	initial sync.WaitGroup
}

func New(spec string, job Job, log *zap.Logger) *Scheduler {
	return &Scheduler{
		cron: cron.New(),
		job:  job,
		spec: spec,
		log:  log,
	}
}

// Start runs the job once immediately, then on every tick of spec.
func (s *Scheduler) Start() error {
	_, err := s.cron.AddFunc(s.spec, func() {
		s.log.Debug("scheduled job triggered", zap.String("spec", s.spec))
		s.job.Run(context.Background())
	})
	if err != nil {
		return err
	}

	s.initial.Add(1)
	go func() {
		defer s.initial.Done()
		s.job.Run(context.Background())
	}()
	s.cron.Start()
	return nil
}

// Stop halts the schedule and waits for any run in flight.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.initial.Wait()
}
