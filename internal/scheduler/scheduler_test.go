package scheduler

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/zap/zaptest"
)

type countingJob struct {
	ran chan struct{}
}

func (j *countingJob) Run(context.Context) {
	j.ran <- struct{}{}
}

func TestStartRunsJobImmediately(t *testing.T) {
	job := &countingJob{ran: make(chan struct{}, 1)}
	s := New("@every 1h", job, zaptest.NewLogger(t))
	if err := s.Start(); err != nil {
		t.Fatalf("start: %v", err)
	}
	defer s.Stop()

	select {
	case <-job.ran:
	case <-time.After(2 * time.Second):
		t.Fatal("job did not run on start")
	}
}

func TestStartRejectsBadSpec(t *testing.T) {
	s := New("not a cron spec", &countingJob{ran: make(chan struct{}, 1)}, zaptest.NewLogger(t))
	if err := s.Start(); err == nil {
		t.Fatal("expected invalid spec error")
	}
}

type slowJob struct {
	started  chan struct{}
	release  chan struct{}
	finished atomic.Bool
}

func (j *slowJob) Run(context.Context) {
	close(j.started)
	<-j.release
	j.finished.Store(true)
}

func TestStopWaitsForRunningJob(t *testing.T) {
	job := &slowJob{started: make(chan struct{}), release: make(chan struct{})}
	s := New("@every 1h", job, zaptest.NewLogger(t))
	if err := s.Start(); err != nil {
		t.Fatalf("start: %v", err)
	}
	<-job.started

	stopped := make(chan struct{})
	go func() {
		s.Stop()
		close(stopped)
	}()

	select {
	case <-stopped:
		t.Fatal("stop returned while the job was still running")
	case <-time.After(50 * time.Millisecond):
	}

	close(job.release)
	select {
	case <-stopped:
	case <-time.After(2 * time.Second):
		t.Fatal("stop did not return after the job finished")
	}
	if !job.finished.Load() {
		t.Fatal("expected job to finish before stop returned")
	}
}
