// Package stats keeps a periodically refreshed summary of the platform.
package stats

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"crowdfund-go/internal/repositories"
)

type Snapshot struct {
	TotalProjects  int       `json:"total_projects"`
	ActiveProjects int       `json:"active_projects"`
	TotalGoal      float64   `json:"total_goal"`
	TotalCollected float64   `json:"total_collected"`
	Backers        int       `json:"backers"`
	RefreshedAt    time.Time `json:"refreshed_at"`
}

type Service struct {
	projects repositories.ProjectRepository
	log      *zap.Logger
	now      func() time.Time

	mu       sync.RWMutex
	snapshot Snapshot

	runMu   sync.Mutex
	running bool
}

func NewService(projects repositories.ProjectRepository, log *zap.Logger) *Service {
	return &Service{projects: projects, log: log, now: time.Now}
}

// Current returns the last computed snapshot. It is the zero Snapshot until
// the first refresh.
func (s *Service) Current() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshot
}

// Run refreshes the snapshot unless a refresh is already in flight.
func (s *Service) Run(ctx context.Context) {
	s.runMu.Lock()
	if s.running {
		s.runMu.Unlock()
		s.log.Debug("stats refresh already running; skipping")
		return
	}
	s.running = true
	s.runMu.Unlock()

	defer func() {
		s.runMu.Lock()
		s.running = false
		s.runMu.Unlock()
	}()

	if _, err := s.Refresh(ctx); err != nil {
		s.log.Error("stats refresh failed", zap.Error(err))
	}
}

func (s *Service) Refresh(ctx context.Context) (Snapshot, error) {
	projects, err := s.projects.List(ctx)
	if err != nil {
		return Snapshot{}, fmt.Errorf("load projects for stats: %w", err)
	}

	snap := Snapshot{TotalProjects: len(projects), RefreshedAt: s.now()}
	backers := map[string]struct{}{}
	for _, p := range projects {
		if p.Active {
			snap.ActiveProjects++
		}
		snap.TotalGoal += p.PledgeGoal
		snap.TotalCollected += p.Collected
		for _, id := range p.Backers {
			backers[id] = struct{}{}
		}
	}
	snap.Backers = len(backers)

	s.mu.Lock()
	s.snapshot = snap
	s.mu.Unlock()

	s.log.Info("stats refreshed", zap.Int("projects", snap.TotalProjects), zap.Float64("collected", snap.TotalCollected))
	return snap, nil
}
