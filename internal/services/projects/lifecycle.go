package projects

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"crowdfund-go/internal/model"
)

// AllowAll lets anyone toggle a project, matching the historical behavior
// of the activate/deactivate links.
type AllowAll struct{}

func (AllowAll) AllowLifecycle(context.Context, string, model.Project) error {
	return nil
}

// OwnerOnly restricts activation changes to the project creator.
type OwnerOnly struct{}

func (OwnerOnly) AllowLifecycle(_ context.Context, actorID string, project model.Project) error {
	if actorID == "" {
		return ErrUnauthenticated
	}
	if actorID != project.CreatorID {
		return ErrForbidden
	}
	return nil
}

func (s *Service) Activate(ctx context.Context, actorID, id string) error {
	return s.setActive(ctx, actorID, id, true)
}

func (s *Service) Deactivate(ctx context.Context, actorID, id string) error {
	return s.setActive(ctx, actorID, id, false)
}

// setActive is idempotent: toggling to the current state is a no-op write.
func (s *Service) setActive(ctx context.Context, actorID, id string, active bool) error {
	project, err := s.projects.Get(ctx, id)
	if err != nil {
		return fmt.Errorf("load project %s: %w", id, err)
	}
	if err := s.guard.AllowLifecycle(ctx, actorID, project); err != nil {
		return err
	}
	if err := s.projects.SetActive(ctx, id, active); err != nil {
		return fmt.Errorf("set project %s active=%t: %w", id, active, err)
	}
	s.log.Info("project lifecycle changed", zap.String("project", id), zap.Bool("active", active), zap.String("actor", actorID))
	return nil
}
