package projects

import (
	"context"

	"crowdfund-go/internal/model"
)

type Notifier interface {
	SendAlert(alert model.Alert)
}

// LifecycleGuard decides whether actorID may activate or deactivate the
// project. actorID is empty for anonymous requests.
type LifecycleGuard interface {
	AllowLifecycle(ctx context.Context, actorID string, project model.Project) error
}

type nopNotifier struct{}

func (nopNotifier) SendAlert(model.Alert) {}
