package repositories

import (
	"context"
	"errors"

	"crowdfund-go/internal/model"
)

var (
	ErrNotFound  = errors.New("record not found")
	ErrInactive  = errors.New("project is not active")
	ErrDuplicate = errors.New("record already exists")
)

// ProjectRepository is the document-style store behind the project pages.
// List results are in insertion order.
type ProjectRepository interface {
	List(ctx context.Context) ([]model.Project, error)
	ListByCategory(ctx context.Context, category string) ([]model.Project, error)
	Get(ctx context.Context, id string) (model.Project, error)
	Create(ctx context.Context, input model.ProjectCreate) (model.Project, error)
	Update(ctx context.Context, id string, input model.ProjectUpdate) (model.Project, error)
	// Donate atomically adds amount to the collected total and records the
	// backer. It returns ErrInactive without changes when the project is closed.
	Donate(ctx context.Context, id string, amount float64, backerID string) (model.Project, error)
	AddComment(ctx context.Context, id string, comment model.Comment) (model.Comment, error)
	SetActive(ctx context.Context, id string, active bool) error
}

type UserRepository interface {
	Get(ctx context.Context, id string) (model.User, error)
	GetByEmail(ctx context.Context, email string) (model.User, error)
	Create(ctx context.Context, input model.UserCreate) (model.User, error)
}
