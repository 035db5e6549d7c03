// Package memory keeps projects and users in process memory. It backs
// STORE_DRIVER=memory and the service and handler tests.
package memory

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"crowdfund-go/internal/model"
	"crowdfund-go/internal/repositories"
)

type Store struct {
	mu       sync.RWMutex
	projects []model.Project
	users    map[string]model.User
	now      func() time.Time
}

func NewStore() *Store {
	return &Store{users: map[string]model.User{}, now: time.Now}
}

// Projects returns the store's ProjectRepository view.
func (s *Store) Projects() *ProjectRepository {
	return &ProjectRepository{s: s}
}

// Users returns the store's UserRepository view.
func (s *Store) Users() *UserRepository {
	return &UserRepository{s: s}
}

type ProjectRepository struct {
	s *Store
}

func (r *ProjectRepository) List(ctx context.Context) ([]model.Project, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := make([]model.Project, 0, len(r.s.projects))
	for _, p := range r.s.projects {
		out = append(out, cloneProject(p))
	}
	return out, nil
}

func (r *ProjectRepository) ListByCategory(ctx context.Context, category string) ([]model.Project, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := []model.Project{}
	for _, p := range r.s.projects {
		if p.Category == category {
			out = append(out, cloneProject(p))
		}
	}
	return out, nil
}

func (r *ProjectRepository) Get(ctx context.Context, id string) (model.Project, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	i := r.s.indexOf(id)
	if i < 0 {
		return model.Project{}, repositories.ErrNotFound
	}
	return cloneProject(r.s.projects[i]), nil
}

func (r *ProjectRepository) Create(ctx context.Context, input model.ProjectCreate) (model.Project, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	createdAt := input.CreatedAt
	if createdAt.IsZero() {
		createdAt = r.s.now()
	}
	p := model.Project{
		ID:          uuid.NewString(),
		Title:       input.Title,
		Category:    input.Category,
		CreatorID:   input.CreatorID,
		CreatedAt:   createdAt,
		PledgeGoal:  input.PledgeGoal,
		Description: input.Description,
		Backers:     []string{},
		Comments:    []model.Comment{},
		Active:      true,
	}
	r.s.projects = append(r.s.projects, p)
	return cloneProject(p), nil
}

func (r *ProjectRepository) Update(ctx context.Context, id string, input model.ProjectUpdate) (model.Project, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	i := r.s.indexOf(id)
	if i < 0 {
		return model.Project{}, repositories.ErrNotFound
	}
	p := &r.s.projects[i]
	p.Title = input.Title
	p.Category = input.Category
	p.PledgeGoal = input.PledgeGoal
	p.Description = input.Description
	return cloneProject(*p), nil
}

func (r *ProjectRepository) Donate(ctx context.Context, id string, amount float64, backerID string) (model.Project, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	i := r.s.indexOf(id)
	if i < 0 {
		return model.Project{}, repositories.ErrNotFound
	}
	p := &r.s.projects[i]
	if !p.Active {
		return model.Project{}, repositories.ErrInactive
	}
	p.Collected += amount
	if !p.HasBacker(backerID) {
		p.Backers = append(p.Backers, backerID)
	}
	return cloneProject(*p), nil
}

func (r *ProjectRepository) AddComment(ctx context.Context, id string, comment model.Comment) (model.Comment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	i := r.s.indexOf(id)
	if i < 0 {
		return model.Comment{}, repositories.ErrNotFound
	}
	if comment.PostedAt.IsZero() {
		comment.PostedAt = r.s.now()
	}
	r.s.projects[i].Comments = append(r.s.projects[i].Comments, comment)
	return comment, nil
}

func (r *ProjectRepository) SetActive(ctx context.Context, id string, active bool) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	i := r.s.indexOf(id)
	if i < 0 {
		return repositories.ErrNotFound
	}
	r.s.projects[i].Active = active
	return nil
}

type UserRepository struct {
	s *Store
}

func (r *UserRepository) Get(ctx context.Context, id string) (model.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	u, ok := r.s.users[id]
	if !ok {
		return model.User{}, repositories.ErrNotFound
	}
	return u, nil
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (model.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for _, u := range r.s.users {
		if strings.EqualFold(u.Email, email) {
			return u, nil
		}
	}
	return model.User{}, repositories.ErrNotFound
}

func (r *UserRepository) Create(ctx context.Context, input model.UserCreate) (model.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, u := range r.s.users {
		if strings.EqualFold(u.Email, input.Email) {
			return model.User{}, repositories.ErrDuplicate
		}
	}
	u := model.User{
		ID:           uuid.NewString(),
		FirstName:    input.FirstName,
		LastName:     input.LastName,
		Email:        input.Email,
		PasswordHash: input.PasswordHash,
		CreatedAt:    r.s.now(),
	}
	r.s.users[u.ID] = u
	return u, nil
}

func (s *Store) indexOf(id string) int {
	for i := range s.projects {
		if s.projects[i].ID == id {
			return i
		}
	}
	return -1
}

func cloneProject(p model.Project) model.Project {
	p.Backers = append([]string{}, p.Backers...)
	p.Comments = append([]model.Comment{}, p.Comments...)
	return p
}
