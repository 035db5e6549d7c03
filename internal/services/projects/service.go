package projects

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"crowdfund-go/internal/model"
	"crowdfund-go/internal/repositories"
)

var (
	ErrUnauthenticated = errors.New("login required")
	ErrForbidden       = errors.New("not allowed for this user")
)

const msgNotAcceptingDonations = "This project is not accepting donations"

// Listing is a project with its creator reference resolved for display.
type Listing struct {
	model.Project
	CreatorName string
}

type CommentView struct {
	PosterName string
	Text       string
	PostedAt   time.Time
}

type Detail struct {
	Project     model.Project
	CreatorName string
	Comments    []CommentView
}

type Service struct {
	projects repositories.ProjectRepository
	users    repositories.UserRepository
	notifier Notifier
	guard    LifecycleGuard
	log      *zap.Logger
	now      func() time.Time
}

type Option func(*Service)

func WithNotifier(notifier Notifier) Option {
	return func(s *Service) {
		s.notifier = notifier
	}
}

func WithLifecycleGuard(guard LifecycleGuard) Option {
	return func(s *Service) {
		s.guard = guard
	}
}

func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

func NewService(projects repositories.ProjectRepository, users repositories.UserRepository, log *zap.Logger, options ...Option) *Service {
	s := &Service{
		projects: projects,
		users:    users,
		notifier: nopNotifier{},
		guard:    AllowAll{},
		log:      log,
		now:      time.Now,
	}
	for _, option := range options {
		option(s)
	}
	return s
}

func (s *Service) List(ctx context.Context) ([]Listing, error) {
	projects, err := s.projects.List(ctx)
	if err != nil {
		return nil, err
	}
	return s.resolveCreators(ctx, projects)
}

func (s *Service) Get(ctx context.Context, id string) (model.Project, error) {
	return s.projects.Get(ctx, id)
}

// Detail loads the project, its creator and then every comment poster in
// order. The first failed lookup aborts the whole view.
func (s *Service) Detail(ctx context.Context, id string) (Detail, error) {
	project, err := s.projects.Get(ctx, id)
	if err != nil {
		return Detail{}, fmt.Errorf("load project %s: %w", id, err)
	}
	creator, err := s.users.Get(ctx, project.CreatorID)
	if err != nil {
		return Detail{}, fmt.Errorf("load creator %s: %w", project.CreatorID, err)
	}

	comments := make([]CommentView, 0, len(project.Comments))
	for _, c := range project.Comments {
		poster, err := s.users.Get(ctx, c.PosterID)
		if err != nil {
			return Detail{}, fmt.Errorf("load comment poster %s: %w", c.PosterID, err)
		}
		comments = append(comments, CommentView{PosterName: poster.DisplayName(), Text: c.Text, PostedAt: c.PostedAt})
	}

	return Detail{Project: project, CreatorName: creator.DisplayName(), Comments: comments}, nil
}

func (s *Service) Create(ctx context.Context, actorID string, sub FormSubmission) (model.Project, error) {
	if actorID == "" {
		return model.Project{}, ErrUnauthenticated
	}
	if errs := ValidateCreate(sub); len(errs) > 0 {
		return model.Project{}, ValidationErrors(errs)
	}

	category := strings.TrimSpace(sub.Value(FieldCategory))
	if category == "" {
		category = DefaultCategory
	}
	goal, _ := parseNumber(sub.Value(FieldGoal))

	project, err := s.projects.Create(ctx, model.ProjectCreate{
		Title:       strings.TrimSpace(sub.Value(FieldTitle)),
		Category:    model.CanonicalCategory(category),
		CreatorID:   actorID,
		CreatedAt:   s.now(),
		PledgeGoal:  goal,
		Description: sub.Value(FieldDescription),
	})
	if err != nil {
		return model.Project{}, fmt.Errorf("create project: %w", err)
	}

	s.log.Info("project created", zap.String("project", project.ID), zap.String("creator", actorID), zap.String("category", project.Category))
	s.alert(ctx, model.AlertProjectCreated, project, actorID, 0)
	return project, nil
}

// Update edits the core fields of a project. Only its creator may do so and
// the active flag is left untouched.
func (s *Service) Update(ctx context.Context, actorID string, sub FormSubmission) (model.Project, error) {
	if actorID == "" {
		return model.Project{}, ErrUnauthenticated
	}
	id := sub.Value(FieldID)
	current, err := s.projects.Get(ctx, id)
	if err != nil {
		return model.Project{}, fmt.Errorf("load project %s: %w", id, err)
	}
	if current.CreatorID != actorID {
		return model.Project{}, ErrForbidden
	}
	if errs := ValidateEdit(sub); len(errs) > 0 {
		return model.Project{}, ValidationErrors(errs)
	}

	goal, _ := parseNumber(sub.Value(FieldGoal))
	project, err := s.projects.Update(ctx, id, model.ProjectUpdate{
		Title:       strings.TrimSpace(sub.Value(FieldTitle)),
		Category:    model.CanonicalCategory(sub.Value(FieldCategory)),
		PledgeGoal:  goal,
		Description: sub.Value(FieldDescription),
	})
	if err != nil {
		return model.Project{}, fmt.Errorf("update project %s: %w", id, err)
	}
	s.log.Info("project updated", zap.String("project", id))
	return project, nil
}

// Donate validates the donation form and atomically adds it to the
// project's collected total. Creators cannot back their own project.
func (s *Service) Donate(ctx context.Context, actorID string, sub FormSubmission) (model.Project, error) {
	if actorID == "" {
		return model.Project{}, ErrUnauthenticated
	}
	if errs := ValidateDonation(sub); len(errs) > 0 {
		return model.Project{}, ValidationErrors(errs)
	}

	id := sub.Value(FieldProjectID)
	current, err := s.projects.Get(ctx, id)
	if err != nil {
		return model.Project{}, fmt.Errorf("load project %s: %w", id, err)
	}
	if current.CreatorID == actorID {
		return model.Project{}, ErrForbidden
	}
	if !current.Active {
		return model.Project{}, ValidationErrors{msgNotAcceptingDonations}
	}

	amount, _ := parseNumber(sub.Value(FieldDonation))
	project, err := s.projects.Donate(ctx, id, amount, actorID)
	if errors.Is(err, repositories.ErrInactive) {
		return model.Project{}, ValidationErrors{msgNotAcceptingDonations}
	}
	if err != nil {
		return model.Project{}, fmt.Errorf("donate to project %s: %w", id, err)
	}

	s.log.Info("donation received", zap.String("project", id), zap.String("backer", actorID), zap.Float64("amount", amount))
	s.alert(ctx, model.AlertDonation, project, actorID, amount)
	return project, nil
}

// Comment appends a comment and returns it with the poster's name.
func (s *Service) Comment(ctx context.Context, actorID string, sub FormSubmission) (CommentView, error) {
	if actorID == "" {
		return CommentView{}, ErrUnauthenticated
	}
	if errs := ValidateComment(sub); len(errs) > 0 {
		return CommentView{}, ValidationErrors(errs)
	}

	id := sub.Value(FieldProjectID)
	comment, err := s.projects.AddComment(ctx, id, model.Comment{
		PosterID: actorID,
		Text:     sub.Value(FieldComment),
		PostedAt: s.now(),
	})
	if err != nil {
		return CommentView{}, fmt.Errorf("comment on project %s: %w", id, err)
	}

	poster, err := s.users.Get(ctx, comment.PosterID)
	if err != nil {
		return CommentView{}, fmt.Errorf("load comment poster %s: %w", comment.PosterID, err)
	}
	return CommentView{PosterName: poster.DisplayName(), Text: comment.Text, PostedAt: comment.PostedAt}, nil
}

// Search runs validated criteria against the store. Callers validate with
// ValidateSearch first; invalid criteria never reach this point.
func (s *Service) Search(ctx context.Context, criteria SearchCriteria) ([]Listing, error) {
	var byCategory []model.Project
	var err error
	if criteria.AllCategories() {
		byCategory, err = s.projects.List(ctx)
	} else {
		byCategory, err = s.projects.ListByCategory(ctx, model.CanonicalCategory(criteria.Category))
	}
	if err != nil {
		return nil, fmt.Errorf("load projects for search: %w", err)
	}

	results := Intersect(byCategory, criteria)
	if len(results) == 0 {
		return []Listing{}, nil
	}
	return s.resolveCreators(ctx, results)
}

func (s *Service) alert(ctx context.Context, kind model.AlertKind, project model.Project, actorID string, amount float64) {
	actor, err := s.users.Get(ctx, actorID)
	if err != nil {
		s.log.Warn("skipping alert, actor lookup failed", zap.String("actor", actorID), zap.Error(err))
		return
	}
	s.notifier.SendAlert(model.Alert{Kind: kind, Project: project, ActorName: actor.DisplayName(), Amount: amount})
}
