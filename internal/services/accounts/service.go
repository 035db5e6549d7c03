// Package accounts handles signup and password login.
package accounts

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"crowdfund-go/internal/model"
	"crowdfund-go/internal/repositories"
	"crowdfund-go/internal/services/projects"
)

var ErrInvalidCredentials = errors.New("invalid email or password")

const (
	minPasswordLength = 8
	// bcrypt rejects longer input.
	maxPasswordBytes = 72
)

type SignUp struct {
	FirstName string
	LastName  string
	Email     string
	Password  string
}

type Service struct {
	users repositories.UserRepository
	log   *zap.Logger
	cost  int
}

func NewService(users repositories.UserRepository, log *zap.Logger) *Service {
	return &Service{users: users, log: log, cost: bcrypt.DefaultCost}
}

// WithCost overrides the bcrypt cost, mainly to keep tests fast.
func (s *Service) WithCost(cost int) *Service {
	s.cost = cost
	return s
}

func ValidateSignUp(in SignUp) []string {
	var errs []string
	if strings.TrimSpace(in.FirstName) == "" {
		errs = append(errs, "No first name provided")
	}
	if strings.TrimSpace(in.LastName) == "" {
		errs = append(errs, "No last name provided")
	}
	email := strings.TrimSpace(in.Email)
	if email == "" {
		errs = append(errs, "No email provided")
	} else if _, err := mail.ParseAddress(email); err != nil {
		errs = append(errs, "Email address is not valid")
	}
	if len(in.Password) < minPasswordLength {
		errs = append(errs, fmt.Sprintf("Password needs at least %d characters", minPasswordLength))
	} else if len(in.Password) > maxPasswordBytes {
		errs = append(errs, fmt.Sprintf("Password can be at most %d bytes", maxPasswordBytes))
	}
	return errs
}

func (s *Service) SignUp(ctx context.Context, in SignUp) (model.User, error) {
	if errs := ValidateSignUp(in); len(errs) > 0 {
		return model.User{}, projects.ValidationErrors(errs)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.cost)
	if err != nil {
		return model.User{}, fmt.Errorf("hash password: %w", err)
	}

	user, err := s.users.Create(ctx, model.UserCreate{
		FirstName:    strings.TrimSpace(in.FirstName),
		LastName:     strings.TrimSpace(in.LastName),
		Email:        normalizeEmail(in.Email),
		PasswordHash: string(hash),
	})
	if errors.Is(err, repositories.ErrDuplicate) {
		return model.User{}, projects.ValidationErrors{"Email already in use"}
	}
	if err != nil {
		return model.User{}, fmt.Errorf("create user: %w", err)
	}

	s.log.Info("user signed up", zap.String("user", user.ID))
	return user, nil
}

// Authenticate returns the user owning email when password matches its hash.
func (s *Service) Authenticate(ctx context.Context, email, password string) (model.User, error) {
	user, err := s.users.GetByEmail(ctx, normalizeEmail(email))
	if errors.Is(err, repositories.ErrNotFound) {
		return model.User{}, ErrInvalidCredentials
	}
	if err != nil {
		return model.User{}, fmt.Errorf("load user: %w", err)
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return model.User{}, ErrInvalidCredentials
	}
	return user, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
