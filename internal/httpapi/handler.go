package httpapi

import (
	"go.uber.org/zap"

	"crowdfund-go/internal/format"
	"crowdfund-go/internal/services/accounts"
	"crowdfund-go/internal/services/projects"
	"crowdfund-go/internal/services/stats"
	"crowdfund-go/internal/session"
)

type Handler struct {
	projects *projects.Service
	accounts *accounts.Service
	stats    *stats.Service
	sessions *session.Manager
	log      *zap.Logger
	views    *views

	calendar    string
	hideErrors  bool
	corsOrigins []string
	profiling   bool
}

type Option func(*Handler)

func WithCalendar(calendar string) Option {
	return func(h *Handler) {
		h.calendar = calendar
	}
}

// WithHiddenErrors replaces infrastructure error text in 500 responses with
// a generic message.
func WithHiddenErrors(hide bool) Option {
	return func(h *Handler) {
		h.hideErrors = hide
	}
}

func WithCORSOrigins(origins []string) Option {
	return func(h *Handler) {
		h.corsOrigins = origins
	}
}

// WithProfiling mounts net/http/pprof under /debug/pprof.
func WithProfiling(enabled bool) Option {
	return func(h *Handler) {
		h.profiling = enabled
	}
}

func NewHandler(projectService *projects.Service, accountService *accounts.Service, statsService *stats.Service, sessions *session.Manager, log *zap.Logger, options ...Option) (*Handler, error) {
	h := &Handler{
		projects: projectService,
		accounts: accountService,
		stats:    statsService,
		sessions: sessions,
		log:      log,
		calendar: format.Gregorian,
	}
	for _, option := range options {
		option(h)
	}

	v, err := newViews(format.Formatter{Calendar: h.calendar})
	if err != nil {
		return nil, err
	}
	h.views = v
	return h, nil
}
