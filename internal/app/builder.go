package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	"crowdfund-go/internal/config"
	"crowdfund-go/internal/db"
	"crowdfund-go/internal/httpapi"
	"crowdfund-go/internal/repositories"
	"crowdfund-go/internal/repositories/memory"
	"crowdfund-go/internal/repositories/mongostore"
	"crowdfund-go/internal/repositories/postgres"
	"crowdfund-go/internal/scheduler"
	"crowdfund-go/internal/services/accounts"
	"crowdfund-go/internal/services/projects"
	"crowdfund-go/internal/services/stats"
	"crowdfund-go/internal/session"
	"crowdfund-go/internal/telegram"
)

type Builder struct {
	cfg          *config.Config
	log          *zap.Logger
	basePath     string
	ensureSchema bool

	pool        *pgxpool.Pool
	mongoClient *mongo.Client
	projectRepo repositories.ProjectRepository
	userRepo    repositories.UserRepository
	notifier    projects.Notifier

	scheduler *scheduler.Scheduler
	server    *http.Server
}

type BuilderOption func(*Builder)

func NewBuilder(cfg *config.Config, log *zap.Logger, options ...BuilderOption) *Builder {
	builder := &Builder{
		cfg:          cfg,
		log:          log,
		ensureSchema: true,
	}
	for _, option := range options {
		option(builder)
	}
	return builder
}

func WithBasePath(basePath string) BuilderOption {
	return func(b *Builder) {
		b.basePath = basePath
	}
}

func WithEnsureSchema(enabled bool) BuilderOption {
	return func(b *Builder) {
		b.ensureSchema = enabled
	}
}

func WithDBPool(pool *pgxpool.Pool) BuilderOption {
	return func(b *Builder) {
		b.pool = pool
	}
}

func WithMongoClient(client *mongo.Client) BuilderOption {
	return func(b *Builder) {
		b.mongoClient = client
	}
}

// WithRepositories skips store selection entirely.
func WithRepositories(projectRepo repositories.ProjectRepository, userRepo repositories.UserRepository) BuilderOption {
	return func(b *Builder) {
		b.projectRepo = projectRepo
		b.userRepo = userRepo
	}
}

func WithNotifier(notifier projects.Notifier) BuilderOption {
	return func(b *Builder) {
		b.notifier = notifier
	}
}

func WithScheduler(scheduler *scheduler.Scheduler) BuilderOption {
	return func(b *Builder) {
		b.scheduler = scheduler
	}
}

func WithHTTPServer(server *http.Server) BuilderOption {
	return func(b *Builder) {
		b.server = server
	}
}

func (b *Builder) Build(ctx context.Context) (*App, error) {
	if b.cfg == nil {
		return nil, errors.New("config is required")
	}
	if b.log == nil {
		b.log = zap.NewNop()
	}

	app := &App{Config: b.cfg, Log: b.log}
	if b.projectRepo == nil || b.userRepo == nil {
		if err := b.buildStore(ctx, app); err != nil {
			app.closeStores(ctx)
			return nil, err
		}
	}
	app.Projects = b.projectRepo
	app.Users = b.userRepo

	if b.notifier == nil {
		if b.cfg.TelegramEnabled() {
			sender := telegram.NewSender(b.cfg.TelegramToken, b.cfg.TelegramChat, b.cfg.TelegramThread(), b.log.Named("telegram"),
				telegram.WithCalendar(b.cfg.DisplayCalendar))
			app.telegram = sender
			b.notifier = sender
		} else {
			b.log.Info("telegram alerts disabled")
		}
	}

	projectOptions := []projects.Option{}
	if b.notifier != nil {
		projectOptions = append(projectOptions, projects.WithNotifier(b.notifier))
	}
	if b.cfg.OwnerOnlyLifecycle {
		projectOptions = append(projectOptions, projects.WithLifecycleGuard(projects.OwnerOnly{}))
	}
	app.ProjectService = projects.NewService(app.Projects, app.Users, b.log.Named("projects"), projectOptions...)
	app.AccountService = accounts.NewService(app.Users, b.log.Named("accounts"))
	app.StatsService = stats.NewService(app.Projects, b.log.Named("stats"))

	if b.scheduler == nil {
		b.scheduler = scheduler.New(b.cfg.StatsCron, app.StatsService, b.log.Named("scheduler"))
	}
	app.Scheduler = b.scheduler

	if b.server == nil {
		sessions := session.NewManager(b.cfg.SessionSecret, b.cfg.SessionCookie, b.cfg.SessionTTL, b.cfg.CookieSecure)
		handler, err := httpapi.NewHandler(app.ProjectService, app.AccountService, app.StatsService, sessions, b.log.Named("http"),
			httpapi.WithCalendar(b.cfg.DisplayCalendar),
			httpapi.WithHiddenErrors(b.cfg.HideErrorDetails),
			httpapi.WithCORSOrigins(b.cfg.CORSOrigins),
			httpapi.WithProfiling(b.cfg.DebugPprof),
		)
		if err != nil {
			app.closeStores(ctx)
			return nil, err
		}
		b.server = &http.Server{
			Addr:              ":" + b.cfg.HTTPPort,
			Handler:           handler.Router(),
			ReadHeaderTimeout: 5 * time.Second,
		}
	}
	app.Server = b.server

	return app, nil
}

func (b *Builder) buildStore(ctx context.Context, app *App) error {
	switch b.cfg.StoreDriver {
	case config.StorePostgres:
		if b.pool == nil {
			pool, err := db.NewPool(ctx, b.cfg.PostgresDSN())
			if err != nil {
				return err
			}
			b.pool = pool
			app.ownsPool = true
		}
		app.Pool = b.pool

		if b.ensureSchema {
			basePath, err := b.resolveBasePath()
			if err != nil {
				return err
			}
			if err := db.EnsureSchema(ctx, b.pool, basePath); err != nil {
				return err
			}
		}
		b.projectRepo = postgres.NewProjectRepository(b.pool)
		b.userRepo = postgres.NewUserRepository(b.pool)

	case config.StoreMongo:
		if b.mongoClient == nil {
			client, err := db.NewMongoClient(ctx, b.cfg.MongoURI)
			if err != nil {
				return err
			}
			b.mongoClient = client
			app.ownsMongo = true
		}
		app.Mongo = b.mongoClient

		database := b.mongoClient.Database(b.cfg.MongoDatabase)
		if b.ensureSchema {
			if err := db.EnsureMongoIndexes(ctx, database); err != nil {
				return err
			}
		}
		b.projectRepo = mongostore.NewProjectRepository(database)
		b.userRepo = mongostore.NewUserRepository(database)

	case config.StoreMemory:
		store := memory.NewStore()
		b.projectRepo = store.Projects()
		b.userRepo = store.Users()

	default:
		return fmt.Errorf("unknown store driver %q", b.cfg.StoreDriver)
	}

	b.log.Info("store ready", zap.String("driver", b.cfg.StoreDriver))
	return nil
}

func (b *Builder) resolveBasePath() (string, error) {
	basePath := b.basePath
	if basePath == "" {
		wd, err := os.Getwd()
		if err != nil {
			return "", err
		}
		basePath = wd
	}
	return filepath.Abs(basePath)
}
