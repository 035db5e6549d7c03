package app

import (
	"context"
	"errors"
	"net/http"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	"crowdfund-go/internal/config"
	"crowdfund-go/internal/repositories"
	"crowdfund-go/internal/scheduler"
	"crowdfund-go/internal/services/accounts"
	"crowdfund-go/internal/services/projects"
	"crowdfund-go/internal/services/stats"
	"crowdfund-go/internal/telegram"
)

type App struct {
	Config         *config.Config
	Log            *zap.Logger
	Pool           *pgxpool.Pool
	Mongo          *mongo.Client
	Projects       repositories.ProjectRepository
	Users          repositories.UserRepository
	ProjectService *projects.Service
	AccountService *accounts.Service
	StatsService   *stats.Service
	Scheduler      *scheduler.Scheduler
	Server         *http.Server

	telegram  *telegram.Sender
	ownsPool  bool
	ownsMongo bool
}

// Start begins the stats schedule and serves HTTP in the background. A
// listener failure is reported on the returned channel.
func (a *App) Start() (<-chan error, error) {
	if err := a.Scheduler.Start(); err != nil {
		return nil, err
	}

	errs := make(chan error, 1)
	go func() {
		a.Log.Info("HTTP server listening", zap.String("addr", a.Server.Addr))
		if err := a.Server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errs <- err
		}
		close(errs)
	}()

	return errs, nil
}

func (a *App) Shutdown(ctx context.Context) error {
	a.Scheduler.Stop()
	if err := a.Server.Shutdown(ctx); err != nil {
		return err
	}
	if a.telegram != nil {
		a.telegram.Close()
	}
	a.closeStores(ctx)
	return nil
}

func (a *App) closeStores(ctx context.Context) {
	if a.ownsPool && a.Pool != nil {
		a.Pool.Close()
	}
	if a.ownsMongo && a.Mongo != nil {
		if err := a.Mongo.Disconnect(ctx); err != nil {
			a.Log.Warn("mongo disconnect failed", zap.Error(err))
		}
	}
}
