// Package server wires storage, services and transports together and runs
// them until the process is told to stop.
package server

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/dmitrijs2005/bacheca/internal/logging"
	"github.com/dmitrijs2005/bacheca/internal/server/config"
	"github.com/dmitrijs2005/bacheca/internal/server/httpapi"
	"github.com/dmitrijs2005/bacheca/internal/server/metrics"
	"github.com/dmitrijs2005/bacheca/internal/server/password"
	"github.com/dmitrijs2005/bacheca/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/bacheca/internal/server/services"
	"github.com/dmitrijs2005/bacheca/internal/server/sweeper"

	gs "github.com/dmitrijs2005/bacheca/internal/server/grpc"
)

// App owns the stores and every long-running component of the server.
type App struct {
	config  *config.Config
	logger  logging.Logger
	repos   repomanager.RepositoryManager
	http    *httpapi.Server
	grpc    *gs.GRPCServer
	sweeper *sweeper.Sweeper
}

// NewApp opens storage, migrates it and seeds the admin account. Nothing
// listens yet when it returns.
func NewApp(ctx context.Context, c *config.Config, logger logging.Logger) (*App, error) {
	repos, err := repomanager.Open(ctx, c)
	if err != nil {
		return nil, fmt.Errorf("storage init error: %w", err)
	}

	if err := repos.RunMigrations(ctx); err != nil {
		_ = repos.Close()
		return nil, fmt.Errorf("migrations error: %w", err)
	}

	mt := metrics.New()
	hasher := password.NewBcrypt(c.BcryptCost)

	as := services.NewAuthService(repos, hasher, logger, mt)
	us := services.NewUserService(repos, as, hasher, logger)
	ps := services.NewPostService(repos, logger)

	if err := services.Bootstrap(ctx, repos.Users(), hasher, logger); err != nil {
		_ = repos.Close()
		return nil, fmt.Errorf("bootstrap error: %w", err)
	}

	app := &App{
		config:  c,
		logger:  logger,
		repos:   repos,
		http:    httpapi.NewServer(c.HTTPAddr, logger, mt, as, us, ps),
		sweeper: sweeper.New(repos.Sessions(), c.SweepInterval, logger, mt),
	}
	if c.EndpointAddrGRPC != "" {
		app.grpc = gs.NewGRPCServer(c.EndpointAddrGRPC, logger, as, ps)
	}
	return app, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

// runComponent runs fn and stops the whole app when it fails.
func (app *App) runComponent(ctx context.Context, cancelFunc context.CancelFunc, name string, fn func(context.Context) error) {
	if err := fn(ctx); err != nil {
		app.logger.Error(ctx, "component failed", "component", name, "error", err)
		cancelFunc()
	}
}

// Run blocks until ctx is cancelled, a signal arrives or a listener fails,
// then waits for every component to stop and closes storage.
func (app *App) Run(ctx context.Context) error {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(2)
	go func() {
		defer wg.Done()
		app.runComponent(ctx, cancelFunc, "http", app.http.Run)
	}()
	go func() {
		defer wg.Done()
		app.runComponent(ctx, cancelFunc, "sweeper", app.sweeper.Run)
	}()

	if app.grpc != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			app.runComponent(ctx, cancelFunc, "grpc", app.grpc.Run)
		}()
	}

	wg.Wait()

	app.logger.Info(context.Background(), "Closing storage...")
	return app.repos.Close()
}
