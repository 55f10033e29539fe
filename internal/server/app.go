// Package server wires the vidtube components together and runs the HTTP and
// gRPC endpoints until the process is asked to stop.
package server

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/dmitrijs2005/vidtube/internal/filex"
	"github.com/dmitrijs2005/vidtube/internal/logging"
	"github.com/dmitrijs2005/vidtube/internal/server/assets"
	"github.com/dmitrijs2005/vidtube/internal/server/auth"
	"github.com/dmitrijs2005/vidtube/internal/server/config"
	"github.com/dmitrijs2005/vidtube/internal/server/credentials"
	"github.com/dmitrijs2005/vidtube/internal/server/httpapi"
	"github.com/dmitrijs2005/vidtube/internal/server/repositories/memory"
	"github.com/dmitrijs2005/vidtube/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/vidtube/internal/server/services"
	"github.com/dmitrijs2005/vidtube/internal/tracing"
	"golang.org/x/sync/errgroup"

	gs "github.com/dmitrijs2005/vidtube/internal/server/grpc"
)

const serviceName = "vidtube"

// healthInterval is how often storage is pinged to update the gRPC health
// status.
const healthInterval = 10 * time.Second

type App struct {
	config          *config.Config
	logger          logging.Logger
	repomanager     repomanager.RepositoryManager
	httpServer      *httpapi.Server
	grpcServer      *gs.GRPCServer
	shutdownTracing func(context.Context) error
}

// newAssetStore is a seam for tests.
var newAssetStore = func(ctx context.Context, cfg assets.S3Config) (assets.Store, error) {
	return assets.NewS3Store(ctx, cfg)
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	logger, err := logging.New(os.Stdout, c.LogFormat, c.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("logger init error: %w", err)
	}

	shutdownTracing, err := tracing.Setup(ctx, serviceName, c.OTelEndpoint)
	if err != nil {
		return nil, fmt.Errorf("tracing init error: %w", err)
	}

	rm, err := openStorage(ctx, c, logger)
	if err != nil {
		_ = shutdownTracing(ctx)
		return nil, err
	}

	app, err := build(ctx, c, logger, rm)
	if err != nil {
		_ = rm.Close()
		_ = shutdownTracing(ctx)
		return nil, err
	}
	app.shutdownTracing = shutdownTracing
	return app, nil
}

func openStorage(ctx context.Context, c *config.Config, logger logging.Logger) (repomanager.RepositoryManager, error) {
	if c.StorageBackend == config.StorageMemory {
		logger.Warn(ctx, "using in-memory storage; data is lost on exit")
		return memory.NewRepositoryManager(), nil
	}

	db, err := repomanager.OpenPostgres(ctx, c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	rm, err := repomanager.NewPostgresRepositoryManager(db)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("db init error: %w", err)
	}

	if err := rm.RunMigrations(ctx); err != nil {
		_ = rm.Close()
		return nil, fmt.Errorf("migrations error: %w", err)
	}
	return rm, nil
}

func build(ctx context.Context, c *config.Config, logger logging.Logger, rm repomanager.RepositoryManager) (*App, error) {
	issuer, err := auth.NewIssuer(auth.IssuerConfig{
		AccessSecret:  c.AccessTokenSecret,
		RefreshSecret: c.RefreshTokenSecret,
		AccessTTL:     c.AccessTokenTTL,
		RefreshTTL:    c.RefreshTokenTTL,
	})
	if err != nil {
		return nil, fmt.Errorf("token issuer init error: %w", err)
	}

	hasher, err := credentials.NewHasher(c.BcryptCost, c.HashWorkers)
	if err != nil {
		return nil, fmt.Errorf("hasher init error: %w", err)
	}

	uploadDir, err := filex.EnsureDir(c.UploadDir)
	if err != nil {
		return nil, fmt.Errorf("upload dir init error: %w", err)
	}

	store, err := newAssetStore(ctx, assets.S3Config{
		Endpoint:      c.S3Endpoint,
		Region:        c.S3Region,
		AccessKey:     c.S3AccessKey,
		SecretKey:     c.S3SecretKey,
		Bucket:        c.S3Bucket,
		PublicBaseURL: c.S3PublicBaseURL,
	})
	if err != nil {
		return nil, fmt.Errorf("asset store init error: %w", err)
	}

	sessions := services.NewSessionRegistry(rm, issuer, logger)

	router := httpapi.NewRouter(httpapi.Services{
		Users:         services.NewUserService(rm, credentials.NewStore(hasher), sessions, store, logger),
		Channels:      services.NewChannelService(rm, logger),
		Authenticator: services.NewAuthenticator(rm, issuer, logger),
	}, httpapi.RouterConfig{
		UploadDir:      uploadDir,
		CORSOrigin:     c.CORSOrigin,
		MaxUploadBytes: c.MaxUploadBytes,
	}, logger)

	return &App{
		config:      c,
		logger:      logger,
		repomanager: rm,
		httpServer:  httpapi.NewServer(c.HTTPAddr, router, logger),
		grpcServer:  gs.NewGRPCServer(c.GRPCAddr, logger),
	}, nil
}

// Run serves until ctx is cancelled, SIGINT/SIGTERM arrives or a server
// fails, then releases storage and flushes traces.
func (app *App) Run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)
	defer stop()

	app.logger.Info(ctx, "Starting app...")

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return app.httpServer.Run(gctx) })
	g.Go(func() error { return app.grpcServer.Run(gctx) })
	g.Go(func() error {
		watchHealth(gctx, app.repomanager, app.grpcServer.SetServing, healthInterval)
		return nil
	})

	err := g.Wait()
	if err != nil {
		app.logger.Error(ctx, "server stopped with error", "error", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
	defer cancel()

	if cerr := app.repomanager.Close(); cerr != nil {
		app.logger.Error(shutdownCtx, "closing storage", "error", cerr)
	}
	if app.shutdownTracing != nil {
		if terr := app.shutdownTracing(shutdownCtx); terr != nil {
			app.logger.Error(shutdownCtx, "flushing traces", "error", terr)
		}
	}

	app.logger.Info(shutdownCtx, "App stopped")
	return err
}

type pinger interface {
	Ping(ctx context.Context) error
}

// watchHealth pings storage every interval and reports the outcome through
// setServing until ctx is done.
func watchHealth(ctx context.Context, p pinger, setServing func(bool), interval time.Duration) {
	check := func() {
		pingCtx, cancel := context.WithTimeout(ctx, interval)
		defer cancel()
		setServing(p.Ping(pingCtx) == nil)
	}

	check()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			check()
		}
	}
}
