// Package server wires the development story API: Postgres repositories,
// S3 photo storage, the services on top of them and the HTTP front end.
package server

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/dmitrijs2005/storykeeper/internal/logging"
	"github.com/dmitrijs2005/storykeeper/internal/server/api"
	"github.com/dmitrijs2005/storykeeper/internal/server/config"
	"github.com/dmitrijs2005/storykeeper/internal/server/photos"
	"github.com/dmitrijs2005/storykeeper/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/storykeeper/internal/server/services"
)

const pingTimeout = 5 * time.Second

// seams for tests
var (
	openDB               = sql.Open
	newRepositoryManager = repomanager.NewPostgresRepositoryManager
	newPhotoStorage      = func(ctx context.Context, cfg *config.Config) (photos.Storage, error) {
		return photos.NewS3Storage(ctx, cfg)
	}
)

type server interface {
	Run(ctx context.Context) error
}

type App struct {
	config *config.Config
	logger logging.Logger
	db     *sql.DB
	server server
}

func NewApp(ctx context.Context, cfg *config.Config, logger logging.Logger) (*App, error) {
	db, err := openDB("pgx", cfg.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("db ping error: %w", err)
	}

	rm := newRepositoryManager()
	if err := rm.RunMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrations error: %w", err)
	}

	store, err := newPhotoStorage(ctx, cfg)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("photo storage init error: %w", err)
	}

	us := services.NewUserService(db, rm, cfg)
	ss := services.NewStoryService(db, rm, store)
	ps := services.NewPushService(db, rm)

	srv := api.NewServer(cfg.EndpointAddr, logger, us, ss, ps, cfg.SecretKey, cfg.AllowedOrigins)

	return &App{config: cfg, logger: logger, db: db, server: srv}, nil
}

// Run serves until ctx is cancelled and closes the database afterwards.
func (app *App) Run(ctx context.Context) error {
	app.logger.Info(ctx, "Starting app...")

	err := app.server.Run(ctx)
	if cerr := app.db.Close(); cerr != nil {
		err = errors.Join(err, fmt.Errorf("db close error: %w", cerr))
	}

	app.logger.Info(ctx, "App stopped")
	return err
}
