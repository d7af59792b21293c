// Package server initializes and runs the application server: it opens the
// database, applies migrations, wires the services and the notification hub,
// and serves the HTTP API with graceful shutdown.
package server

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fcastro-dev/taskroom/internal/logging"
	"github.com/fcastro-dev/taskroom/internal/server/config"
	"github.com/fcastro-dev/taskroom/internal/server/httpapi"
	"github.com/fcastro-dev/taskroom/internal/server/mail"
	"github.com/fcastro-dev/taskroom/internal/server/repositories/repomanager"
	"github.com/fcastro-dev/taskroom/internal/server/services"
	"github.com/fcastro-dev/taskroom/internal/server/ws"
)

const shutdownTimeout = 10 * time.Second

type App struct {
	config *config.Config
	logger logging.Logger
	db     *sql.DB
	server *http.Server
}

func NewApp(ctx context.Context, cfg *config.Config) (*App, error) {
	logger := logging.NewSlogLogger(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	db, err := sql.Open("pgx", cfg.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db open error: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("db ping error: %w", err)
	}

	rm := repomanager.NewPostgresRepositoryManager()
	if err := rm.RunMigrations(ctx, db); err != nil {
		return nil, fmt.Errorf("migration error: %w", err)
	}

	ledger := services.NewAuditService(db, rm, logger)
	mailer := mail.NewBrevoMailer(cfg.MailBaseURL, cfg.MailAPIKey, cfg.MailSenderName, cfg.MailSenderEmail)
	hub := ws.NewHub(logger)

	userService := services.NewUserService(db, rm, ledger, mailer, logger,
		[]byte(cfg.SecretKey), cfg.TokenValidity, cfg.BcryptCost)
	groupService := services.NewGroupService(db, rm, ledger, logger, cfg.BcryptCost)
	taskService := services.NewTaskService(db, rm, ledger, hub, logger)
	statusService := services.NewStatusService(db, rm, logger)

	api := httpapi.NewServer(userService, groupService, taskService, statusService, hub, logger, cfg)

	return &App{
		config: cfg,
		logger: logger,
		db:     db,
		server: &http.Server{Addr: cfg.Addr, Handler: api.Router()},
	}, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) Run(ctx context.Context) {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "starting server", "addr", app.config.Addr)

	app.initSignalHandler(cancelFunc)

	go func() {
		if err := app.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			app.logger.Error(ctx, "server error", "error", err.Error())
			cancelFunc()
		}
	}()

	<-ctx.Done()

	app.logger.Info(context.Background(), "shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := app.server.Shutdown(shutdownCtx); err != nil {
		app.logger.Error(shutdownCtx, "shutdown error", "error", err.Error())
	}

	if err := app.db.Close(); err != nil {
		app.logger.Error(shutdownCtx, "db close error", "error", err.Error())
	}
}
