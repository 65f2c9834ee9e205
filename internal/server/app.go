// Package server wires the premium server together: configuration, storage
// backends, the changelog publisher and the HTTP API. It also owns graceful
// shutdown.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/dmitrijs2005/premiumkeeper/internal/logging"
	"github.com/dmitrijs2005/premiumkeeper/internal/server/catalog"
	"github.com/dmitrijs2005/premiumkeeper/internal/server/changelog"
	"github.com/dmitrijs2005/premiumkeeper/internal/server/config"
	"github.com/dmitrijs2005/premiumkeeper/internal/server/export"
	"github.com/dmitrijs2005/premiumkeeper/internal/server/httpapi"
	"github.com/dmitrijs2005/premiumkeeper/internal/server/ledger"
	"github.com/dmitrijs2005/premiumkeeper/internal/server/metrics"
	"github.com/dmitrijs2005/premiumkeeper/internal/server/submissions"
)

type App struct {
	config    *config.Config
	logger    logging.Logger
	ledger    ledger.Repository
	publisher changelog.Publisher
	api       *httpapi.Server
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	logger := logging.NewJSONLogger(os.Stdout, slog.LevelInfo)
	return newApp(ctx, c, logger)
}

func newApp(ctx context.Context, c *config.Config, logger logging.Logger) (*App, error) {
	l, err := ledger.Open(ctx, c)
	if err != nil {
		return nil, fmt.Errorf("ledger init error: %w", err)
	}

	var publisher changelog.Publisher = changelog.Nop{}
	if c.KafkaBrokers != "" {
		publisher = changelog.NewKafkaPublisher(c.KafkaBrokers, c.KafkaTopic)
	}

	var archiver httpapi.Archiver
	if c.S3Bucket != "" {
		a, err := export.NewArchiver(ctx, c)
		if err != nil {
			_ = l.Close()
			return nil, fmt.Errorf("s3 init error: %w", err)
		}
		archiver = a
	}

	m := metrics.NewRegistry()
	cat := catalog.NewFileSource(c.CatalogPath, logger.With("module", "catalog"))
	svc := submissions.NewService(l, cat, publisher, m, logger.With("module", "submissions"))

	api := httpapi.NewServer(httpapi.Options{
		Catalog:       cat,
		Submissions:   svc,
		Archiver:      archiver,
		Metrics:       m,
		Logger:        logger.With("module", "http_server"),
		SecretKey:     []byte(c.SecretKey),
		AllowedOrigin: c.AllowedOrigin,
	})

	logger.Info(ctx, "app configured",
		"ledger", c.LedgerBackend, "kafka", c.KafkaBrokers != "", "archive", archiver != nil)

	return &App{config: c, logger: logger, ledger: l, publisher: publisher, api: api}, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

// Run blocks until the HTTP server stops, then releases the ledger and the
// publisher.
func (app *App) Run(ctx context.Context) error {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")
	app.initSignalHandler(cancelFunc)

	runErr := app.api.Run(ctx, app.config.EndpointAddr, app.config.ShutdownTimeout)
	if runErr != nil {
		app.logger.Error(ctx, "http server stopped", "error", runErr)
	}

	return errors.Join(runErr, app.close())
}

func (app *App) close() error {
	var errs []error
	if err := app.publisher.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close publisher: %w", err))
	}
	if err := app.ledger.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close ledger: %w", err))
	}
	return errors.Join(errs...)
}
