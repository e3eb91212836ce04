package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/okian/livebattle/internal/adapters/control"
	"github.com/okian/livebattle/internal/adapters/feed"
	"github.com/okian/livebattle/internal/adapters/http/api"
	"github.com/okian/livebattle/internal/adapters/http/swagger"
	"github.com/okian/livebattle/internal/adapters/mq/queue"
	"github.com/okian/livebattle/internal/adapters/mq/worker"
	app "github.com/okian/livebattle/internal/app"
	"github.com/okian/livebattle/internal/config"
	"github.com/okian/livebattle/internal/domain/backoff"
	"github.com/okian/livebattle/internal/domain/dedupe"
	"github.com/okian/livebattle/pkg/logger"
	"github.com/okian/livebattle/pkg/metrics"
)

// HTTP server timeout constants.
const (
	readTimeout       = 10 * time.Second
	writeTimeout      = 10 * time.Second
	idleTimeout       = 60 * time.Second
	readHeaderTimeout = 5 * time.Second
	shutdownTimeout   = 10 * time.Second
	syncGrace         = time.Second
)

func main() {
	// A missing .env is normal; the environment may be set another way.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		// Logger is not configured yet
		os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")
		os.Exit(1)
	}

	if err := logger.Init(logger.WithFormat(cfg.LogFormat), logger.WithFile(cfg.LogFile)); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	log := logger.Get()

	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Apply configured log level (fallback to info on invalid input)
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		log.Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	if err := run(ctx, cfg, log); err != nil {
		log.Error(ctx, "listener failed", logger.Error(err))
		stop()
		_ = logger.Sync()
		os.Exit(1) //nolint:gocritic // defers already run by hand
	}
}

// components is the wired object graph of one process.
type components struct {
	queue      *queue.InMemoryQueue
	dispatcher *worker.Dispatcher
	listener   *app.Listener
	server     *http.Server
}

// build wires every component from cfg without starting anything.
func build(cfg *config.Config, log logger.Logger) *components {
	metrics.Configure(
		metrics.WithNamespace(cfg.MetricsNamespace),
		metrics.WithSubsystem(cfg.MetricsSubsystem),
	)

	q := queue.NewInMemoryQueue(queue.WithCapacity(cfg.CommandQueueSize))

	client := control.New(cfg.APIBase,
		control.WithTimeout(cfg.APITimeout()),
		control.WithBattleMode(cfg.BattleMode),
		control.WithLogger(log.Named("control")),
	)
	dispatcher := worker.NewDispatcher(q, client, worker.WithLogger(log.Named("dispatcher")))

	listener := app.New(
		feed.NewWebSocketFeed(cfg.FeedURL),
		q,
		app.WithChannel(cfg.Channel),
		app.WithSlots(cfg.SlotOneName, cfg.SlotTwoName),
		app.WithCooldown(cfg.Cooldown()),
		app.WithSyncTimeout(cfg.APITimeout()+syncGrace),
		app.WithDeduper(dedupe.NewWindowDeduper(
			dedupe.WithWindow(cfg.DedupeWindow()),
			dedupe.WithMaxSize(cfg.DedupeMaxSize),
		)),
		app.WithBackoff(backoff.NewPolicy(
			backoff.WithBase(cfg.BackoffBase()),
			backoff.WithMax(cfg.BackoffMax()),
			backoff.WithBlockedCooldown(cfg.BlockedCooldown()),
		)),
		app.WithLogger(log.Named("listener")),
	)

	mux := http.NewServeMux()
	api.NewServer(listener).Register(mux)
	swagger.Register(mux)

	return &components{
		queue:      q,
		dispatcher: dispatcher,
		listener:   listener,
		server: &http.Server{
			Addr:              cfg.Addr,
			Handler:           mux,
			ReadTimeout:       readTimeout,
			WriteTimeout:      writeTimeout,
			IdleTimeout:       idleTimeout,
			ReadHeaderTimeout: readHeaderTimeout,
		},
	}
}

// run starts the HTTP surface, the dispatcher and the listener, and blocks
// until ctx is canceled.
func run(ctx context.Context, cfg *config.Config, log logger.Logger) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	c := build(cfg, log)

	serveErr := make(chan error, 1)
	go func() {
		log.Info(ctx, "starting HTTP server", logger.String("addr", cfg.Addr))
		if err := c.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- fmt.Errorf("%w: %w", api.ErrServe, err)
		}
	}()

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		c.dispatcher.Run(ctx)
	}()

	log.Info(ctx, "listening for battle events",
		logger.String("channel", cfg.Channel),
		logger.String("feed", cfg.FeedURL),
		logger.String("api", cfg.APIBase),
	)

	listenerDone := make(chan error, 1)
	go func() { listenerDone <- c.listener.Run(ctx) }()

	var err error
	select {
	case err = <-serveErr:
		cancel()
		<-listenerDone
	case err = <-listenerDone:
	}

	log.Info(context.Background(), "shutting down...")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer shutdownCancel()

	if serr := c.server.Shutdown(shutdownCtx); serr != nil {
		log.Error(shutdownCtx, "server shutdown failed", logger.Error(serr))
	}
	_ = c.queue.Close()
	if serr := c.dispatcher.Shutdown(shutdownCtx); serr != nil {
		log.Warn(shutdownCtx, "dispatcher shutdown failed", logger.Error(serr))
	}
	wg.Wait()

	log.Info(shutdownCtx, "listener stopped")
	return err
}
