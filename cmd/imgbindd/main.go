// Command imgbindd runs the image prefetch daemon: it accepts image URLs
// over HTTP, fetches and validates them through the download pipeline,
// keeps a fetch history, and streams lifecycle events to websocket
// subscribers.
package main

import (
	"context"
	"flag"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"gopkg.in/natefinch/lumberjack.v2"

	"imgbind/bind"
	"imgbind/fetch"
	"imgbind/internal/hub"
	"imgbind/internal/metrics"
	"imgbind/internal/recorder"
	"imgbind/internal/repo"
	"imgbind/internal/router"
	"imgbind/internal/service"
)

func main() {
	var (
		addr        string
		logFile     string
		timeoutSec  float64
		maxParallel int
		cachePolicy string
	)
	flag.StringVar(&addr, "addr", ":9090", "listen address")
	flag.StringVar(&logFile, "log-file", "", "log file path (rotated); stdout when empty")
	flag.Float64Var(&timeoutSec, "request-timeout", 10, "image request timeout in seconds")
	flag.IntVar(&maxParallel, "max-downloads", 4, "maximum simultaneous downloads per host")
	flag.StringVar(&cachePolicy, "cache-policy", string(fetch.UseProtocolCachePolicy), "request cache policy")
	flag.Parse()

	var out io.Writer = os.Stdout
	if logFile != "" {
		out = &lumberjack.Logger{
			Filename:   logFile,
			MaxSize:    50, // megabytes
			MaxBackups: 3,
			MaxAge:     28, // days
		}
	}
	logger := slog.New(slog.NewJSONHandler(out, nil))
	slog.SetDefault(logger)

	metrics.Register()

	var fetchRepo repo.FetchRepo
	if dsn := os.Getenv("IMGBIND_POSTGRES_DSN"); dsn != "" {
		pg, err := repo.NewPostgresRepo(dsn)
		if err != nil {
			logger.Error("connect postgres", "err", err)
			os.Exit(1)
		}
		defer func() { _ = pg.Close() }()
		fetchRepo = pg
		logger.Info("using postgres fetch history")
	} else {
		fetchRepo = repo.NewInMemoryFetchRepo()
		logger.Info("using in-memory fetch history")
	}

	settings := fetch.DefaultSettings()
	settings.RequestTimeout = time.Duration(timeoutSec * float64(time.Second))
	settings.MaximumSimultaneousDownloads = maxParallel
	settings.Cache.RequestCachePolicy = fetch.ParseCachePolicy(cachePolicy)

	env := bind.NewEnv()
	env.Client = fetch.NewClient(settings)
	env.Log = logger

	events := hub.New(logger)
	outcomes := make(chan recorder.Outcome, 64)
	rec := recorder.New(logger, fetchRepo, events, outcomes)
	rec.Run()
	defer rec.Stop()

	fetchSvc := service.NewFetch(logger, fetchRepo, env, outcomes)

	server := &http.Server{
		Addr:              addr,
		Handler:           router.New(logger, fetchSvc, events),
		ReadHeaderTimeout: 5 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	go func() {
		logger.Info("starting imgbindd", "addr", addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "err", err)
			os.Exit(1)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	sig := <-sigChan
	logger.Info("received terminate, graceful shutdown", "signal", sig.String())

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logger.Error("shutdown", "err", err)
	}
}
