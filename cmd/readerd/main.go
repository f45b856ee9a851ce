package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/pechorka/readstreak/internal/activity"
	"github.com/pechorka/readstreak/internal/handler"
	"github.com/pechorka/readstreak/internal/handler/mw/auth"
	"github.com/pechorka/readstreak/internal/handler/mw/logging"
	"github.com/pechorka/readstreak/internal/library"
	"github.com/pechorka/readstreak/internal/notes"
	"github.com/pechorka/readstreak/internal/stats"
	"github.com/pechorka/readstreak/internal/storage"
	"github.com/pechorka/readstreak/pkg/i18n"
	"github.com/pechorka/readstreak/pkg/watcher"
)

const shutdownTimeout = 5 * time.Second

func main() {
	if err := run(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func run() error {
	cfgPath := "./cfg.json"
	if len(os.Args) > 1 {
		cfgPath = os.Args[1]
	}
	cfg, err := readCfg(cfgPath)
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg.Debug)
	if err != nil {
		return errors.Wrap(err, "failed to create logger")
	}
	defer logger.Sync() //nolint:errcheck
	zap.ReplaceGlobals(logger)

	var store *storage.Storage
	if cfg.Debug {
		store, err = storage.NewTempStorage()
	} else {
		store, err = storage.NewStorage(storage.Config{Path: cfg.DbPath})
	}
	if err != nil {
		return errors.Wrap(err, "failed to open storage")
	}
	defer store.Close()

	catalog := i18n.New("en")
	if _, err := os.Stat(cfg.I18nPath); err == nil {
		w, err := watcher.LoadAndWatch(cfg.I18nPath, catalog, logger)
		if err != nil {
			return err
		}
		defer w.Close()
	} else {
		logger.Warn("translations not found, using built-in texts", zap.String("path", cfg.I18nPath))
	}

	engine := stats.NewEngine(store, stats.WithLogger(logger.Named("stats")))
	lib := library.New(library.Config{
		Store:       store,
		Stats:       engine,
		Logger:      logger.Named("library"),
		MaxFileSize: cfg.MaxFileSize,
	})
	reading := activity.NewReadingTimer(activity.ReadingTimerConfig{
		Stats:       engine,
		Logger:      logger.Named("reading"),
		IdleTimeout: time.Duration(cfg.IdleTimeout),
	})
	listening := activity.NewListeningTracker(engine, activity.ProgressUpdaterFunc(func(bookID string, percent float64) (float64, error) {
		book, err := lib.UpdateProgress(bookID, percent)
		return book.Progress, err
	}), logger.Named("listening"))

	handlers := handler.NewHandlers(handler.Config{
		Stats:       engine,
		Library:     lib,
		Notes:       notes.New(store, nil),
		Reading:     reading,
		Listening:   listening,
		Translator:  catalog,
		Logger:      logger.Named("http"),
		MaxFileSize: cfg.MaxFileSize,
	})

	mx := chi.NewRouter()
	mx.Use(middleware.RequestID)
	mx.Use(middleware.Recoverer)
	mx.Use(logging.Requests(logger.Named("http")))
	mx.Use(auth.NewAuthMW(cfg.AuthToken).Auth)
	handlers.Register(mx)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           mx,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go reading.Run(ctx, time.Second)

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("listening", zap.String("addr", cfg.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		return errors.Wrap(err, "http server failed")
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return errors.Wrap(srv.Shutdown(shutdownCtx), "failed to shut down http server")
}

func newLogger(debug bool) (*zap.Logger, error) {
	if debug {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}
