package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/lysyi3m/medium-wxr/app/api"
	"github.com/lysyi3m/medium-wxr/app/cache"
	"github.com/lysyi3m/medium-wxr/app/cfg"
	"github.com/lysyi3m/medium-wxr/app/database"
	"github.com/lysyi3m/medium-wxr/app/fetch"
	"github.com/lysyi3m/medium-wxr/app/medium"
	"github.com/lysyi3m/medium-wxr/app/metrics"
	"github.com/lysyi3m/medium-wxr/app/tasks"
	"github.com/lysyi3m/medium-wxr/app/wxr"
)

func main() {
	os.Exit(run())
}

func run() int {
	appCfg, err := cfg.Load(os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	if appCfg == nil {
		return 0
	}

	setupLogger(appCfg.Debug)

	slog.Info("Starting medium-wxr", "version", appCfg.Version)

	if !appCfg.HasSource() {
		cfg.WriteHelp(os.Stderr)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector())
	collector := metrics.NewCollector(reg)

	recorders := []cache.Recorder{collector}

	var (
		postRepo  *database.PostRepository
		fetchRepo *database.FetchRepository
		ledger    tasks.PostLedger
	)

	if appCfg.DBPath != "" {
		db, err := database.NewConnection(appCfg.DBPath)
		if err != nil {
			slog.Error("Failed to open run ledger", "path", appCfg.DBPath, "error", err)
			return 1
		}
		defer db.Close()

		version, _, err := database.RunMigrations(db)
		if err != nil {
			slog.Error("Failed to migrate run ledger", "error", err)
			return 1
		}
		slog.Debug("Run ledger ready", "path", appCfg.DBPath, "schema_version", version)

		postRepo = database.NewPostRepository(db)
		fetchRepo = database.NewFetchRepository(db)
		ledger = postRepo
		recorders = append(recorders, fetchRepo)
	}

	fetcher := fetch.NewHTTPFetcher(fetch.NewSafeClient(appCfg.FetchTimeout), appCfg.RateLimit, appCfg.UserAgent, appCfg.AllowedHosts)
	pages := cache.NewCache(appCfg.CacheDir, fetcher, recorders...)

	pipeline := tasks.Pipeline{
		Site: medium.Site{
			CanonicalHost: appCfg.CanonicalHost,
			TitleSuffix:   appCfg.TitleSuffix,
		},
		Pages: pages,
		Sources: medium.Sources{
			PublicationURL:     appCfg.PublicationURL,
			URLs:               appCfg.URLs,
			HTMLFile:           appCfg.HTMLFile,
			URLsFile:           appCfg.URLsFile,
			FeedURL:            appCfg.FeedURL,
			RefetchPublication: appCfg.RefetchPublicationURL,
		},
		Category: wxr.Category{
			Label:    appCfg.CategoryName,
			Nicename: appCfg.CategoryNicename,
		},
		TemplateFile: appCfg.TemplateFile,
		OutFile:      appCfg.OutFile,
		Strict:       appCfg.Strict,
		Ledger:       ledger,
		Posts:        collector,
		Embeds:       collector,
	}

	state := tasks.NewRun()
	if err := tasks.NewRunner(collector).Run(ctx, pipeline.Tasks(state)...); err != nil {
		slog.Error("Migration failed", "error", err)
		return 1
	}

	slog.Info("Migration finished",
		"out", state.OutFile,
		"posts", len(state.PostURLs),
		"written", len(state.Records),
		"failed", len(state.Failures))

	if !appCfg.Serve {
		return 0
	}

	if postRepo == nil {
		slog.Warn("Preview server needs the run ledger, set --db-path")
		return 0
	}

	if err := serve(ctx, appCfg, api.NewHandler(postRepo, fetchRepo, appCfg.OutFile, reg, appCfg.Version)); err != nil {
		slog.Error("Preview server failed", "error", err)
		return 1
	}

	return 0
}

func setupLogger(debug bool) {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
}

func serve(ctx context.Context, appCfg *cfg.Cfg, handler *api.Handler) error {
	httpServer := &http.Server{
		Addr:         ":" + appCfg.Port,
		Handler:      api.NewServer(handler),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		slog.Info("Starting preview server", "addr", "http://localhost:"+appCfg.Port)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	select {
	case <-ctx.Done():
		slog.Info("Shutting down preview server")
	case err := <-serverErr:
		return err
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down preview server: %w", err)
	}

	return nil
}
