package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/claude/replog/internal/config"
	"github.com/claude/replog/internal/identity"
	"github.com/claude/replog/internal/logging"
	"github.com/claude/replog/internal/metrics"
	"github.com/claude/replog/internal/session"
	"github.com/claude/replog/internal/settings"
	"github.com/claude/replog/internal/storage"
	"github.com/claude/replog/internal/submit"
	"github.com/claude/replog/internal/templates"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
)

// app is the wired set of components shared by serve and mcp.
type app struct {
	cfg       *config.Config
	log       *slog.Logger
	sessions  *session.Registry
	catalog   *templates.Catalog
	cache     *templates.RedisCache
	settings  *settings.Store
	db        *storage.DB
	submitter session.Submitter
	registry  *prometheus.Registry
	metrics   *metrics.Recorder
	user      identity.User

	closers []func()
}

// loadConfig reads the file named by --config and builds the logger.
func loadConfig(cmd *cobra.Command) (*config.Config, *slog.Logger, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return nil, nil, fmt.Errorf("loading config: %w", err)
	}
	return cfg, logging.New(logging.ParseLevel(cfg.Log.Level)), nil
}

// newApp opens every configured backend. Call close when done.
func newApp(ctx context.Context, cfg *config.Config, log *slog.Logger) (*app, error) {
	a := &app{
		cfg:      cfg,
		log:      log,
		sessions: session.NewRegistry(),
		registry: prometheus.NewRegistry(),
		user:     identity.Local,
	}
	a.metrics = metrics.New(a.registry)

	a.catalog = templates.NewCatalog(a.templateLoader(), log)
	n := a.catalog.Refresh(ctx)
	log.Info("templates loaded", "count", n, "types", a.catalog.Types())

	st, err := settings.Open(cfg.Settings.Path, log)
	if err != nil {
		a.close()
		return nil, fmt.Errorf("opening settings: %w", err)
	}
	a.settings = st
	a.closers = append(a.closers, func() { _ = st.Close() })

	var submitters submit.Multi
	if cfg.Database.Enabled() {
		dsn := cfg.Database.DSN()
		if err := storage.RunMigrations(dsn, "migrations"); err != nil {
			a.close()
			return nil, fmt.Errorf("running migrations: %w", err)
		}
		db, err := storage.New(ctx, dsn)
		if err != nil {
			a.close()
			return nil, fmt.Errorf("connecting database: %w", err)
		}
		a.db = db
		a.closers = append(a.closers, db.Close)
		log.Info("database connected")

		uid, err := db.GetOrCreateUser(ctx, cfg.Database.UserLogin, cfg.Database.UserLogin)
		if err != nil {
			a.close()
			return nil, fmt.Errorf("resolving default user: %w", err)
		}
		a.user = identity.User{ID: uid, Login: cfg.Database.UserLogin, DisplayName: cfg.Database.UserLogin}
		submitters = append(submitters, submit.NewDB(db, st, uid, log))
	}
	if cfg.Submit.URL != "" {
		submitters = append(submitters, submit.NewHTTP(cfg.Submit.URL, log))
	}

	switch len(submitters) {
	case 0:
		a.submitter = submit.Log{Log: log}
	case 1:
		a.submitter = submitters[0]
	default:
		a.submitter = submitters
	}

	return a, nil
}

// templateLoader picks the Sheets API, then the CSV export, then nothing, and
// puts a Redis cache in front when one is configured.
func (a *app) templateLoader() templates.Loader {
	tc := a.cfg.Templates

	var l templates.Loader
	switch {
	case tc.APIKey != "" && tc.SpreadsheetID != "":
		l = templates.NewSheetsClient(tc.SheetsURL, tc.APIKey, tc.SpreadsheetID, tc.SheetName)
	case tc.CSVURL != "":
		l = templates.NewCSVClient(tc.CSVURL)
	default:
		return templates.Unconfigured{Log: a.log}
	}

	if tc.RedisAddr != "" {
		client := redis.NewClient(&redis.Options{Addr: tc.RedisAddr})
		a.closers = append(a.closers, func() { _ = client.Close() })
		a.cache = templates.NewRedisCache(client, l, tc.CacheTTL, a.log)
		return a.cache
	}
	return l
}

func (a *app) close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}
