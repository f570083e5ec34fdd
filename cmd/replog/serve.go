package main

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/claude/replog/internal/identity"
	replogmcp "github.com/claude/replog/internal/mcp"
	"github.com/claude/replog/internal/server"
	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"tailscale.com/tsnet"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API, MCP endpoint and metrics",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, log, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		log.Info("RepLog starting", "version", Version)

		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		a, err := newApp(ctx, cfg, log)
		if err != nil {
			return err
		}
		defer a.close()

		mcpDeps := replogmcp.Deps{
			Sessions:    a.sessions,
			Catalog:     a.catalog,
			Submitter:   a.submitter,
			Units:       a.settings,
			Metrics:     a.metrics,
			DefaultUser: a.user,
		}
		deps := server.Deps{
			Sessions:       a.sessions,
			Catalog:        a.catalog,
			Submitter:      a.submitter,
			Units:          a.settings,
			Metrics:        a.metrics,
			MetricsHandler: promhttp.HandlerFor(a.registry, promhttp.HandlerOpts{}),
			DefaultUser:    a.user,
		}
		if a.db != nil {
			deps.History = a.db
			deps.Users = a.db
			mcpDeps.History = a.db
		}

		mcpSrv := replogmcp.New(mcpDeps, Version, log)
		deps.MCP = mcpserver.NewStreamableHTTPServer(mcpSrv,
			mcpserver.WithHTTPContextFunc(func(ctx context.Context, r *http.Request) context.Context {
				if u, ok := identity.From(r.Context()); ok {
					return identity.With(ctx, u)
				}
				return ctx
			}),
		)

		srv := server.New(deps, cfg.Auth.APIKey, log)

		// Start server: tsnet or plain HTTP
		var listener net.Listener
		if cfg.Tailscale.Enabled {
			tsServer := &tsnet.Server{
				Hostname: cfg.Tailscale.Hostname,
				Dir:      cfg.Tailscale.StateDir,
			}
			if err := tsServer.Start(); err != nil {
				return fmt.Errorf("tsnet start: %w", err)
			}
			defer tsServer.Close()

			lc, err := tsServer.LocalClient()
			if err != nil {
				return fmt.Errorf("tsnet local client: %w", err)
			}
			srv.SetTailscale(lc)

			listener, err = tsServer.Listen("tcp", ":80")
			if err != nil {
				return fmt.Errorf("tsnet listen: %w", err)
			}
			log.Info("tsnet server starting", "hostname", cfg.Tailscale.Hostname)
		} else {
			addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
			listener, err = net.Listen("tcp", addr)
			if err != nil {
				return fmt.Errorf("listen on %s: %w", addr, err)
			}
			log.Info("server starting", "addr", addr, "mode", "dev (no tailscale)")
		}

		httpSrv := &http.Server{Handler: srv}
		errc := make(chan error, 1)
		go func() {
			if err := httpSrv.Serve(listener); err != nil && err != http.ErrServerClosed {
				errc <- err
			}
		}()

		select {
		case err := <-errc:
			return fmt.Errorf("server error: %w", err)
		case <-ctx.Done():
		}
		log.Info("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpSrv.Shutdown(shutdownCtx); err != nil {
			log.Error("shutdown error", "error", err)
		}
		log.Info("server stopped", "open_sessions", a.sessions.Len())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
