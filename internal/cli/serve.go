package cli

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/Sternrassler/content-client/pkg/hooks"
	"github.com/Sternrassler/content-client/pkg/logging"
	"github.com/spf13/cobra"
)

// shutdownTimeout bounds graceful shutdown, including pending analytics.
const shutdownTimeout = 15 * time.Second

func (a *app) newServeCommand() *cobra.Command {
	var port int

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the caching HTTP proxy",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("port") {
				a.cfg.Server.Port = port
			}
			return a.serve(cmd.Context())
		},
	}

	cmd.Flags().IntVar(&port, "port", 0, "listen port (overrides PORT)")

	return cmd
}

func (a *app) serve(parent context.Context) error {
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger := logging.NewLogger("proxy")

	c, closeFn, err := a.newClient(ctx)
	if err != nil {
		return err
	}
	defer closeFn()

	reporter := hooks.NewReporter(c.ReportAnalytics, hooks.DefaultReportTimeout)
	srv := &http.Server{
		Addr:              ":" + strconv.Itoa(a.cfg.Server.Port),
		Handler:           NewServer(c, reporter, a.cfg.API.AdminToken).Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	logger.Info().
		Str("addr", srv.Addr).
		Str("base_url", a.cfg.API.BaseURL).
		Str("cache_backend", a.cfg.Cache.Backend).
		Str("cache_ttl", a.cfg.Cache.TTL).
		Str("user_agent", a.cfg.API.UserAgent).
		Msg("Starting content proxy")

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info().Msg("Shutting down content proxy")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	reporter.Wait()

	return nil
}
