package cli

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/example/malkhana/internal/adapters/httpapi"
	"github.com/example/malkhana/internal/scheduler"
	"github.com/example/malkhana/internal/telemetry"
)

const shutdownTimeout = 10 * time.Second

func serveCmd(opts *globalOptions) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the JSON API and the pending-case scheduler",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			cfg, err := opts.loadConfig()
			if err != nil {
				return err
			}
			if addr != "" {
				cfg.HTTP.Addr = addr
			}

			shutdownTracing, err := telemetry.SetupTracing(ctx, cfg.Telemetry)
			if err != nil {
				return err
			}
			defer func() {
				flushCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
				defer cancel()
				_ = shutdownTracing(flushCtx)
			}()

			s, err := openWith(ctx, cfg)
			if err != nil {
				return err
			}
			defer s.Close()

			server := httpapi.NewHTTPServer(cfg.HTTP.Addr, s.HTTPHandler())
			jobs := scheduler.New(s.Notifications, s.Cases, cfg.Sweep.Interval, cfg.Sweep.Threshold, s.Logger)

			g, gctx := errgroup.WithContext(ctx)
			g.Go(func() error {
				s.Logger.InfoContext(gctx, "http api listening", "addr", cfg.HTTP.Addr)
				if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					return err
				}
				return nil
			})
			g.Go(func() error {
				<-gctx.Done()
				shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
				defer cancel()
				return server.Shutdown(shutdownCtx)
			})
			g.Go(func() error {
				return jobs.Run(gctx)
			})

			return g.Wait()
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides http.addr)")
	return cmd
}
