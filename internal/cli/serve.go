package cli

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"tradejournal/internal/adapters/httpapi"
)

func newServeCmd(opts *RootOptions) *cobra.Command {
	var port int

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the journal JSON API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRuntime(cmd, opts, func(rt *runtime) error {
				if port > 0 {
					rt.cfg.HTTPPort = port
				}
				return serve(cmd.Context(), rt)
			})
		},
	}
	cmd.Flags().IntVar(&port, "port", 0, "HTTP port (default $HTTP_PORT)")
	return cmd
}

// serve runs the HTTP server until SIGINT/SIGTERM or ctx cancellation.
func serve(ctx context.Context, rt *runtime) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	// Handle graceful shutdown
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)
	go func() {
		select {
		case sig := <-sigCh:
			rt.logger.Info(ctx, "Received shutdown signal", map[string]interface{}{"signal": sig.String()})
			cancel()
		case <-ctx.Done():
		}
	}()

	srv := httpapi.New(httpapi.Config{
		Addr:           rt.cfg.ListenAddr(),
		Log:            rt.logger.Zerolog(),
		Journal:        rt.svc,
		AllowedOrigins: rt.cfg.CORSAllowedOrigins,
		RequestTimeout: rt.cfg.RequestTimeout,
	})

	errCh := make(chan error, 1)
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			rt.logger.Error(ctx, err, "HTTP server exited with error")
			return err
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		rt.logger.Error(shutdownCtx, err, "HTTP server shutdown failed")
		return err
	}
	rt.logger.Info(shutdownCtx, "Journal server stopped gracefully")
	return nil
}
