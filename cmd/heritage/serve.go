package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"heritage/internal/web"

	"github.com/dimiro1/banner"
	"github.com/spf13/cobra"
)

const shutdownTimeout = 10 * time.Second

func newServeCmd() *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the analysis web page and API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			if addr != "" {
				cfg.Server.Addr = addr
			}
			log := newLogger(cfg)

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			a, err := newAgent(ctx, cfg, log)
			if err != nil {
				return err
			}

			printBanner(!noColor)
			srv := &http.Server{
				Addr: cfg.Server.Addr,
				Handler: web.NewServer(a, web.Options{
					RequestTimeout: cfg.Server.RequestTimeout,
					Logger:         log,
				}).Handler(),
				ReadHeaderTimeout: cfg.Server.ReadHeaderTimeout,
			}

			errCh := make(chan error, 1)
			go func() {
				log.Info("listening on %s", cfg.Server.Addr)
				fmt.Fprintf(os.Stdout, "Listening on http://%s\n", displayAddr(cfg.Server.Addr))
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					errCh <- err
				}
				close(errCh)
			}()

			select {
			case err := <-errCh:
				return err
			case <-ctx.Done():
			}

			log.Info("shutting down")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				return fmt.Errorf("shutdown: %w", err)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (overrides server.addr)")
	return cmd
}

func printBanner(color bool) {
	tpl := "{{ .Title \"HERITAGE\" \"\" 0 }}\nVersion: " + version + "\n"
	banner.Init(os.Stdout, true, color, bytes.NewBufferString(tpl))
}

func displayAddr(addr string) string {
	if len(addr) > 0 && addr[0] == ':' {
		return "localhost" + addr
	}
	return addr
}
