package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"bedtime_storyteller/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the web page and JSON API",
	RunE: func(cmd *cobra.Command, args []string) error {
		addr, _ := cmd.Flags().GetString("addr")
		listen := cfg.ServerAddr
		if addr != "" {
			listen = addr
		}
		if listen == "" {
			listen = ":5001"
		}

		a, err := buildApp(cfg, true, log.Default())
		if err != nil {
			return err
		}
		defer a.Close()

		opts := []server.Option{
			server.WithUsage(a.usage),
			server.WithStoriesDir(cfg.OutputDir),
		}
		if a.catalog != nil {
			opts = append(opts, server.WithLibrary(a.catalog))
		}
		srv, err := server.New(a.pipeline, opts...)
		if err != nil {
			return err
		}

		httpSrv := &http.Server{Addr: listen, Handler: srv.Routes()}
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		errCh := make(chan error, 1)
		go func() {
			log.Printf("Starting AI Bedtime Story Server on %s", listen)
			errCh <- httpSrv.ListenAndServe()
		}()

		select {
		case err := <-errCh:
			if errors.Is(err, http.ErrServerClosed) {
				return nil
			}
			return err
		case <-ctx.Done():
		}

		log.Printf("[cli] shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		return httpSrv.Shutdown(shutdownCtx)
	},
}

func init() {
	serveCmd.Flags().String("addr", "", "http listen address (overrides config server_addr)")

	rootCmd.AddCommand(serveCmd)
}
