package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	kitlog "github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"gradecalc/internal/config"
	"gradecalc/internal/database"
	"gradecalc/internal/handler"
	"gradecalc/internal/logging"
	"gradecalc/internal/render"
	"gradecalc/internal/service"
)

func main() {
	v := config.New()

	root := &cobra.Command{
		Use:   "gradecalc",
		Short: "Student grade calculator",
	}
	serve := &cobra.Command{
		Use:   "serve",
		Short: "Serve the grade calculator page and JSON API",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(v)
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return run(ctx, cfg)
		},
	}
	serve.Flags().String("addr", "", "listen address (HTTP_ADDR)")
	serve.Flags().String("store", "", "record store: memory, sqlite or postgres (STORE_DRIVER)")
	bindFlag(v, "http_addr", serve, "addr")
	bindFlag(v, "store_driver", serve, "store")

	root.AddCommand(serve)
	if err := root.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// bindFlag lets a flag override the environment only when it is given.
func bindFlag(v *viper.Viper, key string, cmd *cobra.Command, name string) {
	if err := v.BindPFlag(key, cmd.Flags().Lookup(name)); err != nil {
		panic(err)
	}
}

func run(ctx context.Context, cfg config.Config) error {
	logger, closer, err := logging.New("gradecalc", cfg.LogDir, cfg.LogLevel)
	if err != nil {
		return err
	}
	defer closer.Close()

	newStore, err := storeFactory(cfg, logger)
	if err != nil {
		return err
	}

	sessions := service.NewSessionManager(newStore, cfg.SessionTTL, kitlog.With(logger, "component", "sessions"))
	sweepCtx, cancelSweep := context.WithCancel(context.Background())
	sweepDone := make(chan struct{})
	go func() {
		defer close(sweepDone)
		sessions.RunSweeper(sweepCtx, time.Minute)
	}()

	page, err := render.NewPage(cfg.Footer)
	if err != nil {
		cancelSweep()
		return err
	}

	server := &http.Server{
		Addr: cfg.HTTPAddr,
		Handler: handler.NewHTTPHandler(sessions, page, logger, handler.Options{
			CSRFKey:        cfg.CSRFKey,
			SecureCookies:  cfg.SecureCookies,
			AllowedOrigins: cfg.AllowedOrigins,
		}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		level.Info(logger).Log("msg", "server running", "addr", cfg.HTTPAddr, "store", cfg.StoreDriver)
		errCh <- server.ListenAndServe()
	}()

	select {
	case err = <-errCh:
	case <-ctx.Done():
		level.Info(logger).Log("msg", "shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		err = server.Shutdown(shutdownCtx)
		cancel()
	}

	// ending the sweeper tears down every remaining session
	cancelSweep()
	<-sweepDone

	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

func storeFactory(cfg config.Config, logger kitlog.Logger) (service.StoreFactory, error) {
	if cfg.StoreDriver == config.StoreMemory {
		return func(string) service.RecordStore { return service.NewMemoryStore() }, nil
	}

	db, err := database.InitDB(cfg)
	if err != nil {
		return nil, err
	}
	level.Info(logger).Log("msg", "database ready", "driver", cfg.StoreDriver)
	return func(sessionID string) service.RecordStore {
		return service.NewGormStore(db, sessionID)
	}, nil
}
