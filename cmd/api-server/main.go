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

	"github.com/gin-gonic/gin"
	cli "github.com/urfave/cli/v3"
	"go.uber.org/zap"

	"epubshelf/pkg/utils"
)

const shutdownTimeout = 10 * time.Second

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app := &cli.Command{
		Name:  "api-server",
		Usage: "serve tables of contents and chapters of the ePub files in a directory",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config", Aliases: []string{"c"}, Usage: "load configuration from `FILE` (YAML)"},
			&cli.StringFlag{Name: "books-dir", Usage: "directory holding the .epub files"},
			&cli.StringFlag{Name: "addr", Usage: "listen address, e.g. :8000"},
			&cli.BoolFlag{Name: "debug", Aliases: []string{"d"}, Usage: "log at debug level"},
		},
		Action: run,
	}

	if err := app.Run(ctx, os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "api-server: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cmd *cli.Command) error {
	cfg, err := utils.LoadServerConfig(cmd.String("config"))
	if err != nil {
		return err
	}
	if cmd.IsSet("books-dir") {
		cfg.BooksDir = cmd.String("books-dir")
	}
	if cmd.IsSet("addr") {
		cfg.Addr = cmd.String("addr")
	}
	if cmd.Bool("debug") {
		cfg.Log.Level = "debug"
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	log, err := utils.NewLogger(cfg.Log)
	if err != nil {
		return fmt.Errorf("unable to prepare logs: %w", err)
	}
	defer func() { _ = log.Sync() }()

	if fi, err := os.Stat(cfg.BooksDir); err != nil || !fi.IsDir() {
		log.Warn("Books directory is not accessible, listing will be empty", zap.String("dir", cfg.BooksDir))
	}

	if cfg.Log.Level != "debug" {
		gin.SetMode(gin.ReleaseMode)
	}

	router, err := newRouter(cfg, log)
	if err != nil {
		return err
	}

	httpSrv := &http.Server{
		Addr:         cfg.Addr,
		Handler:      router,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("HTTP API server listening", zap.String("addr", cfg.Addr), zap.String("books_dir", cfg.BooksDir))
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		log.Info("Shutdown signal received")
	case err, ok := <-errCh:
		if ok {
			return fmt.Errorf("http server: %w", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http shutdown: %w", err)
	}
	log.Info("Server stopped")
	return nil
}
