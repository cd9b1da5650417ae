
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

	"github.com/spf13/pflag"
	"go.uber.org/automaxprocs/maxprocs"

	"markup-tokens/internal/config"
	"markup-tokens/pkg/logger"
)

func main() {
	l := logger.New()

	configPath := pflag.String("config", "", "YAML config file")
	addr := pflag.String("addr", "", "listen address (overrides config)")
	concurrency := pflag.Int("concurrency", 0, "batch concurrency (overrides config)")
	evernote := pflag.Bool("evernote", false, "recognize the Evernote dialect by default")
	pflag.Parse()

	cfg, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(2)
	}
	if *addr != "" {
		cfg.Server.Addr = *addr
	}
	if pflag.CommandLine.Changed("concurrency") {
		cfg.Concurrency = *concurrency
	}
	if pflag.CommandLine.Changed("evernote") {
		cfg.Evernote = *evernote
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(2)
	}
	lvl, _ := logger.ParseLevel(cfg.LogLevel)
	l = l.WithLevel(lvl)

	// fails only on an invalid GOMAXPROCS env; the runtime default applies then
	_, _ = maxprocs.Set(maxprocs.Logger(l.Debugf))

	srv := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      newServer(cfg, l).routes(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	go func() {
		l.Infof("server listening on %s", cfg.Server.Addr)
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			l.Errorf("server error: %v", err)
		}
	}()

	// graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop
	l.Infof("shutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Shutdown(ctx)
	l.Infof("bye")
}

func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		return config.Default(), nil
	}
	return config.Load(path)
}
