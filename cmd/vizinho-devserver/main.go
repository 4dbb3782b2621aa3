package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mmcdole/vizinho/internal/config"
	"github.com/mmcdole/vizinho/internal/devserver"
	"github.com/mmcdole/vizinho/internal/logging"
	"github.com/mmcdole/vizinho/internal/repository/memory"
)

func main() {
	configPath := flag.String("config", "", "path to config file")
	addr := flag.String("addr", "", "listen address (overrides devserver.addr)")
	failRate := flag.Float64("fail-rate", -1, "fraction of requests answered with 503 (overrides devserver.fail_rate)")
	token := flag.String("token", "", "required bearer token (overrides repository.token)")
	flag.Parse()

	if err := run(*configPath, *addr, *failRate, *token); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath, addr string, failRate float64, token string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if addr == "" {
		addr = cfg.DevServer.Addr
	}
	if failRate < 0 {
		failRate = cfg.DevServer.FailRate
	}
	if token == "" {
		token = cfg.Repository.Token
	}

	logger := logging.Console(os.Stderr, logging.ParseLevel(cfg.Logging.Level))

	srv := devserver.New(memory.New(), devserver.Options{
		Token:    token,
		FailRate: failRate,
		Logger:   logger,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe(addr)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
