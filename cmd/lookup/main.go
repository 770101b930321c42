package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"gel-tracker/internal/core/config"
	"gel-tracker/internal/core/logger"
	"gel-tracker/internal/core/proxy"
	"gel-tracker/internal/features/tracking/adapters"
	"gel-tracker/internal/features/tracking/domain"
	"gel-tracker/internal/features/tracking/service"
)

type failure struct {
	OK    bool   `json:"ok"`
	Error string `json:"error"`
	Kind  string `json:"kind,omitempty"`
}

func main() {
	code := flag.String("code", "", "tracking code to look up")
	configDir := flag.String("config", ".", "directory containing the .env file")
	flag.Parse()

	if *code == "" && flag.NArg() > 0 {
		*code = flag.Arg(0)
	}
	cfg, err := config.Load(*configDir)
	if err != nil {
		printJSON(failure{Error: fmt.Sprintf("failed to load config: %v", err)})
		os.Exit(1)
	}

	// stdout carries only the JSON result.
	if err := logger.Init(cfg.Environment, cfg.LogLevel,
		logger.WithOutput("stderr"),
		logger.WithFields(map[string]interface{}{"mode": "cli"}),
	); err != nil {
		printJSON(failure{Error: fmt.Sprintf("failed to init logger: %v", err)})
		os.Exit(1)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	svc := service.NewScrapeService(
		cfg.Scrape,
		adapter.NewExecutableResolver(cfg.Browser),
		adapter.NewRodLauncher(cfg.Browser, cfg.Scrape, proxy.FromConfig(cfg.Proxy)),
		service.WithLogger(logger.Named("lookup")),
	)

	req, err := domain.NewScrapeRequest(*code)
	if err != nil {
		fail(err, 2)
	}

	result, err := svc.RunScrape(ctx, req)
	if err != nil {
		fail(err, 1)
	}

	printJSON(result)
}

func fail(err error, exitCode int) {
	f := failure{Error: err.Error()}
	var scrapeErr *domain.ScrapeError
	if errors.As(err, &scrapeErr) {
		f.Kind = string(scrapeErr.Kind)
	}
	printJSON(f)
	logger.Sync()
	os.Exit(exitCode)
}

func printJSON(v any) {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	_ = enc.Encode(v)
}
