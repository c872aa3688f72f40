// Command webscout is an MCP stdio server exposing web search and page
// scraping tools backed by a SearXNG instance and a headless browser.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"webscout/internal/adapter/mcpserver"
	"webscout/internal/adapter/tool"
	"webscout/internal/infra/config"
	"webscout/internal/infra/logger"
	"webscout/internal/infra/tracer"
)

const (
	serverName    = "webscout"
	serverVersion = "1.0.0"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func run() error {
	configPath := flag.String("config", "", "path to YAML config file (optional)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log, closeLog, err := logger.New(cfg.Logger)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer closeLog()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracer, err := tracer.Setup(ctx, cfg.Tracer)
	if err != nil {
		return fmt.Errorf("init tracer: %w", err)
	}
	defer func() {
		if err := shutdownTracer(context.Background()); err != nil {
			log.Warn("tracer shutdown error", "error", err)
		}
	}()

	browser := tool.NewBrowserManager(cfg, log)
	defer browser.Close()

	registry := tool.NewRegistry(log)

	searchTool := tool.NewSearchTool(tool.NewSearxngBackend(cfg, log), log)
	scrapeTool := tool.NewScrapeTool(
		tool.NewStaticFetcher(cfg, log),
		tool.NewBrowserFetcher(browser, cfg, log),
		log,
	)
	if err := registry.Register(searchTool); err != nil {
		return fmt.Errorf("register %s: %w", searchTool.Name(), err)
	}
	if err := registry.Register(scrapeTool); err != nil {
		return fmt.Errorf("register %s: %w", scrapeTool.Name(), err)
	}

	log.Info("starting", "name", serverName, "version", serverVersion, "searxng_url", cfg.SearxngURL)

	srv := mcpserver.New(serverName, serverVersion, registry, log)
	if err := srv.Serve(ctx, os.Stdin, os.Stdout); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("serve: %w", err)
	}

	log.Info("shutdown complete")
	return nil
}
