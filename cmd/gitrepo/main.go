package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/local-mcps/gitrepo-mcp/config"
	"github.com/local-mcps/gitrepo-mcp/internal/common"
	"github.com/local-mcps/gitrepo-mcp/internal/gitrepo"
	"github.com/local-mcps/gitrepo-mcp/pkg/mcp"
)

func main() {
	configPath := flag.String("config", "", "Path to configuration file")
	flag.Parse()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	cfg.ExpandPaths()

	logger := common.NewLogger(
		common.ParseLogLevel(cfg.Global.LogLevel),
		common.ParseLogFormat(cfg.Global.LogFormat),
		nil,
		"gitrepo",
	)

	server := mcp.NewServer("gitrepo", "1.0.0", int64(cfg.Git.MaxConcurrentCalls), logger)

	gitServer, err := gitrepo.NewServer(&cfg.Git, logger)
	if err != nil {
		logger.Errorf("Failed to initialize git server: %v", err)
		os.Exit(1)
	}
	gitServer.RegisterTools(server)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigCh
		cancel()
	}()

	logger.Infof("Serving repositories under %s", cfg.Git.RepositoryRoot)

	if err := server.Run(ctx); err != nil && err != context.Canceled {
		logger.Errorf("Server error: %v", err)
		os.Exit(1)
	}
}
