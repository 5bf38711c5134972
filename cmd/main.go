package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/joho/godotenv"
	"github.com/meghashyamc/fuzzyfind/cli"
	"github.com/meghashyamc/fuzzyfind/config"
	"github.com/meghashyamc/fuzzyfind/logger"
)

func main() {
	godotenv.Load()

	cfg, err := config.Load("")
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %s\n", err)
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if err := cli.NewRootCommand(cfg, logger.New(cfg.GetLogLevel())).ExecuteContext(ctx); err != nil {
		cancel()
		os.Exit(1)
	}
}
