package main

import (
	"log"
	"os"

	"go.uber.org/zap"

	"github.com/ashmarkin/colmetra/internal/config"
)

func main() {
	cfg, err := config.Load(os.Args[1:], nil)
	if err != nil {
		log.Fatalf("failed to parse flags: %v", err)
	}

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	if err := run(cfg, logger); err != nil {
		logger.Fatal("reporter stopped", zap.Error(err))
	}
}
