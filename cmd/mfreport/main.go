package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/sanspareilsmyn/mfreport/internal/config"
	"github.com/sanspareilsmyn/mfreport/internal/date"
	"github.com/sanspareilsmyn/mfreport/internal/logging"
	"github.com/sanspareilsmyn/mfreport/internal/pipeline"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	// Initialize Configuration
	cfg, err := config.Load(args)
	if errors.Is(err, pflag.ErrHelp) {
		fmt.Fprint(os.Stdout, config.Usage())
		return 0
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: %v\n", err)
		return 1
	}

	// Initialize Logger
	logger, err := logging.NewLogger(cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: Failed to initialize logger: %v\n", err)
		return 1
	}
	defer func() {
		_ = logger.Sync() // Flush buffered logs on exit
	}()

	sugar := logger.Sugar()
	sugar.Debugw("Configuration loaded",
		"websites", cfg.Websites,
		"from", date.Format(cfg.Report.From),
		"to", date.Format(cfg.Report.To),
		"output", cfg.Output.Directory,
		"source", cfg.Source.Kind,
		"level", cfg.Log.Level,
	)

	pipe, err := pipeline.New(cfg, logger)
	if err != nil {
		sugar.Errorw("Failed to initialize pipeline", zap.Error(err))
		return 1
	}

	// Handle Graceful Shutdown
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := pipe.Run(ctx); err != nil {
		sugar.Errorw("Finished with errors", "run_id", pipe.RunID(), zap.Error(err))
		return 1
	}
	sugar.Infow("Finished", "run_id", pipe.RunID(), "reports", len(cfg.Websites))
	return 0
}
