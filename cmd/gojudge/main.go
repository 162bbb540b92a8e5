package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/oj-engine/gojudge/internal/config"
	"github.com/oj-engine/gojudge/internal/httpapi"
	"github.com/oj-engine/gojudge/internal/judge"
	"github.com/oj-engine/gojudge/internal/registry"
)

var Version = "dev-build"

func main() {
	fmt.Fprintf(os.Stderr, "gojudge %s - a minimal online judge backend\n\n", Version)

	var configPath, problemsDir, logLevel string
	var flushData bool
	flag.StringVar(&configPath, "config", "", "path to config file (required)")
	flag.BoolVar(&flushData, "flush-data", false, "start with empty registries instead of reloading snapshots")
	flag.StringVar(&problemsDir, "problems-dir", "", "optional directory of per-problem problem.yaml fixtures, merged into the config")
	flag.StringVar(&logLevel, "log-level", "info", "log level: info or debug")
	flag.Parse()

	if configPath == "" {
		fmt.Fprintln(os.Stderr, "--config is required")
		os.Exit(1)
	}

	var logger *zap.Logger
	var err error
	if logLevel == "debug" {
		logger, err = zap.NewDevelopment()
	} else {
		logger, err = zap.NewProduction()
	}
	if err != nil {
		log.Fatalf("can't initialize zap logger: %v", err)
	}
	defer logger.Sync()
	zap.ReplaceGlobals(logger)

	cfg, err := config.Load(configPath)
	if err != nil {
		zap.S().Fatalf("failed to load config: %v", err)
	}

	if problemsDir != "" {
		extra, err := config.LoadProblemSetDir(problemsDir)
		if err != nil {
			zap.S().Fatalf("failed to load problems dir: %v", err)
		}
		cfg.Problems = append(cfg.Problems, extra...)
		zap.S().Infof("loaded %d additional problem(s) from %s", len(extra), problemsDir)
	}

	rs := registry.New()
	if err := rs.Bootstrap(flushData); err != nil {
		zap.S().Fatalf("failed to bootstrap registries: %v", err)
	}
	zap.S().Infof("registries ready: %d job(s), %d user(s), %d contest(s)", rs.Jobs.Len(), rs.Users.Len(), len(rs.Contests.All()))

	persister := registry.NewPersister(rs)
	go persister.Run()
	zap.S().Info("snapshot persister started")

	workRoot, err := os.MkdirTemp("", "gojudge-work-")
	if err != nil {
		zap.S().Fatalf("failed to create working directory root: %v", err)
	}
	defer os.RemoveAll(workRoot)

	pipeline := judge.NewPipeline(cfg, rs, workRoot)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	shutdownOnce := make(chan struct{})
	shutdown := func() {
		select {
		case <-shutdownOnce:
			return
		default:
			close(shutdownOnce)
		}
		quit <- syscall.SIGTERM
	}

	router := httpapi.NewRouter(cfg, rs, pipeline, shutdown)

	go func() {
		zap.S().Infof("starting server at %s", cfg.Listen())
		if err := router.Run(cfg.Listen()); err != nil {
			zap.S().Fatalf("failed to start server: %v", err)
		}
	}()

	<-quit
	zap.S().Info("shutting down...")
	persister.Stop()
	zap.S().Info("final snapshot complete, exiting")
}
