// Package main implements the filehookd binary: the HTTP service that keeps
// file item records and their backing objects in lockstep.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"go.uber.org/zap"

	"github.com/filehook/filehook/internal/app"
	"github.com/filehook/filehook/internal/config"
)

var (
	version = "dev"
	commit  = "unknown"
)

func main() {
	var (
		configFile  string
		dataDir     string
		listenAddr  string
		metricsAddr string
		debug       bool
		showVersion bool
		showHelp    bool
	)

	flag.StringVar(&configFile, "config", "", "Path to configuration file (YAML or JSON)")
	flag.StringVar(&dataDir, "data-dir", "", "Base directory for local data files")
	flag.StringVar(&listenAddr, "listen", "", "HTTP address of the API server")
	flag.StringVar(&metricsAddr, "metrics", "", "HTTP address of the metrics server")
	flag.BoolVar(&debug, "debug", false, "Enable debug logging")
	flag.BoolVar(&showVersion, "version", false, "Show version information")
	flag.BoolVar(&showHelp, "help", false, "Show help message")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "filehookd - file item / object store lifecycle synchronization\n\n")
		fmt.Fprintf(os.Stderr, "Usage: filehookd [options]\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  filehookd --data-dir /var/lib/filehook\n")
		fmt.Fprintf(os.Stderr, "  filehookd --config /etc/filehook/config.yaml\n")
		fmt.Fprintf(os.Stderr, "\nEnvironment Variables:\n")
		fmt.Fprintf(os.Stderr, "  FILEHOOK_DATA_DIR           Base directory for local data files\n")
		fmt.Fprintf(os.Stderr, "  FILEHOOK_HTTP_LISTEN_ADDR   HTTP address of the API server\n")
		fmt.Fprintf(os.Stderr, "  FILEHOOK_STORAGE_TYPE       Storage type (local, s3)\n")
		fmt.Fprintf(os.Stderr, "  FILEHOOK_S3_BUCKET          S3 bucket name\n")
		fmt.Fprintf(os.Stderr, "  FILEHOOK_S3_REGION          AWS region\n")
	}

	flag.Parse()

	if showHelp {
		flag.Usage()
		os.Exit(0)
	}

	if showVersion {
		fmt.Printf("filehookd version %s (commit: %s)\n", version, commit)
		os.Exit(0)
	}

	cfg, err := loadConfig(configFile)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Flags override file and environment.
	if dataDir != "" {
		cfg.DataDir = dataDir
	}
	if listenAddr != "" {
		cfg.HTTP.ListenAddr = listenAddr
	}
	if metricsAddr != "" {
		cfg.HTTP.MetricsAddr = metricsAddr
	}

	logger, err := newLogger(debug)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	a, err := app.New(cfg, logger)
	if err != nil {
		logger.Fatal("failed to create app", zap.Error(err))
	}

	ctx := context.Background()
	if err := a.Start(ctx); err != nil {
		logger.Fatal("failed to start app", zap.Error(err))
	}

	if err := a.Wait(ctx); err != nil {
		logger.Error("shutdown finished with error", zap.Error(err))
		os.Exit(1)
	}
}

func loadConfig(configFile string) (*config.Config, error) {
	cfg := config.DefaultConfig()
	if configFile != "" {
		loaded, err := config.LoadFromFile(configFile)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}
	config.LoadFromEnv(cfg)
	return cfg, nil
}

func newLogger(debug bool) (*zap.Logger, error) {
	if debug {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}
