// Package main is the entry point for the glbview asset viewer.
package main

import (
	"errors"
	"flag"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/Carmen-Shannon/oxy-glb/engine"
	"github.com/Carmen-Shannon/oxy-glb/engine/config"
	"github.com/Carmen-Shannon/oxy-glb/engine/loader"
	"github.com/Carmen-Shannon/oxy-glb/engine/logger"
)

func main() {
	fs := flag.NewFlagSet("glbview", flag.ExitOnError)
	flags := config.RegisterFlags(fs)
	inspect := fs.Bool("inspect", false, "Parse the asset, log its summary and exit without opening a window")
	saveConfig := fs.String("save-config", "", "Write the effective configuration to this path and exit")
	_ = fs.Parse(os.Args[1:])

	cfg, err := config.Load(*flags.Config)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		os.Exit(1)
	}
	flags.Apply(cfg)
	if cfg.Loader.AssetPath == "" && fs.NArg() > 0 {
		cfg.Loader.AssetPath = fs.Arg(0)
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		os.Exit(1)
	}

	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		fmt.Fprintf(os.Stderr, "Logger error: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	if *saveConfig != "" {
		if err := cfg.SaveTo(*saveConfig); err != nil {
			logger.Fatal("failed to save config", zap.String("path", *saveConfig), zap.Error(err))
		}
		logger.Info("config saved", zap.String("path", *saveConfig))
		return
	}

	if *inspect {
		if err := inspectAsset(cfg); err != nil {
			logger.Fatal("inspect failed", zap.Error(err))
		}
		return
	}

	logger.Info("=== glbview ===", zap.String("asset", cfg.Loader.AssetPath))
	logger.Sugar.Debugf("Config: %+v", cfg)

	eng, err := engine.NewEngine(cfg, engine.WithLogger(logger.Log))
	if err != nil {
		logger.Error("failed to start viewer", zap.Error(err))
		os.Exit(1)
	}
	if err := eng.Run(); err != nil {
		logger.Error("viewer stopped", zap.Error(err))
		os.Exit(1)
	}
	logger.Info("viewer closed normally")
}

// inspectAsset runs the CPU half of the pipeline and logs what was found.
func inspectAsset(cfg *config.Config) error {
	if cfg.Loader.AssetPath == "" {
		return errors.New("no asset given")
	}
	l := loader.NewLoader(
		loader.WithDecodeWorkers(cfg.Loader.DecodeWorkers),
		loader.WithDecodeQueue(cfg.Loader.DecodeQueue),
		loader.WithDocumentSamplers(cfg.Textures.UseDocumentSamplers),
		loader.WithLogger(logger.Named("loader")),
	)
	defer l.Close()
	asset, err := l.LoadFile(cfg.Loader.AssetPath)
	if err != nil {
		return err
	}
	logger.Info("asset inspected",
		zap.String("asset", asset.Name),
		zap.Bool("pbr", asset.IsPBR),
		zap.Int("vertices", asset.Mesh.VertexCount()),
		zap.Int("indices", asset.Mesh.IndexCount()),
		zap.Int("images", len(asset.Images)),
	)
	return nil
}
