package main

import (
	"embed"
	"fmt"
	"os"

	"github.com/chazu/joinery/pkg/config"
	"github.com/chazu/joinery/pkg/kernel/backend"
	"github.com/chazu/joinery/pkg/logging"
	"github.com/wailsapp/wails/v2"
	"github.com/wailsapp/wails/v2/pkg/options"
	"github.com/wailsapp/wails/v2/pkg/options/assetserver"
	"go.uber.org/zap"
)

//go:embed all:frontend/dist
var assets embed.FS

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "joinery:", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load(os.Getenv("JOINERY_CONFIG"))
	if err != nil {
		return err
	}
	log, err := logging.New(cfg.Log, os.Getenv("JOINERY_VERBOSE") != "")
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	k, err := backend.Open(cfg.Kernel)
	if err != nil {
		return err
	}
	app, err := newApp(*cfg, k, log)
	if err != nil {
		return err
	}
	log.Info("starting desktop app", zap.String("kernel", cfg.Kernel.Backend))

	return wails.Run(&options.App{
		Title:     "joinery",
		Width:     1280,
		Height:    800,
		OnStartup: app.startup,
		AssetServer: &assetserver.Options{
			Assets: assets,
		},
		Bind: []interface{}{app},
	})
}
