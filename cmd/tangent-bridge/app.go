package main

import (
	"fmt"

	"github.com/entrhq/tangent/pkg/bridge"
	"github.com/entrhq/tangent/pkg/config"
	"github.com/entrhq/tangent/pkg/logging"
	"github.com/entrhq/tangent/pkg/notebook"
	"github.com/entrhq/tangent/pkg/platform"
	"github.com/entrhq/tangent/pkg/recent"
)

// app is the bridge assembled from the launch configuration and the
// persisted settings.
type app struct {
	launch       *config.LaunchConfig
	resolver     *platform.Resolver
	appDataDir   string
	settingsPath string
	settings     *config.Settings
	store        *recent.Store
	bridge       *bridge.Bridge
	logger       *logging.Logger
}

func newApp(launch *config.LaunchConfig, component string) (*app, error) {
	// NewLogger returns a usable stderr logger along with the error.
	logger, err := logging.NewLogger(component)
	if err != nil {
		logger.Warnf("file logging unavailable: %v", err)
	}

	a, err := assemble(launch, logger)
	if err != nil {
		logger.Errorf("startup failed: %v", err)
		logger.Close()
		return nil, err
	}
	return a, nil
}

func assemble(launch *config.LaunchConfig, logger *logging.Logger) (*app, error) {
	resolver := launch.Resolver()
	appDataDir, err := resolver.AppDataDir()
	if err != nil {
		return nil, err
	}

	settingsPath := settingsFile(launch, appDataDir)
	settings, err := config.OpenSettings(settingsPath)
	if err != nil {
		return nil, err
	}

	files, err := notebook.NewFiles(settings.Notebooks.FileOptions())
	if err != nil {
		return nil, fmt.Errorf("invalid notebook settings: %w", err)
	}

	store := recent.NewStore(appDataDir, settings.RecentFiles.StoreOptions())

	b, err := bridge.New(bridge.Options{
		Files:      files,
		Recent:     store,
		Resolver:   resolver,
		SaveFolder: settings.Notebooks.SaveFolder(),
		Logger:     logger,
	})
	if err != nil {
		return nil, err
	}

	logger.Infof("bridge ready: app data %s, settings %s, recent capacity %d",
		appDataDir, settingsPath, store.Capacity())

	return &app{
		launch:       launch,
		resolver:     resolver,
		appDataDir:   appDataDir,
		settingsPath: settingsPath,
		settings:     settings,
		store:        store,
		bridge:       b,
		logger:       logger,
	}, nil
}

// settingsFile returns the configured settings path or the default inside
// appDataDir.
func settingsFile(launch *config.LaunchConfig, appDataDir string) string {
	if launch.SettingsPath != "" {
		return launch.SettingsPath
	}
	return config.DefaultSettingsPath(appDataDir)
}

func (a *app) Close() {
	_ = a.logger.Sync()
	_ = a.logger.Close()
}
