package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"

	"github.com/lcalzada-xor/nettrust/internal/adapters/model"
	mqttbridge "github.com/lcalzada-xor/nettrust/internal/adapters/mqtt"
	"github.com/lcalzada-xor/nettrust/internal/adapters/reporting"
	"github.com/lcalzada-xor/nettrust/internal/adapters/storage"
	"github.com/lcalzada-xor/nettrust/internal/adapters/web"
	webserver "github.com/lcalzada-xor/nettrust/internal/adapters/web/server"
	"github.com/lcalzada-xor/nettrust/internal/config"
	"github.com/lcalzada-xor/nettrust/internal/core/ports"
	"github.com/lcalzada-xor/nettrust/internal/core/services/detection"
	"github.com/lcalzada-xor/nettrust/internal/core/services/scan"
	"github.com/lcalzada-xor/nettrust/internal/telemetry"
)

// Application holds the core components and orchestrates their lifecycle.
type Application struct {
	Config    *config.Config
	Engine    *detection.Engine
	Scans     *scan.Service
	Store     *storage.SQLiteAdapter
	Hub       *web.WSManager
	WebServer *webserver.Server
	Bridge    *mqttbridge.Bridge
	PDF       *reporting.PDFExporter

	mqttClient paho.Client
	logger     *slog.Logger
}

// New creates a new Application instance and bootstraps its components.
func New(cfg *config.Config, logger *slog.Logger) (*Application, error) {
	if logger == nil {
		logger = slog.Default()
	}
	app := &Application{
		Config: cfg,
		PDF:    reporting.NewPDFExporter(),
		logger: logger,
	}

	if err := app.bootstrap(); err != nil {
		app.cleanup()
		return nil, fmt.Errorf("application bootstrap failed: %w", err)
	}
	return app, nil
}

// bootstrap orchestrates the initialization sequence.
func (app *Application) bootstrap() error {
	// 1. Foundation
	telemetry.InitMetrics()

	// 2. Detection
	loader, err := model.NewDirLoader(app.Config.ModelDir)
	if err != nil {
		return err
	}
	app.Hub = web.NewWSManager(app.Config.AllowedOrigins, app.logger)
	app.Engine = detection.NewEngine(loader,
		detection.WithLogger(app.logger),
		detection.WithObserver(telemetry.ProfileMetrics{}),
		detection.WithObserver(app.Hub),
	)

	// 3. History
	var store ports.ScanStore
	if app.Config.DBPath != "" && !app.Config.OneShot() {
		adapter, err := app.initStorage()
		if err != nil {
			return err
		}
		app.Store = adapter
		store = adapter
	}

	app.Scans = scan.NewService(app.Engine, store, app.logger)
	app.Scans.AddPublisher(app.Hub)

	if app.Config.OneShot() {
		return nil
	}

	// 4. Transports
	if app.Config.MQTT.Enabled() {
		if err := app.initMQTT(); err != nil {
			return err
		}
	}

	app.WebServer = webserver.NewServer(app.Config.Addr, webserver.Deps{
		Scans:      app.Scans,
		History:    app.Scans,
		Detector:   app.Engine,
		Hub:        app.Hub,
		PDF:        app.PDF,
		WriteLimit: app.Config.WriteLimit,
		Logger:     app.logger,
	})
	return nil
}

func (app *Application) initStorage() (*storage.SQLiteAdapter, error) {
	if err := os.MkdirAll(filepath.Dir(app.Config.DBPath), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create DB directory: %w", err)
	}

	store, err := storage.NewSQLiteAdapter(app.Config.DBPath)
	if err != nil {
		return nil, fmt.Errorf("failed to init scan history: %w", err)
	}

	if app.Config.Retention > 0 {
		cutoff := time.Now().Add(-app.Config.Retention)
		removed, err := store.PruneBefore(context.Background(), cutoff)
		if err != nil {
			app.logger.Warn("Failed to prune scan history", "error", err)
		} else if removed > 0 {
			app.logger.Info("Pruned scan history", "scans", removed, "before", cutoff.Format(time.RFC3339))
		}
	}
	return store, nil
}

func (app *Application) initMQTT() error {
	m := app.Config.MQTT
	client, err := mqttbridge.Connect(mqttbridge.ClientConfig{
		Broker:   m.Broker,
		ClientID: m.ClientID,
		Username: m.Username,
		Password: m.Password,
	}, app.logger)
	if err != nil {
		return err
	}
	app.mqttClient = client

	app.Bridge = mqttbridge.NewBridge(client, app.Scans, mqttbridge.BridgeConfig{
		ScanTopic:   m.ScanTopic,
		ResultTopic: m.ResultTopic,
		QoS:         1,
	}, app.logger)
	app.Scans.AddPublisher(app.Bridge)
	return nil
}

// Run starts the servers and blocks until ctx is cancelled or one of them fails.
func (app *Application) Run(ctx context.Context) error {
	if app.WebServer == nil {
		return errors.New("application was configured for one-shot mode")
	}
	app.logger.Info("Starting NetTrust components", "model_loaded", app.Engine.IsLoaded())

	errChan := make(chan error, 2)

	go func() {
		if err := app.WebServer.Run(ctx); err != nil {
			errChan <- fmt.Errorf("web server error: %w", err)
		}
	}()

	if app.Bridge != nil {
		go func() {
			if err := app.Bridge.Run(ctx); err != nil {
				errChan <- fmt.Errorf("mqtt bridge error: %w", err)
			}
		}()
	}

	app.logger.Info("NetTrust ready. Press Ctrl+C to terminate.")

	var runErr error
	select {
	case <-ctx.Done():
		app.logger.Info("Termination signal received")
	case runErr = <-errChan:
	}

	if err := app.cleanup(); err != nil && runErr == nil {
		runErr = err
	}
	return runErr
}

func (app *Application) cleanup() error {
	if app.mqttClient != nil {
		app.mqttClient.Disconnect(250)
		app.logger.Info("MQTT client disconnected")
	}
	if app.Store != nil {
		if err := app.Store.Close(); err != nil {
			return fmt.Errorf("close scan history: %w", err)
		}
	}
	return nil
}
