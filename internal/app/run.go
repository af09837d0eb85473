package app

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/danngalann/astroweather/internal/config"
	db "github.com/danngalann/astroweather/internal/db"
	httpapi "github.com/danngalann/astroweather/internal/httpapi"
	"github.com/danngalann/astroweather/internal/migrate"
	weather "github.com/danngalann/astroweather/internal/modules/weather"
	weatherviews "github.com/danngalann/astroweather/internal/modules/weather/views"
	"github.com/danngalann/astroweather/internal/mqtt"
)

func Run(ctx context.Context, cfg config.Config) error {
	slog.Info("config loaded",
		"appEnv", cfg.AppEnv,
		"logLevel", cfg.LogLevel.String(),
		"httpAddr", cfg.HTTPAddr,
		"staticDir", cfg.StaticDir,
		"apiURL", cfg.APIURL,
		"upstreamTimeout", cfg.UpstreamTimeout,
		"upstreamRPS", cfg.UpstreamRPS,
		"upstreamBurst", cfg.UpstreamBurst,
		"revalidate", cfg.Revalidate,
		"sqliteDriver", cfg.SQLiteDriver,
		"sqlitePath", cfg.SQLitePath,
		"sqliteMaxOpenConns", cfg.SQLiteMaxOpenConns,
		"sqliteMaxIdleConns", cfg.SQLiteMaxIdleConns,
		"sqliteConnMaxLifetime", cfg.SQLiteConnMaxLifetime,
		"mqttBroker", cfg.MQTTBroker,
		"mqttPort", cfg.MQTTPort,
		"mqttTopic", cfg.MQTTTopic,
	)
	dbConn, err := db.Open(cfg, slog.Default())
	if err != nil {
		return err
	}
	defer func() {
		closeErr := db.Close(dbConn)
		if closeErr != nil {
			slog.Error("db close", "error", closeErr)
		}
	}()

	if err := migrate.Run(dbConn); err != nil {
		return err
	}
	slog.Info("database ready")

	if err := weatherviews.LoadTemplates(); err != nil {
		return err
	}

	// The handler must be in place before Connect: the broker may deliver
	// right after SUBACK.
	var (
		subscriber *mqtt.Subscriber
		refresh    mqtt.RefreshSubscriber
	)
	if cfg.MQTTEnabled() {
		subscriber, err = mqtt.NewSubscriber(cfg, slog.Default())
		if err != nil {
			return err
		}
		refresh = subscriber
	} else {
		slog.Info("mqtt disabled (MQTT_BROKER not set)")
	}

	mux := httpapi.NewMux(dbConn)
	weather.RegisterFeature(mux, dbConn, cfg, refresh, slog.Default())

	if subscriber != nil {
		// Short timeout so a missing broker does not block startup.
		connectCtx, connectCancel := context.WithTimeout(ctx, 5*time.Second)
		err = subscriber.Connect(connectCtx)
		connectCancel()
		if err != nil {
			slog.Warn("mqtt connection failed (continuing without mqtt)", "error", err)
		}
	}

	srv := httpapi.NewServer(cfg, mux)

	errCh := make(chan error, 1)
	go func() {
		slog.Info("http listening", "addr", cfg.HTTPAddr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if subscriber != nil {
		slog.Info("mqtt disconnecting")
		subscriber.Disconnect()
	}

	slog.Info("http shutting down")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}

	err = <-errCh
	if err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	return ctx.Err()
}
