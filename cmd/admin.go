package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/danngalann/astroweather/internal/db"
	"github.com/danngalann/astroweather/internal/logging"
	"github.com/danngalann/astroweather/internal/migrate"
	"github.com/danngalann/astroweather/internal/mqtt"
)

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			logger := logging.New(cfg, version, appName)

			conn, err := db.Open(cfg, logger)
			if err != nil {
				return err
			}
			defer func() {
				if closeErr := db.Close(conn); closeErr != nil {
					logger.Error("db close", "error", closeErr)
				}
			}()

			if err := migrate.Run(conn); err != nil {
				return fmt.Errorf("migrate: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "migrations applied")
			return nil
		},
	}
}

func refreshCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "refresh [slug]",
		Short: "Tell running servers that the weather backend has new data",
		Long:  "Publish a refresh notification on MQTT_TOPIC. Without a slug every cached location is dropped.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if !cfg.MQTTEnabled() {
				return fmt.Errorf("MQTT_BROKER is not set")
			}
			logger := logging.New(cfg, version, appName)

			pub, err := mqtt.NewPublisher(cfg, logger)
			if err != nil {
				return err
			}
			defer pub.Disconnect()

			ctx, cancel := context.WithTimeout(cmd.Context(), 10*time.Second)
			defer cancel()
			if err := pub.Connect(ctx); err != nil {
				return err
			}

			var msg mqtt.RefreshMessage
			if len(args) == 1 {
				msg.Slug = args[0]
			}
			if err := pub.PublishRefresh(msg); err != nil {
				return err
			}
			target := msg.Slug
			if target == "" {
				target = "all locations"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "refresh published for %s\n", target)
			return nil
		},
	}
}
