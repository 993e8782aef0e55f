/*
Copyright © 2023 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"
	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"

	"github.com/StephRoos/ladtc-sub000/db"
	"github.com/StephRoos/ladtc-sub000/feeds"
	"github.com/StephRoos/ladtc-sub000/server"
)

// serveCmd represents the serve command
func serveCmd() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "Serve the upcoming events feed",
		Description: `Starts the HTTP server for the upcoming events feed.

Serves the merged feed of calendar events and event blog posts as JSON on
/api/events and as an iCalendar subscription on /api/events.ics. Past events
are tidied away on the configured cron schedule.`,
		Flags: append(databaseFlags(),
			&cli.StringFlag{
				Name:    "host",
				Usage:   "Host to listen on",
				EnvVars: []string{"LADTC_HOST"},
			},
			&cli.IntFlag{
				Name:    "port",
				Aliases: []string{"p"},
				Value:   3000,
				Usage:   "Port to listen on",
				EnvVars: []string{"LADTC_PORT"},
			},
			&cli.StringFlag{
				Name:    "hostname",
				Aliases: []string{"n"},
				Usage:   "Public base URL of the club site, used for calendar links",
				EnvVars: []string{"LADTC_HOSTNAME"},
			},
			&cli.StringFlag{
				Name:    "cors-origins",
				Usage:   "Comma separated origins allowed to call the API",
				EnvVars: []string{"LADTC_CORS_ORIGINS"},
			},
			&cli.DurationFlag{
				Name:    "cache-expiration",
				Value:   30 * time.Second,
				Usage:   "How long API responses are cached, 0 disables the cache",
				EnvVars: []string{"LADTC_CACHE_EXPIRATION"},
			},
			&cli.StringFlag{
				Name:    "tidy-schedule",
				Usage:   "Cron schedule for removing past events, empty disables it",
				EnvVars: []string{"LADTC_TIDY_SCHEDULE"},
			},
			&cli.IntFlag{
				Name:    "retention-days",
				Value:   365,
				Usage:   "Keep past events for this many days",
				EnvVars: []string{"LADTC_RETENTION_DAYS"},
			},
			&cli.BoolFlag{
				Name:    "migrate",
				Usage:   "Run database migrations before serving",
				EnvVars: []string{"LADTC_MIGRATE"},
			},
		),
		Action: func(ctx *cli.Context) error {
			cfg, err := loadConfig(ctx)
			if err != nil {
				return err
			}

			if ctx.Bool("migrate") {
				if err := db.Migrate(databaseConfig(cfg)); err != nil {
					return fmt.Errorf("migration failed: %w", err)
				}
			}

			database, err := openDatabase(ctx, cfg)
			if err != nil {
				return err
			}
			defer database.Close()

			var store feeds.Store = database
			if cfg.Breaker.Enabled {
				store = feeds.NewBreakerStore(database, feeds.BreakerSettings{
					MaxRequests:      cfg.Breaker.MaxRequests,
					Interval:         cfg.Breaker.Interval,
					Timeout:          cfg.Breaker.Timeout,
					FailureThreshold: cfg.Breaker.FailureThreshold,
				})
			}

			app := server.Server(&server.ServerConfig{
				Hostname:        cfg.Server.Hostname,
				Aggregator:      feeds.NewAggregator(store),
				Database:        database,
				CorsOrigins:     cfg.Server.CorsOrigins,
				CacheExpiration: cfg.Server.CacheExpiration,
				CacheSize:       cfg.Server.CacheSize,
				CalendarName:    cfg.Calendar.Name,
				EventDuration:   cfg.Calendar.EventDuration,
			})

			scheduler := cron.New()
			if cfg.Tidy.Schedule != "" {
				_, err := scheduler.AddFunc(cfg.Tidy.Schedule, func() {
					tidy(context.Background(), database, cfg.Tidy.RetentionDays)
				})
				if err != nil {
					return fmt.Errorf("invalid tidy schedule %q: %w", cfg.Tidy.Schedule, err)
				}
				log.WithFields(log.Fields{
					"schedule":       cfg.Tidy.Schedule,
					"retention_days": cfg.Tidy.RetentionDays,
				}).Info("Scheduled database tidy")
			}
			scheduler.Start()

			// Graceful shutdown
			sigCtx, stop := signal.NotifyContext(ctx.Context, os.Interrupt, syscall.SIGTERM)
			defer stop()

			listenErr := make(chan error, 1)
			go func() {
				address := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
				log.WithFields(log.Fields{
					"address": address,
				}).Info("Starting server")
				listenErr <- app.Listen(address)
			}()

			select {
			case err := <-listenErr:
				<-scheduler.Stop().Done()
				return err
			case <-sigCtx.Done():
			}

			log.Info("Gracefully shutting down...")
			<-scheduler.Stop().Done()
			if err := app.ShutdownWithTimeout(60 * time.Second); err != nil {
				return err
			}

			log.Info("Done!")
			return nil
		},
	}
}
