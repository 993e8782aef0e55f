/*
Copyright © 2023 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"encoding/json"
	"io"
	"os"

	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"

	"github.com/StephRoos/ladtc-sub000/feeds"
)

func upcomingCmd() *cli.Command {
	return &cli.Command{
		Name:  "upcoming",
		Usage: "Print one page of the upcoming events feed",
		Description: `Builds the upcoming events feed from the database and prints the
page as a single JSON object on stdout, exactly as served on /api/events.

Use a tool like jq to process the output. Prints all log messages to stderr.`,
		Flags: append(databaseFlags(),
			&cli.IntFlag{
				Name:  "page",
				Value: feeds.DefaultPage,
				Usage: "Page number, starting at 1",
			},
			&cli.IntFlag{
				Name:  "per-page",
				Value: feeds.DefaultPerPage,
				Usage: "Items per page, at most 50",
			},
			&cli.StringFlag{
				Name:  "type",
				Usage: "Only list one event type: TRAINING, RACE, CAMP or SOCIAL",
			},
		),
		Action: func(ctx *cli.Context) error {
			// Keep stdout for the feed
			log.SetOutput(os.Stderr)

			cfg, err := loadConfig(ctx)
			if err != nil {
				return err
			}

			database, err := openDatabase(ctx, cfg)
			if err != nil {
				return err
			}
			defer database.Close()

			req := feeds.NewRequest(ctx.Int("page"), ctx.Int("per-page"), ctx.String("type"))
			resp, err := feeds.NewAggregator(database).Upcoming(ctx.Context, req)
			if err != nil {
				return err
			}

			return printJson(ctx.App.Writer, resp)
		},
	}
}

// printJson writes v as a single JSON line
func printJson(w io.Writer, v any) error {
	return json.NewEncoder(w).Encode(v)
}
