/*
Copyright © 2023 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/cqroot/prompt"
	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"

	"github.com/StephRoos/ladtc-sub000/db"
)

func tidyCmd() *cli.Command {
	return &cli.Command{
		Name:  "tidy",
		Usage: "Tidy up the database",
		Description: `Tidy up the database by removing events that are old.

		Remove events that took place more than --retention-days ago,
		together with their registrations. Blog posts are kept.`,
		Flags: append(databaseFlags(),
			&cli.IntFlag{
				Name:    "retention-days",
				Value:   365,
				Usage:   "Keep past events for this many days",
				EnvVars: []string{"LADTC_RETENTION_DAYS"},
			},
			&cli.BoolFlag{
				Name:    "yes",
				Aliases: []string{"y"},
				Usage:   "Do not ask for confirmation",
			},
		),
		Action: func(ctx *cli.Context) error {
			cfg, err := loadConfig(ctx)
			if err != nil {
				return err
			}

			cutoff := db.RetentionCutoff(time.Now(), cfg.Tidy.RetentionDays)
			if !ctx.Bool("yes") {
				ok, err := confirm(fmt.Sprintf("Delete events before %s?", cutoff.Format(time.DateOnly)))
				if err != nil {
					return err
				}
				if !ok {
					fmt.Println("Aborted")
					return nil
				}
			}

			database, err := openDatabase(ctx, cfg)
			if err != nil {
				return err
			}
			defer database.Close()

			_, err = tidy(ctx.Context, database, cfg.Tidy.RetentionDays)
			return err
		},
	}
}

// tidy removes events older than the retention period, used by the tidy
// command and the scheduled job in serve
func tidy(ctx context.Context, database *db.DB, retentionDays int) (int64, error) {
	cutoff := db.RetentionCutoff(time.Now(), retentionDays)

	deleted, err := database.Tidy(ctx, cutoff)
	if err != nil {
		log.WithFields(log.Fields{
			"error": err,
		}).Error("Error tidying database")
		return 0, err
	}

	log.WithFields(log.Fields{
		"deleted": deleted,
		"before":  cutoff.Format(time.RFC3339),
	}).Info("Tidied database")

	return deleted, nil
}

func confirm(question string) (bool, error) {
	answer, err := prompt.New().Ask(question + " (yes/no)").Input("no")
	if err != nil {
		return false, err
	}
	answer = strings.ToLower(strings.TrimSpace(answer))
	return answer == "y" || answer == "yes", nil
}
