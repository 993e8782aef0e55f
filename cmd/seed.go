/*
Copyright © 2023 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"context"
	"fmt"
	"time"

	gonanoid "github.com/matoous/go-nanoid/v2"
	"github.com/samber/lo"
	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"

	"github.com/StephRoos/ladtc-sub000/db"
	"github.com/StephRoos/ladtc-sub000/models"
)

func seedCmd() *cli.Command {
	return &cli.Command{
		Name:  "seed",
		Usage: "Fill the database with demo events and posts",
		Description: `Inserts a handful of upcoming calendar events, registrations and
blog posts, dated relative to today, so the feed has something to show
during development.`,
		Flags: append(databaseFlags(),
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

			if !ctx.Bool("yes") {
				ok, err := confirm(fmt.Sprintf("Insert demo data into %s?", databaseConfig(cfg).String()))
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

			return seed(ctx.Context, database, time.Now())
		},
	}
}

// at returns the given hour of the day that is days after now
func at(now time.Time, days, hour, minute int) time.Time {
	y, m, d := now.AddDate(0, 0, days).Date()
	return time.Date(y, m, d, hour, minute, 0, 0, time.UTC)
}

func demoEvents(now time.Time) []models.RawEvent {
	return []models.RawEvent{
		{
			Title:           "Fractionné sur piste",
			Description:     lo.ToPtr("10 x 400 m, récupération 1 min"),
			Date:            at(now, 2, 18, 30),
			Location:        "Stade Fallon",
			Type:            models.EventTypeTraining,
			Difficulty:      lo.ToPtr("intermediate"),
			MaxParticipants: lo.ToPtr(25),
		},
		{
			Title:    "Sortie longue du dimanche",
			Date:     at(now, 5, 9, 0),
			Location: "Forêt de Soignes",
			Type:     models.EventTypeTraining,
		},
		{
			Title:       "Barbecue de printemps",
			Description: lo.ToPtr("Apportez vos grillades"),
			Date:        at(now, 12, 12, 0),
			Location:    "Club house",
			Type:        models.EventTypeSocial,
		},
		{
			Title:           "Stage en Ardennes",
			Date:            at(now, 30, 8, 0),
			Location:        "La Roche-en-Ardenne",
			Type:            models.EventTypeCamp,
			Difficulty:      lo.ToPtr("advanced"),
			MaxParticipants: lo.ToPtr(12),
		},
		{
			Title:    "Cross du club",
			Date:     at(now, -20, 10, 0),
			Location: "Parc de Woluwe",
			Type:     models.EventTypeRace,
		},
	}
}

func demoPosts(now time.Time) []models.Post {
	return []models.Post{
		{
			Title:         "20 km de Bruxelles",
			Slug:          "20-km-de-bruxelles",
			Excerpt:       lo.ToPtr("On court ensemble, rendez-vous au Cinquantenaire"),
			Category:      models.CategoryRace,
			Published:     true,
			EventDate:     lo.ToPtr(at(now, 8, 10, 0)),
			EventLocation: lo.ToPtr("Parc du Cinquantenaire"),
		},
		{
			Title:            "Trail des Lacs",
			Slug:             "trail-des-lacs",
			Category:         models.CategoryTrail,
			Published:        true,
			FeaturedImageUrl: lo.ToPtr("/images/trail-des-lacs.jpg"),
			EventDate:        lo.ToPtr(at(now, 21, 9, 30)),
		},
		{
			Title:     "Assemblée générale",
			Slug:      "assemblee-generale",
			Category:  models.CategoryClubLife,
			Published: false,
			EventDate: lo.ToPtr(at(now, 15, 19, 0)),
		},
		{
			Title:     "Résultats du cross",
			Slug:      "resultats-du-cross",
			Category:  models.CategoryResults,
			Published: true,
		},
	}
}

// seed inserts the demo fixtures, registering a few members on the first
// event
func seed(ctx context.Context, database *db.DB, now time.Time) error {
	eventIds := make([]string, 0)
	for _, event := range demoEvents(now) {
		id, err := database.CreateEvent(ctx, event)
		if err != nil {
			return err
		}
		eventIds = append(eventIds, id)
	}

	for _, post := range demoPosts(now) {
		if _, err := database.CreatePost(ctx, post); err != nil {
			return err
		}
	}

	statuses := []string{models.RegistrationConfirmed, models.RegistrationConfirmed, models.RegistrationWaitlist, models.RegistrationCancelled}
	for _, status := range statuses {
		_, err := database.CreateRegistration(ctx, models.Registration{
			EventId: eventIds[0],
			UserId:  "member-" + gonanoid.Must(8),
			Status:  status,
		})
		if err != nil {
			return err
		}
	}

	log.WithFields(log.Fields{
		"events":        len(eventIds),
		"registrations": len(statuses),
	}).Info("Seeded database")

	return nil
}
