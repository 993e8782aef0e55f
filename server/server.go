package server

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cache"
	"github.com/gofiber/fiber/v2/middleware/compress"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	gonanoid "github.com/matoous/go-nanoid/v2"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"

	"github.com/StephRoos/ladtc-sub000/calendar"
	"github.com/StephRoos/ladtc-sub000/feeds"
)

// Pinger reports whether the database answers
type Pinger interface {
	Ping(ctx context.Context) error
}

type ServerConfig struct {

	// The public base URL of the club site, used for calendar links
	Hostname string

	// The aggregator building the upcoming events feed
	Aggregator *feeds.Aggregator

	// Database checked by /healthz, may be nil
	Database Pinger

	// Comma separated origins allowed by CORS
	CorsOrigins string

	// How long /api responses are cached, zero disables the cache
	CacheExpiration time.Duration

	// Upper bound for the response cache in bytes
	CacheSize int64

	// Calendar export settings
	CalendarName  string
	EventDuration time.Duration
}

const defaultCacheSize = 32 << 20

// Returns a fiber.App instance serving the club's upcoming events
func Server(config *ServerConfig) *fiber.App {

	app := fiber.New(fiber.Config{
		AppName: "ladtc",
	})

	// Middleware to track the latency of each request
	app.Use(func(c *fiber.Ctx) error {
		start := time.Now()

		err := c.Next()

		// Cache hits return before routing
		route := c.Route().Path
		if route == "/" {
			route = c.Path()
		}

		log.WithFields(log.Fields{
			"method":     c.Method(),
			"route":      route,
			"status":     c.Response().StatusCode(),
			"latency":    time.Since(start),
			"request_id": c.Locals("requestid"),
		}).Info("Request")
		return err
	})

	app.Use(requestid.New(requestid.Config{
		Header:     fiber.HeaderXRequestID,
		ContextKey: "requestid",
		Generator: func() string {
			return gonanoid.Must()
		},
	}))
	app.Use(compress.New())

	corsOrigins := config.CorsOrigins
	if corsOrigins == "" {
		corsOrigins = "http://localhost:3000"
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins: corsOrigins,
		AllowMethods: "GET,HEAD,OPTIONS",
		AllowHeaders: "Cache-Control",
	}))

	if config.CacheExpiration > 0 {
		app.Use(responseCache(config))
	}

	app.Get("/api/events", func(c *fiber.Ctx) error {
		// Malformed numbers are clamped by feeds.NewRequest like missing ones
		page, _ := strconv.Atoi(c.Query("page"))
		perPage, _ := strconv.Atoi(c.Query("per_page"))
		req := feeds.NewRequest(page, perPage, c.Query("type"))

		resp, err := config.Aggregator.Upcoming(c.UserContext(), req)
		if err != nil {
			return loadError(c, err)
		}

		return c.Status(fiber.StatusOK).JSON(resp)
	})

	app.Get("/api/events.ics", func(c *fiber.Ctx) error {
		req := feeds.NewRequest(feeds.DefaultPage, feeds.DefaultPerPage, c.Query("type"))

		items, err := config.Aggregator.All(c.UserContext(), req.Type)
		if err != nil {
			return loadError(c, err)
		}

		body := calendar.Export(items, calendar.Options{
			Hostname:        config.Hostname,
			Name:            config.CalendarName,
			DefaultDuration: config.EventDuration,
		})

		c.Set(fiber.HeaderContentType, "text/calendar; charset=utf-8")
		return c.Status(fiber.StatusOK).SendString(body)
	})

	app.Get("/api/event-types", func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusOK).JSON(config.Aggregator.Taxonomy().Describe())
	})

	app.Get("/healthz", func(c *fiber.Ctx) error {
		if config.Database != nil {
			ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
			defer cancel()

			if err := config.Database.Ping(ctx); err != nil {
				log.WithFields(log.Fields{
					"error": err,
				}).Warn("Health check failed")
				return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"status": "unavailable"})
			}
		}
		return c.Status(fiber.StatusOK).JSON(fiber.Map{"status": "ok"})
	})

	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	return app
}

// responseCache caches successful /api GET responses keyed by the full URI.
// The cache keeps at most CacheSize bytes of bodies, evicting the oldest.
func responseCache(config *ServerConfig) fiber.Handler {
	size := config.CacheSize
	if size <= 0 {
		size = defaultCacheSize
	}

	return cache.New(cache.Config{
		Expiration: config.CacheExpiration,
		MaxBytes:   uint(size),
		Next: func(c *fiber.Ctx) bool {
			if c.Method() != fiber.MethodGet {
				return true
			}
			if !strings.HasPrefix(c.Path(), "/api/") {
				return true
			}
			// Also called after the handler, failed loads must not stick
			return c.Response().StatusCode() != fiber.StatusOK
		},
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.Request().URI().String()
		},
	})
}

func loadError(c *fiber.Ctx, err error) error {
	fields := log.Fields{
		"error": err,
		"path":  c.Path(),
	}
	if errors.Is(err, context.Canceled) {
		log.WithFields(fields).Info("Request cancelled while loading events")
	} else {
		log.WithFields(fields).Error("Error loading events")
	}
	return c.Status(fiber.StatusInternalServerError).SendString("could not load events")
}
