// Package status serves the bot's HTTP status API.
package status

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/swagger"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/MuhamadAgungGumelar/wa-quote-bot/internal/modules/status/handlers"
)

type Options struct {
	AppName     string
	CORSOrigins []string
	// Swagger mounts /swagger/*. The docs package must be imported by the
	// binary for the UI to have content.
	Swagger bool
}

type Handlers struct {
	Status   *handlers.StatusHandler
	Products *handlers.ProductHandler
	Rates    *handlers.RatesHandler
	WhatsApp *handlers.WhatsAppHandler
}

// NewApp builds the fiber app with every status route registered.
func NewApp(opts Options, h Handlers) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:               opts.AppName,
		DisableStartupMessage: true,
	})

	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: strings.Join(opts.CORSOrigins, ","),
		AllowMethods: "GET,OPTIONS",
	}))

	if opts.Swagger {
		app.Get("/swagger/*", swagger.HandlerDefault)
	}
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	app.Get("/", h.Status.GetRoot)
	app.Get("/status", h.Status.GetStatus)
	app.Get("/health", h.Status.GetHealth)

	app.Get("/products", h.Products.ListProducts)
	app.Get("/products/search/:query", h.Products.SearchProducts)

	app.Get("/rates", h.Rates.GetRates)

	app.Get("/whatsapp/qr", h.WhatsApp.GetQRCode)

	return app
}
