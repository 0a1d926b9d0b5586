package handlers

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	fiberSwagger "github.com/swaggo/fiber-swagger"

	_ "buffcomply/dashboard/docs"
	"buffcomply/dashboard/middleware"
	"buffcomply/dashboard/utils"
)

// NewApp builds the fiber application with every route of the dashboard API.
func NewApp(h *ApplicationHandler, corsOrigins string) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:      "Buff Comply Dashboard",
		ErrorHandler: errorHandler,
	})

	if strings.TrimSpace(corsOrigins) == "" {
		corsOrigins = "*"
	}
	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins:  corsOrigins,
		AllowHeaders:  "Origin, Content-Type, Accept, Accept-Language, X-Request-ID",
		ExposeHeaders: "Content-Disposition, X-Request-ID",
	}))
	app.Use(middleware.RequestLogger(h.Logger))
	app.Use(h.Metrics.Handler())

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusOK).JSON(fiber.Map{
			"status":  "ok",
			"message": "Dashboard is healthy",
		})
	})
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(h.Metrics.Registry, promhttp.HandlerOpts{})))
	app.Get("/swagger/*", fiberSwagger.WrapHandler)

	app.Get("/api/scraping", h.ListScrapingResults)

	apiV1 := app.Group("/api/v1")

	// Job routes. compare must be registered before :id.
	apiV1.Get("/jobs", h.ListJobs)
	apiV1.Get("/jobs/compare", h.CompareJobs)
	apiV1.Get("/jobs/:id", h.GetJob)
	apiV1.Get("/jobs/:id/entries", h.ListEntries)
	apiV1.Get("/jobs/:id/tree", h.GetJobTree)
	apiV1.Get("/jobs/:id/export", h.ExportJob)
	apiV1.Post("/jobs/:id/view/required/:keyword", h.ToggleRequiredKeyword)
	apiV1.Delete("/jobs/:id/view", h.ResetView)
	apiV1.Get("/stats", h.GetStats)

	// Submission proxies
	apiV1.Post("/scrape", h.SubmitScrape)
	apiV1.Post("/scrape/validate", h.ValidateScrapeStep)
	apiV1.Post("/google-search", h.SubmitSearch)
	apiV1.Get("/google-search", h.ForwardSearch)
	apiV1.Post("/google-search/validate", h.ValidateSearchStep)

	presets := apiV1.Group("/presets")
	presets.Get("", h.ListPresets)
	presets.Get("/:name", h.GetPreset)
	presets.Put("/:name", h.SavePreset)
	presets.Delete("/:name", h.DeletePreset)

	auth := apiV1.Group("/auth")
	auth.Post("/login", h.Login)
	auth.Post("/register", h.Register)
	auth.Post("/forgot-password", h.ForgotPassword)

	return app
}

// errorHandler renders errors that escaped the handlers in the JSON envelope.
func errorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "Internal server error"
	var fe *fiber.Error
	if errors.As(err, &fe) {
		code = fe.Code
		message = fe.Message
	}
	return utils.RespondWithError(c, code, message)
}
