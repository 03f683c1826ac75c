// Package router provides HTTP routing, middleware configuration, and server setup for the mock
// pricing backend
package router

import (
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"log"
	"time"

	"github.com/amirphl/morevans-pricing/app/dto"
	"github.com/amirphl/morevans-pricing/app/handlers"
	"github.com/amirphl/morevans-pricing/app/middleware"
	"github.com/amirphl/morevans-pricing/utils"
	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/adaptor"
	"github.com/gofiber/fiber/v3/middleware/logger"
	"github.com/gofiber/fiber/v3/middleware/recover"
	"github.com/gofiber/fiber/v3/middleware/requestid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Router interface for HTTP routing
type Router interface {
	SetupRoutes()
	Start(address string) error
	GetApp() *fiber.App
}

// FiberRouter implements Router using Fiber v3
type FiberRouter struct {
	app            *fiber.App
	pricingHandler handlers.PricingAdminHandlerInterface
	authMiddleware *middleware.AuthMiddleware
	metrics        *middleware.HTTPMetrics
	gatherer       prometheus.Gatherer
}

// NewFiberRouter creates a new Fiber router. gatherer backs the /metrics endpoint.
func NewFiberRouter(
	pricingHandler handlers.PricingAdminHandlerInterface,
	authMiddleware *middleware.AuthMiddleware,
	metrics *middleware.HTTPMetrics,
	gatherer prometheus.Gatherer,
) Router {
	app := fiber.New(fiber.Config{
		AppName:      "Morevans Pricing Mock API",
		ServerHeader: "morevans-pricing",
		ErrorHandler: errorHandler,
		BodyLimit:    utils.BodyLimit,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
		JSONEncoder:  json.Marshal,
		JSONDecoder:  json.Unmarshal,
	})

	return &FiberRouter{
		app:            app,
		pricingHandler: pricingHandler,
		authMiddleware: authMiddleware,
		metrics:        metrics,
		gatherer:       gatherer,
	}
}

// SetupRoutes configures all application routes
func (r *FiberRouter) SetupRoutes() {
	log.Println("Setting up routes...")

	r.setupMiddleware()

	r.app.Get("/health", r.healthCheck)
	if r.gatherer != nil {
		r.app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(r.gatherer, promhttp.HandlerOpts{})))
	}

	admin := r.app.Group("/admin", r.authMiddleware.AdminAuthenticate())

	admin.Get("/pricing-factors/", r.pricingHandler.ListFactors)
	admin.Post("/pricing-factors/:slug/", r.pricingHandler.CreateFactor)
	admin.Put("/pricing-factors/:slug/:id/", r.pricingHandler.UpdateFactor)
	admin.Delete("/pricing-factors/:id/", r.pricingHandler.DeleteFactor)

	admin.Get("/price-configurations/", r.pricingHandler.ListConfigurations)

	configurations := admin.Group("/pricing/configurations")
	configurations.Post("/", r.pricingHandler.CreateConfiguration)
	configurations.Patch("/set-default/", r.pricingHandler.SetDefaultConfiguration)
	configurations.Put("/:id/", r.pricingHandler.UpdateConfiguration)
	configurations.Delete("/:id/", r.pricingHandler.DeleteConfiguration)

	// Not found handler
	r.app.Use(r.notFoundHandler)

	log.Println("Routes configured successfully")
}

// setupMiddleware configures global middleware
func (r *FiberRouter) setupMiddleware() {
	// Request ID middleware - must be first
	r.app.Use(requestid.New(requestid.Config{
		Header: "X-Request-ID",
		Generator: func() string {
			return generateRequestID()
		},
	}))

	if r.metrics != nil {
		r.app.Use(r.metrics.Metrics())
	}

	r.app.Use(logger.New(logger.Config{
		Format:     `{"time":"${time}","pid":"${pid}","request_id":"${locals:requestid}","level":"info","method":"${method}","path":"${path}","ip":"${ip}","status":${status},"latency":"${latency}","bytes_in":${bytesReceived},"bytes_out":${bytesSent}}` + "\n",
		TimeFormat: time.RFC3339,
		TimeZone:   "UTC",
		Next: func(c fiber.Ctx) bool {
			return c.Path() == "/health" || c.Path() == "/metrics"
		},
	}))

	// Recovery middleware with custom error handling
	r.app.Use(recover.New(recover.Config{
		EnableStackTrace: true,
		StackTraceHandler: func(c fiber.Ctx, e any) {
			log.Printf(`{"time":"%s","level":"error","request_id":"%s","event":"panic","error":"%v","path":"%s","method":"%s"}`,
				utils.UTCNow().Format(time.RFC3339),
				c.Locals("requestid"),
				e,
				c.Path(),
				c.Method(),
			)
		},
	}))
}

// Start starts the HTTP server
func (r *FiberRouter) Start(address string) error {
	log.Printf("Starting server on %s", address)
	return r.app.Listen(address)
}

// GetApp returns the Fiber app instance
func (r *FiberRouter) GetApp() *fiber.App {
	return r.app
}

// Health check endpoint
func (r *FiberRouter) healthCheck(c fiber.Ctx) error {
	return c.JSON(dto.APIResponse{
		Success: true,
		Message: "Service is healthy",
		Data: fiber.Map{
			"status":    "ok",
			"timestamp": utils.UTCNowUnix(),
			"service":   "morevans-pricing-mock",
		},
	})
}

// Not found handler
func (r *FiberRouter) notFoundHandler(c fiber.Ctx) error {
	return c.Status(fiber.StatusNotFound).JSON(dto.APIResponse{
		Success: false,
		Message: "The requested resource was not found",
		Error: dto.ErrorDetail{
			Code: "NOT_FOUND",
			Details: fiber.Map{
				"path":       c.Path(),
				"method":     c.Method(),
				"request_id": c.Locals("requestid"),
			},
		},
	})
}

// Global error handler
func errorHandler(c fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	message := "An internal server error occurred"

	// Retrieve the custom status code if it's a fiber.*Error
	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
		message = e.Message
	}

	log.Printf("Error %d: %v", code, err)

	return c.Status(code).JSON(dto.APIResponse{
		Success: false,
		Message: message,
		Error: dto.ErrorDetail{
			Code: "INTERNAL_ERROR",
			Details: fiber.Map{
				"timestamp":  utils.UTCNowUnix(),
				"request_id": c.Locals("requestid"),
			},
		},
	})
}

// generateRequestID creates a unique request ID
func generateRequestID() string {
	bytes := make([]byte, 8)
	_, _ = rand.Read(bytes)
	return hex.EncodeToString(bytes)
}
