// Package main provides the entry point of the Morevans pricing console and its mock backend
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/amirphl/morevans-pricing/app/handlers"
	"github.com/amirphl/morevans-pricing/app/middleware"
	"github.com/amirphl/morevans-pricing/app/router"
	"github.com/amirphl/morevans-pricing/app/services"
	businessflow "github.com/amirphl/morevans-pricing/business_flow"
	"github.com/amirphl/morevans-pricing/config"
	"github.com/amirphl/morevans-pricing/models"
	"github.com/amirphl/morevans-pricing/repository"
	"github.com/amirphl/morevans-pricing/utils"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"gorm.io/gorm"
)

// MockServer represents the mock backend application
type MockServer struct {
	router    router.Router
	config    *config.ConsoleConfig
	stopFuncs []func()
}

func main() {
	cfg, err := config.LoadConsoleConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	closeLog, err := utils.SetupLogging(cfg.Logging)
	if err != nil {
		log.Fatalf("Failed to set up logging: %v", err)
	}

	err = run(cfg, os.Args[1:], os.Stdin, os.Stdout, os.Stderr)
	_ = closeLog()
	if err != nil {
		if !errors.Is(err, errUsage) {
			fmt.Fprintln(os.Stderr, "error:", businessflow.UserMessage(err))
		}
		os.Exit(1)
	}
}

// run dispatches one console command
func run(cfg *config.ConsoleConfig, args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	if len(args) == 0 {
		printUsage(stderr)
		return errUsage
	}

	cmd, rest := args[0], args[1:]
	switch cmd {
	case "serve-mock":
		return serveMock(cfg)
	case "schema":
		return runSchema(rest, stdout)
	case "account":
		return runAccount(rest, stdout, stderr)
	case "help", "-h", "--help":
		printUsage(stdout)
		return nil
	case "whoami", "list", "factor", "config", "export":
	default:
		fmt.Fprintf(stderr, "unknown command %q\n", cmd)
		printUsage(stderr)
		return errUsage
	}

	console, err := initializeConsole(cfg, stdin, stdout, stderr)
	if err != nil {
		return err
	}
	defer console.writeMetrics()

	switch cmd {
	case "whoami":
		return console.whoami()
	case "list":
		return console.list(context.Background())
	case "factor":
		return console.factor(context.Background(), rest)
	case "config":
		return console.configuration(context.Background(), rest)
	default:
		return console.export(context.Background(), rest)
	}
}

// initializeConsole resolves the session and wires the flows against the configured backend
func initializeConsole(cfg *config.ConsoleConfig, stdin io.Reader, stdout, stderr io.Writer) (*Console, error) {
	tokens := services.NewSessionTokenService(cfg.Session.AccessTokenTTL, cfg.Session.Issuer, cfg.Session.SecretKey)
	session, err := businessflow.ResolveSession(tokens, cfg.API.Token, cfg.Session.Role, cfg.Session.UserID, cfg.Session.SecretKey != "")
	if err != nil {
		return nil, err
	}

	registry := prometheus.NewRegistry()
	api := services.NewPricingAPIClient(cfg.API, services.NewClientMetrics(registry))
	confirmer := &promptConfirmer{in: newLineReader(stdin), out: stderr}

	factorFlow := businessflow.NewPricingFactorFlow(api)
	configFlow := businessflow.NewPricingConfigurationFlow(api)

	return &Console{
		config:     cfg,
		session:    businessflow.NewSessionFlow(session),
		collection: businessflow.NewPricingCollection(api, factorFlow, configFlow, confirmer),
		exportFlow: businessflow.NewPricingExportFlow(),
		confirmer:  confirmer,
		registry:   registry,
		out:        stdout,
		errOut:     stderr,
	}, nil
}

// serveMock runs the mock backend until SIGINT or SIGTERM
func serveMock(cfg *config.ConsoleConfig) error {
	log.Println("Starting Morevans pricing mock backend...")

	app, err := initializeMockServer(cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize mock backend: %w", err)
	}
	defer func() {
		for _, fn := range app.stopFuncs {
			fn()
		}
	}()

	// Setup routes
	app.router.SetupRoutes()

	// Handle shutdown signals
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	errChan := make(chan error, 1)
	go func() {
		errChan <- app.router.Start(cfg.MockServer.Address())
	}()

	select {
	case err := <-errChan:
		return fmt.Errorf("failed to start server: %w", err)
	case <-sigChan:
	}
	log.Println("Shutting down gracefully...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.MockServer.ShutdownTimeout)
	defer shutdownCancel()

	if err := app.router.GetApp().ShutdownWithContext(shutdownCtx); err != nil {
		log.Printf("Error during shutdown: %v", err)
	}

	log.Println("Server stopped")
	return nil
}

// initializeMockServer wires storage, flows, handlers and the router
func initializeMockServer(cfg *config.ConsoleConfig) (*MockServer, error) {
	app := &MockServer{config: cfg}
	ctx := context.Background()

	var factorRepo repository.PricingFactorRepository
	var configurationRepo repository.PricingConfigurationRepository
	switch cfg.MockServer.Storage {
	case config.StoragePostgres:
		db, err := repository.OpenPostgres(ctx, cfg.Database)
		if err != nil {
			return nil, err
		}
		app.stopFuncs = append(app.stopFuncs, func() { closeDatabase(db) })
		if err := repository.AutoMigrate(db); err != nil {
			return nil, fmt.Errorf("failed to migrate database: %w", err)
		}
		factorRepo = repository.NewPricingFactorRepository(db)
		configurationRepo = repository.NewPricingConfigurationRepository(db)
	default:
		factorRepo = repository.NewMemoryPricingFactorRepository()
		configurationRepo = repository.NewMemoryPricingConfigurationRepository()
	}

	if cfg.MockServer.Seed {
		if err := repository.SeedPricingData(ctx, factorRepo, configurationRepo); err != nil {
			return nil, fmt.Errorf("failed to seed pricing data: %w", err)
		}
	}

	secret := cfg.Session.SecretKey
	if secret == "" {
		secret = uuid.NewString() + uuid.NewString()
		log.Println("JWT_SECRET_KEY is not set, tokens are only valid for this run")
	}
	tokens := services.NewSessionTokenService(utils.MockTokenTTL, cfg.Session.Issuer, secret)
	adminToken, err := tokens.Issue(models.Session{UserID: "mock-admin", Role: models.RoleAdmin})
	if err != nil {
		return nil, fmt.Errorf("failed to issue admin token: %w", err)
	}
	log.Printf("Admin token (valid for %s): %s", utils.MockTokenTTL, adminToken)

	registry := prometheus.NewRegistry()
	pricingHandler := handlers.NewPricingAdminHandler(businessflow.NewPricingAdminFlow(factorRepo, configurationRepo))
	app.router = router.NewFiberRouter(
		pricingHandler,
		middleware.NewAuthMiddleware(tokens),
		middleware.NewHTTPMetrics(registry),
		registry,
	)
	return app, nil
}

func closeDatabase(db *gorm.DB) {
	sqlDB, err := db.DB()
	if err != nil {
		log.Printf("Failed to get database handle: %v", err)
		return
	}
	if err := sqlDB.Close(); err != nil {
		log.Printf("Failed to close database: %v", err)
	}
}
