package main

import (
	"log"

	"campus/backend/config"
	"campus/backend/engine"
	"campus/backend/middleware"
	"campus/backend/routes"
	"campus/backend/store"
	"campus/backend/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Error loading config: %v", err)
	}

	// Initialize database
	db, err := utils.InitDB(cfg)
	if err != nil {
		log.Fatalf("Error initializing database: %v", err)
	}

	st := store.NewGormStore(db)
	if err := st.Migrate(); err != nil {
		log.Fatalf("Error migrating database: %v", err)
	}

	// Initialize logger
	logger := utils.InitLogger()

	// Engine wiring: simulated gateway, completion notifications to
	// the application log.
	gateway := &engine.SimulatedGateway{Delay: cfg.SettlementDelay}
	machine := engine.NewEnrollmentMachine(st, gateway)
	progress := engine.NewProgressTracker(st, &engine.LogNotifier{Logger: logger}, cfg.CompletionThreshold)
	assignments := engine.NewAssignmentTracker(st)

	// Create Fiber app
	app := fiber.New()

	// Middleware
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
	}))
	app.Use(middleware.LoggingMiddleware(logger))

	// Setup routes
	routes.SetupRoutes(app, st, machine, progress, assignments, cfg)

	// Start server
	log.Fatal(app.Listen(":" + cfg.ServerPort))
}
