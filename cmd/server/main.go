package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"waterlog/internal/config"
	"waterlog/internal/database"
	"waterlog/internal/handlers"
	"waterlog/internal/middleware"
	"waterlog/internal/models"
	"waterlog/internal/services"
	"waterlog/internal/telemetry"
	"waterlog/internal/websocket"
	"waterlog/pkg/utils"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

func main() {
	log.Println("═══════════════════════════════════════════════════════════════════")
	log.Println("🚀 WATERLOG API SERVER STARTING")
	log.Println("═══════════════════════════════════════════════════════════════════")

	log.Println("📂 Loading configuration...")
	cfg, err := config.Load()
	if err != nil {
		log.Println("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━")
		log.Printf("❌ FATAL ERROR: %v", err)
		log.Println("   Please set it in the environment or .env file")
		log.Println("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━")
		log.Fatal(err)
	}
	log.Printf("✅ Configuration loaded (plant #%d %s, bottle price $%s)", cfg.PlantID, cfg.PlantName, cfg.BottlePrice.StringFixed(2))

	shutdownTelemetry := telemetry.Setup("waterlog-api", cfg.OTLPEndpoint)
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = shutdownTelemetry(ctx)
	}()

	log.Println("🔌 Connecting to database...")
	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Println("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━")
		log.Println("❌ FATAL ERROR: Database connection failed")
		log.Printf("   Error: %v", err)
		log.Println("   This is usually caused by:")
		log.Println("   1. Wrong DATABASE_URL format")
		log.Println("   2. PostgreSQL service is down")
		log.Println("   3. Invalid credentials")
		log.Println("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━")
		log.Fatal(err)
	}
	defer db.Close()

	log.Println("🔄 Running database migrations...")
	if err := database.Migrate(db); err != nil {
		log.Println("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━")
		log.Println("❌ FATAL ERROR: Database migrations failed")
		log.Printf("   Error: %v", err)
		log.Println("━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━")
		log.Fatal(err)
	}

	log.Println("🌱 Seeding database with initial data...")
	if err := database.SeedUsers(db); err != nil {
		log.Fatalf("❌ FATAL ERROR: User seeding failed: %v", err)
	}
	if cfg.SeedDemoData {
		if err := database.SeedDemoData(db); err != nil {
			log.Fatalf("❌ FATAL ERROR: Demo data seeding failed: %v", err)
		}
		log.Println("✅ Demo data seeded")
	}

	// Push notifications are optional: base64 credentials (cloud) win over a local file
	var fcmService *services.FCMService
	if cfg.FirebaseBase64 != "" {
		fcmService, err = services.NewFCMServiceFromBase64(cfg.FirebaseBase64)
		if err != nil {
			log.Printf("⚠️  Failed to initialize FCM from base64: %v (push notifications disabled)", err)
			fcmService = nil
		} else {
			log.Println("✅ Firebase Cloud Messaging initialized from base64 credentials")
		}
	} else if _, statErr := os.Stat(cfg.FirebaseFile); statErr == nil {
		fcmService, err = services.NewFCMService(cfg.FirebaseFile)
		if err != nil {
			log.Printf("⚠️  Failed to initialize FCM from file: %v (push notifications disabled)", err)
			fcmService = nil
		} else {
			log.Println("✅ Firebase Cloud Messaging initialized from file")
		}
	} else {
		log.Println("⚠️  No Firebase credentials found (push notifications disabled)")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	wsHub := websocket.NewHub()
	go wsHub.Run(ctx)
	log.Println("✅ WebSocket hub started")

	r := chi.NewRouter()

	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization", "X-Request-ID"},
		ExposedHeaders:   []string{"Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		utils.Success(w, map[string]interface{}{
			"status":     "ok",
			"plant_id":   cfg.PlantID,
			"ws_clients": wsHub.GetClientCount(),
		})
	})

	r.Post("/api/v1/auth/login", handlers.Login(db, cfg.JWTSecret, cfg.AccessTokenTTL))

	// WebSocket authenticates with ?token= because browsers cannot set headers on upgrade
	r.Get("/ws", websocket.HandleWebSocket(wsHub, cfg.JWTSecret))

	r.Group(func(r chi.Router) {
		r.Use(middleware.Auth(cfg.JWTSecret))

		r.Get("/api/v1/auth/me", handlers.Me(db))

		r.Route("/api/v1/routes", func(r chi.Router) {
			r.Get("/", handlers.ListRoutes(db))
			r.Post("/checkout", handlers.CheckoutRoute(db, wsHub))
			r.Get("/{id}", handlers.GetRoute(db))
			r.Post("/{id}/checkin", handlers.CheckinRoute(db, cfg.BottlePrice, wsHub, fcmService))
			r.With(middleware.RequireRole(models.RoleAdmin, models.RoleSupervisor, models.RoleAuditor)).
				Get("/{id}/audit", handlers.GetRouteAudit(db))
		})

		r.Route("/api/v1/resources", func(r chi.Router) {
			r.Get("/drivers", handlers.GetDrivers(db))
			r.Get("/trucks", handlers.GetTrucks(db))

			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireRole(models.RoleAdmin))
				r.Post("/drivers", handlers.CreateDriver(db))
				r.Post("/trucks", handlers.CreateTruck(db))
			})
		})

		clientRoutes := func(r chi.Router) {
			r.Get("/", handlers.GetClients(db))
			r.Post("/", handlers.CreateClient(db))
			r.Put("/{id}", handlers.UpdateClient(db))
		}
		r.Route("/clients", clientRoutes)
		r.Route("/api/v1/clients", clientRoutes)

		r.Route("/api/v1/reports", func(r chi.Router) {
			r.Get("/kpis", handlers.GetKPIs(db))
			r.Get("/trends/daily", handlers.GetDailyTrends(db))
			r.Get("/trucks/performance", handlers.GetTruckPerformance(db))
			r.Get("/drivers/performance", handlers.GetDriverPerformance(db))
			r.Get("/status/distribution", handlers.GetStatusDistribution(db))
			r.Get("/monthly/summary", handlers.GetMonthlySummary(db))
			r.Get("/manifest.pdf", handlers.GetManifestPDF(db, cfg.PlantName))
		})

		r.Route("/api/v1/debts", func(r chi.Router) {
			r.Use(middleware.RequireRole(models.RoleAdmin, models.RoleSupervisor))
			r.Get("/", handlers.GetDebts(db))
			r.Post("/{id}/resolve", handlers.ResolveDebt(db))
		})

		r.Post("/api/v1/devices/fcm-token", handlers.RegisterFCMToken(db))
	})

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           otelhttp.NewHandler(r, "waterlog-api"),
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Println("═══════════════════════════════════════════════════════════════════")
		log.Printf("✅ Server listening on port %s", cfg.Port)
		log.Println("═══════════════════════════════════════════════════════════════════")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("❌ Server failed: %v", err)
		}
	}()

	<-ctx.Done()
	log.Println("🛑 Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("⚠️  Graceful shutdown failed: %v", err)
	}
	log.Println("👋 Server stopped")
}
