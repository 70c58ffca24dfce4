package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/shehryarbajwa/browserpilot/internal/actionlog"
	"github.com/shehryarbajwa/browserpilot/internal/ai"
	"github.com/shehryarbajwa/browserpilot/internal/api"
	"github.com/shehryarbajwa/browserpilot/internal/browser"
	"github.com/shehryarbajwa/browserpilot/internal/chat"
	"github.com/shehryarbajwa/browserpilot/internal/config"
	"github.com/shehryarbajwa/browserpilot/internal/ratelimit"
	"github.com/shehryarbajwa/browserpilot/internal/session"
	"github.com/shehryarbajwa/browserpilot/internal/store"
	"github.com/shehryarbajwa/browserpilot/internal/task"
)

func main() {
	// Load .env file
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	log.Println("Starting BrowserPilot...")

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	log.Println("✓ Config loaded")

	// In-memory entity store; nothing survives a restart
	st := store.New()
	log.Println("✓ Entity store initialized")

	actions := actionlog.New(cfg.ActionLogCap)
	log.Printf("✓ Action log initialized (cap %d entries)", cfg.ActionLogCap)

	// Simulated page automation backend
	backend := browser.NewSimulator()
	log.Println("✓ Browser simulator initialized")

	sessionMgr := session.NewManager(st, backend, actions, cfg.SessionsPerUser)
	log.Println("✓ Session manager initialized")

	tracker := task.NewTracker(st, actions, cfg.StepDelay, cfg.TasksPerUser)
	log.Printf("✓ Task tracker initialized (step delay %s)", cfg.StepDelay)

	var generator ai.Generator
	if cfg.OpenAIKey != "" {
		generator = ai.NewClient(cfg.OpenAIKey, cfg.OpenAIBase, cfg.OpenAIModel)
		log.Println("✓ Completion client initialized")
	} else {
		generator = ai.NewMockGenerator("")
		log.Println("⚠ No API key set, using mock completion generator")
	}

	chatSvc := chat.NewService(st, generator, actions)
	log.Println("✓ Chat service initialized")

	rateLimiter := ratelimit.NewLimiter(cfg.RequestsPerHour, cfg.RateLimitBurst)
	log.Printf("✓ Rate limiter initialized (%d req/hour per user)", cfg.RequestsPerHour)

	handler := api.NewHandler(st, sessionMgr, tracker, chatSvc, actions)
	router := handler.SetupRoutes(rateLimiter, cfg.RequestsPerHour)
	log.Println("✓ HTTP routes configured")

	srv := &http.Server{
		Addr:         cfg.Addr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in background
	go func() {
		log.Printf("🚀 Server starting on %s", cfg.Addr)
		log.Printf("📍 API endpoints available under /api")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Println("⏳ Shutting down server gracefully...")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("✅ Server stopped cleanly")
}
