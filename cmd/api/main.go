package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"

	"alfredoptarigan/intelliapply/internal/config"
	"alfredoptarigan/intelliapply/internal/document"
	"alfredoptarigan/intelliapply/internal/feed"
	"alfredoptarigan/intelliapply/internal/handlers"
	"alfredoptarigan/intelliapply/internal/queue"
	"alfredoptarigan/intelliapply/internal/repositories"
	"alfredoptarigan/intelliapply/internal/services"
)

func main() {
	// Load configuration
	cfg := config.Load()
	log.Println("✅ Config loaded successfully")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize database
	db, err := config.InitDatabase(cfg)
	if err != nil {
		log.Fatalf("❌ Failed to initialize database: %v", err)
	}

	// Change feed and analysis queue. Redis lets several API instances share
	// both; without it everything stays in this process.
	hub := feed.NewHub()
	var publisher feed.Publisher = hub
	var analysisQueue queue.Queue

	if cfg.Redis.URL != "" {
		redisClient, err := queue.NewRedisClient(cfg.Redis.URL)
		if err != nil {
			log.Fatalf("❌ Failed to connect to Redis: %v", err)
		}
		broker := feed.NewRedisBroker(redisClient, hub)
		if err := broker.Start(ctx); err != nil {
			log.Fatalf("❌ Failed to start change feed relay: %v", err)
		}
		publisher = broker
		analysisQueue = queue.NewRedisQueue(redisClient)
		log.Println("✅ Redis queue and change feed ready")
	} else {
		analysisQueue = queue.NewChannelQueue(cfg.Worker.QueueSize)
		log.Println("⚠️  REDIS_URL not set, using in-process queue and change feed")
	}

	// Initialize repositories
	jobRepo := repositories.NewJobRepository(db, publisher)
	profileRepo := repositories.NewProfileRepository(db)
	searchRepo := repositories.NewSearchRepository(db)
	log.Println("✅ Repositories initialized successfully")

	// Initialize Gemini AI
	geminiService, err := services.NewGeminiService(cfg.Gemini.APIKey, cfg.Gemini.Model)
	if err != nil {
		log.Fatalf("❌ Failed to initialize Gemini AI: %v", err)
	}
	log.Println("✅ Gemini AI initialized successfully")

	// Qdrant is optional; prompts fall back to the full resume without it
	var vectorStore services.VectorStore
	if cfg.Qdrant.URL != "" {
		vectorStore, err = services.NewQdrantService(cfg.Qdrant.URL, cfg.Qdrant.APIKey, cfg.Qdrant.Collection)
		if err != nil {
			log.Fatalf("❌ Failed to initialize Qdrant: %v", err)
		}
		if err := vectorStore.InitCollection(ctx); err != nil {
			log.Fatalf("❌ Failed to initialize Qdrant collection: %v", err)
		}
		log.Println("✅ Qdrant initialized successfully")
	} else {
		log.Println("⚠️  QDRANT_URL not set, resume grounding disabled")
	}

	grounder := services.NewGrounder(geminiService, vectorStore, services.NewTextChunker())
	aiService := services.NewAIService(geminiService, grounder, cfg.Worker.RetryMaxAttempts)
	analysisService := services.NewAnalysisService(jobRepo, profileRepo, aiService)

	storageService := services.NewStorageService(cfg.Storage.UploadPath, cfg.Storage.MaxFileSize)
	if err := storageService.EnsureUploadDir(); err != nil {
		log.Fatalf("❌ Failed to create upload directory: %v", err)
	}

	renderer, err := services.NewRenderer(60 * time.Second)
	if err != nil {
		log.Fatalf("❌ Failed to initialize PDF renderer: %v", err)
	}

	sources, err := config.LoadSources(cfg.Scraper.SourcesFile)
	if err != nil {
		log.Fatalf("❌ Failed to load scraper sources: %v", err)
	}
	scraper := services.NewScraperService(sources, cfg.Scraper, services.NewPublicHTTPClient(30*time.Second))
	log.Println("✅ Services initialized successfully")

	// Initialize worker
	worker := services.NewWorker(analysisQueue, analysisService, cfg.Worker.Concurrency)
	worker.Start(ctx)

	// Initialize handlers
	scrapeHandler := handlers.NewScrapeHandler(scraper, jobRepo, cfg.Scraper.Timeout)
	routes := &handlers.Routes{
		Jobs:     handlers.NewJobHandler(jobRepo, worker),
		AI:       handlers.NewAIHandler(aiService, profileRepo, jobRepo),
		Resume:   handlers.NewResumeHandler(aiService, renderer, storageService, document.NewParser()),
		Scrape:   scrapeHandler,
		Profiles: handlers.NewProfileHandler(profileRepo, grounder),
		Searches: handlers.NewSearchHandler(searchRepo),
		Feed:     handlers.NewFeedHandler(hub, 15*time.Second),
	}
	log.Println("✅ Handlers initialized")

	// Create Fiber app. The write timeout stays off so the change feed stream
	// is not cut.
	app := fiber.New(fiber.Config{
		AppName:      "IntelliApply API",
		ReadTimeout:  30 * time.Second,
		BodyLimit:    int(cfg.Storage.MaxFileSize) + 1024*1024,
		ErrorHandler: handlers.ErrorHandler,
	})

	// Middleware
	app.Use(recover.New())
	app.Use(logger.New(logger.Config{
		Format:     "[${time}] ${status} - ${latency} ${method} ${path}\n",
		TimeFormat: "2006-01-02 15:04:05",
	}))

	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
	}))

	// Health check
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status": "healthy",
			"time":   time.Now(),
		})
	})

	routes.Register(app, []byte(cfg.Auth.Secret))

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-quit
		log.Println("\n🛑 Shutting down server...")
		if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
			log.Printf("❌ Server forced to shutdown: %v", err)
		}
		worker.Stop()
		scrapeHandler.Wait()
		cancel()
		if err := analysisQueue.Close(); err != nil {
			log.Printf("⚠️  Failed to close queue: %v", err)
		}
	}()

	// Start server
	addr := fmt.Sprintf(":%s", cfg.Server.Port)
	log.Printf("🚀 Server starting on %s\n", addr)

	if err := app.Listen(addr); err != nil {
		log.Fatalf("❌ Failed to start server: %v", err)
	}
}
