package main

import (
	"context"
	"log"

	"alfredoptarigan/intelliapply/internal/config"
	"alfredoptarigan/intelliapply/internal/models"
	"alfredoptarigan/intelliapply/internal/services"
)

// Rebuilds the resume passages in Qdrant for every stored profile. Run it after
// changing the chunking parameters or the embedding model.
func main() {
	log.Println("🚀 Starting profile reindex...")

	cfg := config.Load()
	if cfg.Qdrant.URL == "" {
		log.Fatal("❌ QDRANT_URL is required")
	}

	db, err := config.InitDatabase(cfg)
	if err != nil {
		log.Fatalf("❌ Failed to initialize database: %v", err)
	}

	geminiService, err := services.NewGeminiService(cfg.Gemini.APIKey, cfg.Gemini.Model)
	if err != nil {
		log.Fatalf("❌ Failed to initialize Gemini: %v", err)
	}

	store, err := services.NewQdrantService(cfg.Qdrant.URL, cfg.Qdrant.APIKey, cfg.Qdrant.Collection)
	if err != nil {
		log.Fatalf("❌ Failed to initialize Qdrant: %v", err)
	}

	ctx := context.Background()
	if err := store.InitCollection(ctx); err != nil {
		log.Fatalf("❌ Failed to initialize collection: %v", err)
	}

	grounder := services.NewGrounder(geminiService, store, services.NewTextChunker())

	var profiles []models.Profile
	if err := db.WithContext(ctx).Order("created_at").Find(&profiles).Error; err != nil {
		log.Fatalf("❌ Failed to load profiles: %v", err)
	}
	log.Printf("📋 Found %d profiles\n", len(profiles))

	failed := 0
	for i := range profiles {
		p := &profiles[i]
		log.Printf("📄 Indexing %s (%s)\n", p.Name, p.ID)
		if err := grounder.IndexProfile(ctx, p); err != nil {
			log.Printf("❌ Failed: %v\n", err)
			failed++
			continue
		}
	}

	log.Printf("✅ Reindex finished: %d indexed, %d failed\n", len(profiles)-failed, failed)
}
