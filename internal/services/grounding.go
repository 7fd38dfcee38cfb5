package services

import (
	"context"
	"fmt"
	"log"

	"alfredoptarigan/intelliapply/internal/models"
)

const (
	groundingChunkSize = 800
	groundingOverlap   = 120
	groundingTopK      = 4
)

// Grounder supplies the resume context an AI prompt is built from.
type Grounder interface {
	IndexProfile(ctx context.Context, profile *models.Profile) error
	RemoveProfile(ctx context.Context, profileID string) error
	Context(ctx context.Context, profile *models.Profile, query string) string
}

type grounder struct {
	gemini  GeminiService
	store   VectorStore
	chunker TextChunker
}

// NewGrounder returns a Grounder backed by store. A nil store disables
// retrieval and every prompt gets the profile's full resume context.
func NewGrounder(gemini GeminiService, store VectorStore, chunker TextChunker) Grounder {
	return &grounder{gemini: gemini, store: store, chunker: chunker}
}

func (g *grounder) IndexProfile(ctx context.Context, profile *models.Profile) error {
	if g.store == nil {
		return nil
	}

	chunks := g.chunker.ChunkText(profile.ResumeContext, groundingChunkSize, groundingOverlap)
	passages := make([]Passage, 0, len(chunks))
	for i, chunk := range chunks {
		embedding, err := g.gemini.GenerateEmbedding(ctx, chunk)
		if err != nil {
			return fmt.Errorf("failed to embed chunk %d: %w", i, err)
		}
		passages = append(passages, Passage{Text: chunk, Embedding: embedding})
	}

	if err := g.store.ReplaceProfile(ctx, profile.ID.String(), passages); err != nil {
		return err
	}

	log.Printf("✅ Indexed profile %s (%d passages)\n", profile.ID, len(passages))
	return nil
}

func (g *grounder) RemoveProfile(ctx context.Context, profileID string) error {
	if g.store == nil {
		return nil
	}
	return g.store.DeleteProfile(ctx, profileID)
}

// Context returns the passages most relevant to query, or the whole resume
// when retrieval is unavailable or finds nothing.
func (g *grounder) Context(ctx context.Context, profile *models.Profile, query string) string {
	if g.store == nil || query == "" {
		return profile.ResumeContext
	}

	embedding, err := g.gemini.GenerateEmbedding(ctx, query)
	if err != nil {
		log.Printf("⚠️  Failed to embed grounding query: %v\n", err)
		return profile.ResumeContext
	}

	results, err := g.store.SearchProfile(ctx, profile.ID.String(), embedding, groundingTopK)
	if err != nil {
		log.Printf("⚠️  Failed to search profile %s: %v\n", profile.ID, err)
		return profile.ResumeContext
	}

	if formatted := FormatGroundingContext(results); formatted != "" {
		return formatted
	}
	return profile.ResumeContext
}
