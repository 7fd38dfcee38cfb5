package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"
	"unicode/utf8"

	"google.golang.org/genai"
)

type GeminiService interface {
	GenerateEmbedding(ctx context.Context, text string) ([]float32, error)
	GenerateText(ctx context.Context, prompt string, temperature float32) (string, error)
	GenerateJSON(ctx context.Context, prompt string, temperature float32) (string, error)
	GenerateTextWithRetry(ctx context.Context, prompt string, temperature float32, maxRetries int) (string, error)
}

// embedding input is capped at roughly 10k tokens
const maxEmbedBytes = 40000

// truncateUTF8 cuts s to at most n bytes without splitting a rune.
func truncateUTF8(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}

type geminiService struct {
	client     *genai.Client
	modelName  string
	embedModel string
}

func NewGeminiService(apiKey, modelName string) (GeminiService, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini api key is not configured")
	}

	client, err := genai.NewClient(context.Background(), &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}

	if modelName == "" {
		modelName = "gemini-2.5-flash"
	}

	return &geminiService{
		client:     client,
		modelName:  modelName,
		embedModel: "text-embedding-004",
	}, nil
}

// GenerateEmbedding implements GeminiService.
func (g *geminiService) GenerateEmbedding(ctx context.Context, text string) ([]float32, error) {
	text = truncateUTF8(text, maxEmbedBytes)

	result, err := g.client.Models.EmbedContent(ctx, g.embedModel, genai.Text(text), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to generate embedding: %w", err)
	}

	if result == nil || len(result.Embeddings) == 0 {
		return nil, fmt.Errorf("empty embedding result")
	}

	return result.Embeddings[0].Values, nil
}

// GenerateText implements GeminiService.
func (g *geminiService) GenerateText(ctx context.Context, prompt string, temperature float32) (string, error) {
	return g.generate(ctx, prompt, &genai.GenerateContentConfig{
		Temperature:     &temperature,
		MaxOutputTokens: 8192,
	})
}

// GenerateJSON asks the model for an application/json response body.
func (g *geminiService) GenerateJSON(ctx context.Context, prompt string, temperature float32) (string, error) {
	return g.generate(ctx, prompt, &genai.GenerateContentConfig{
		Temperature:      &temperature,
		MaxOutputTokens:  8192,
		ResponseMIMEType: "application/json",
	})
}

func (g *geminiService) generate(ctx context.Context, prompt string, config *genai.GenerateContentConfig) (string, error) {
	resp, err := g.client.Models.GenerateContent(ctx, g.modelName, genai.Text(prompt), config)
	if err != nil {
		log.Printf("❌ Gemini API error: %v\n", err)
		return "", fmt.Errorf("failed to generate text: %w", err)
	}

	if resp == nil {
		return "", fmt.Errorf("no response generated (nil response)")
	}

	text := resp.Text()
	if text == "" {
		return "", fmt.Errorf("no text content in response")
	}

	return text, nil
}

// GenerateTextWithRetry retries GenerateText with a doubling backoff. Context
// errors end the loop at once.
func (g *geminiService) GenerateTextWithRetry(ctx context.Context, prompt string, temperature float32, maxRetries int) (string, error) {
	return withBackoff(ctx, maxRetries, time.Second, func() (string, error) {
		return g.GenerateText(ctx, prompt, temperature)
	})
}

func withBackoff(ctx context.Context, attempts int, base time.Duration, fn func() (string, error)) (string, error) {
	if attempts < 1 {
		attempts = 1
	}

	var lastErr error
	delay := base
	for attempt := 1; attempt <= attempts; attempt++ {
		out, err := fn()
		if err == nil {
			return out, nil
		}
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return "", err
		}
		lastErr = err

		if attempt == attempts {
			break
		}
		log.Printf("⚠️ Gemini attempt %d/%d failed: %v, retrying in %s", attempt, attempts, err, delay)
		select {
		case <-ctx.Done():
			return "", fmt.Errorf("context cancelled: %w", ctx.Err())
		case <-time.After(delay):
		}
		delay *= 2
	}

	return "", fmt.Errorf("failed after %d attempts: %w", attempts, lastErr)
}
