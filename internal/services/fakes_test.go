package services

import (
	"context"
	"sync"

	"alfredoptarigan/intelliapply/internal/models"
)

type fakeGemini struct {
	mu      sync.Mutex
	prompts []string
	json    func(prompt string) (string, error)
	text    func(prompt string) (string, error)
	embed   func(text string) ([]float32, error)
}

func (f *fakeGemini) record(prompt string) {
	f.mu.Lock()
	f.prompts = append(f.prompts, prompt)
	f.mu.Unlock()
}

func (f *fakeGemini) GenerateEmbedding(_ context.Context, text string) ([]float32, error) {
	if f.embed == nil {
		return []float32{0.1, 0.2}, nil
	}
	return f.embed(text)
}

func (f *fakeGemini) GenerateText(_ context.Context, prompt string, _ float32) (string, error) {
	f.record(prompt)
	return f.text(prompt)
}

func (f *fakeGemini) GenerateJSON(_ context.Context, prompt string, _ float32) (string, error) {
	f.record(prompt)
	return f.json(prompt)
}

func (f *fakeGemini) GenerateTextWithRetry(ctx context.Context, prompt string, temperature float32, _ int) (string, error) {
	return f.GenerateText(ctx, prompt, temperature)
}

type fakeStore struct {
	replaced map[string][]Passage
	results  []SearchResult
	err      error
}

func (f *fakeStore) InitCollection(context.Context) error { return nil }

func (f *fakeStore) ReplaceProfile(_ context.Context, profileID string, passages []Passage) error {
	if f.replaced == nil {
		f.replaced = make(map[string][]Passage)
	}
	f.replaced[profileID] = passages
	return f.err
}

func (f *fakeStore) SearchProfile(context.Context, string, []float32, int) ([]SearchResult, error) {
	return f.results, f.err
}

func (f *fakeStore) DeleteProfile(_ context.Context, profileID string) error {
	delete(f.replaced, profileID)
	return f.err
}

// staticGrounder returns the profile's resume context untouched.
type staticGrounder struct{}

func (staticGrounder) IndexProfile(context.Context, *models.Profile) error { return nil }
func (staticGrounder) RemoveProfile(context.Context, string) error         { return nil }
func (staticGrounder) Context(_ context.Context, p *models.Profile, _ string) string {
	return p.ResumeContext
}
