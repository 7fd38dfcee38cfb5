package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"alfredoptarigan/intelliapply/internal/models"
)

type printRecorder struct {
	pages []string
}

func (p *printRecorder) print(_ context.Context, html string) ([]byte, error) {
	p.pages = append(p.pages, html)
	return []byte(html), nil
}

func sampleResume() *models.ResumeSchema {
	return &models.ResumeSchema{
		PersonalInfo: models.PersonalInfo{Name: "Ada Lovelace", Email: "ada@example.com", Phone: "555-0100"},
		Summary:      "Engineer <who> ships",
		Skills:       map[string][]string{"languages": {"Go", "SQL"}},
		Experience: []models.Experience{{
			Company: "Analytical Engines", Role: "Engineer", Dates: "2020-2024",
			Bullets: []string{"Built the difference engine"},
		}},
		Projects: []models.Project{{
			Name: "Tracker", GitHubURL: "https://github.com/ada/tracker", DemoURL: "https://tracker.dev",
			Bullets: []string{"Tracks jobs"}, Technologies: []string{"Go"},
		}},
	}
}

func TestResumePDF_StandardWhenItFits(t *testing.T) {
	rec := &printRecorder{}
	r, err := newRenderer(rec.print, func([]byte) (int, error) { return 1, nil })
	require.NoError(t, err)

	_, err = r.ResumePDF(context.Background(), sampleResume())
	require.NoError(t, err)
	require.Len(t, rec.pages, 1)

	html := rec.pages[0]
	assert.Contains(t, html, "margin: 0.6in")
	assert.Contains(t, html, "Ada Lovelace")
	assert.Contains(t, html, "ada@example.com | 555-0100")
	assert.Contains(t, html, "Engineer &lt;who&gt; ships")
	assert.Contains(t, html, `href="https://github.com/ada/tracker"`)
	assert.Contains(t, html, `href="https://tracker.dev"`)
	assert.Contains(t, html, "Languages:")
}

func TestResumePDF_SwitchesToCompact(t *testing.T) {
	rec := &printRecorder{}
	r, err := newRenderer(rec.print, func([]byte) (int, error) { return 2, nil })
	require.NoError(t, err)

	out, err := r.ResumePDF(context.Background(), sampleResume())
	require.NoError(t, err)
	require.Len(t, rec.pages, 2)
	assert.Contains(t, string(out), "margin: 0.4in")
}

func TestResumePDF_PageCountFailureKeepsStandard(t *testing.T) {
	rec := &printRecorder{}
	r, err := newRenderer(rec.print, func([]byte) (int, error) { return 0, errors.New("bad pdf") })
	require.NoError(t, err)

	out, err := r.ResumePDF(context.Background(), sampleResume())
	require.NoError(t, err)
	assert.Len(t, rec.pages, 1)
	assert.Contains(t, string(out), "margin: 0.6in")
}

func TestCoverLetterPDF_LineBreaksAndHeader(t *testing.T) {
	rec := &printRecorder{}
	r, err := newRenderer(rec.print, func([]byte) (int, error) { return 1, nil })
	require.NoError(t, err)

	_, err = r.CoverLetterPDF(context.Background(), sampleResume(), "Dear team,\nI <3 Go.\n\nBest")
	require.NoError(t, err)

	html := rec.pages[0]
	assert.Contains(t, html, "Ada Lovelace")
	assert.Contains(t, html, "Dear team,<br/>I &lt;3 Go.<br/><br/>Best")
	assert.False(t, strings.Contains(html, "<3 Go"))
}
