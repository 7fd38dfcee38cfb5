package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadSources_MissingFileUsesDefaults(t *testing.T) {
	sources, err := LoadSources(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	require.Len(t, sources, 1)
	assert.Equal(t, "linkedin", sources[0].Name)
}

func TestLoadSources_ParsesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sources.yaml")
	content := `
sources:
  - name: board
    search_url: "https://example.com/search?q={keywords}"
    hydrate: false
    selectors:
      card: ".job"
      title: "h2"
      company: ".company"
      link: "a"
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	sources, err := LoadSources(path)
	require.NoError(t, err)
	require.Len(t, sources, 1)
	assert.Equal(t, "board", sources[0].Name)
	assert.Equal(t, ".job", sources[0].Selectors.Card)
	assert.False(t, sources[0].Hydrate)
}

func TestLoadSources_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"empty", "sources: []\n"},
		{"missing card", "sources:\n  - name: x\n    search_url: http://x\n"},
		{"missing name", "sources:\n  - search_url: http://x\n    selectors:\n      card: li\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "sources.yaml")
			require.NoError(t, os.WriteFile(path, []byte(tt.content), 0o644))
			_, err := LoadSources(path)
			assert.Error(t, err)
		})
	}
}
