package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Source describes one job board the scraper can query. SearchURL may contain
// the placeholders {keywords}, {location} and {seconds}.
type Source struct {
	Name      string          `yaml:"name"`
	SearchURL string          `yaml:"search_url"`
	Selectors SourceSelectors `yaml:"selectors"`
	Hydrate   bool            `yaml:"hydrate"`
}

type SourceSelectors struct {
	Card        string `yaml:"card"`
	Title       string `yaml:"title"`
	Company     string `yaml:"company"`
	Location    string `yaml:"location"`
	Link        string `yaml:"link"`
	Description string `yaml:"description"`
}

type sourcesFile struct {
	Sources []Source `yaml:"sources"`
}

// DefaultSources is used when no sources file exists.
func DefaultSources() []Source {
	return []Source{
		{
			Name:      "linkedin",
			SearchURL: "https://www.linkedin.com/jobs-guest/jobs/api/seeMoreJobPostings/search?keywords={keywords}&location={location}&f_TPR=r{seconds}",
			Selectors: SourceSelectors{
				Card:        "li",
				Title:       ".base-search-card__title",
				Company:     ".base-search-card__subtitle",
				Location:    ".job-search-card__location",
				Link:        "a.base-card__full-link",
				Description: ".show-more-less-html__markup",
			},
			Hydrate: true,
		},
	}
}

func LoadSources(path string) ([]Source, error) {
	raw, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		log.Printf("⚠️  Scraper sources file %s not found, using defaults\n", path)
		return DefaultSources(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read sources file: %w", err)
	}

	var f sourcesFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("failed to parse sources file: %w", err)
	}

	if err := validateSources(f.Sources); err != nil {
		return nil, err
	}
	return f.Sources, nil
}

func validateSources(sources []Source) error {
	if len(sources) == 0 {
		return errors.New("sources file defines no sources")
	}

	var problems []string
	for i, s := range sources {
		if strings.TrimSpace(s.Name) == "" {
			problems = append(problems, fmt.Sprintf("sources[%d]: name is required", i))
		}
		if strings.TrimSpace(s.SearchURL) == "" {
			problems = append(problems, fmt.Sprintf("sources[%d]: search_url is required", i))
		}
		if strings.TrimSpace(s.Selectors.Card) == "" {
			problems = append(problems, fmt.Sprintf("sources[%d]: selectors.card is required", i))
		}
	}
	if len(problems) > 0 {
		return fmt.Errorf("invalid sources file: %s", strings.Join(problems, "; "))
	}
	return nil
}
