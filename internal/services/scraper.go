package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/sync/errgroup"

	"alfredoptarigan/intelliapply/internal/config"
	"alfredoptarigan/intelliapply/internal/models"
)

var ErrNoPosting = errors.New("no job posting found on page")

// maxPageBytes caps how much of a fetched page is parsed.
const maxPageBytes = 2 << 20

type ScrapeQuery struct {
	SearchTerm string
	Location   string
	HoursOld   int
}

type ScraperService interface {
	// Scrape queries every configured board. Failing sources are logged and
	// skipped.
	Scrape(ctx context.Context, q ScrapeQuery) ([]models.ScrapedJob, error)
	ScrapePage(ctx context.Context, pageURL string) (*models.ScrapedJob, error)
}

type scraperService struct {
	sources      []config.Source
	client       *http.Client
	limiter      *HostLimiter
	userAgent    string
	hydrateLimit int
	timeout      time.Duration
}

func NewScraperService(sources []config.Source, cfg config.ScraperConfig, client *http.Client) ScraperService {
	if client == nil {
		client = NewPublicHTTPClient(30 * time.Second)
	}
	hydrateLimit := cfg.HydrateLimit
	if hydrateLimit < 1 {
		hydrateLimit = 1
	}
	return &scraperService{
		sources:      sources,
		client:       client,
		limiter:      NewHostLimiter(cfg.RequestsPerSec, cfg.Burst),
		userAgent:    cfg.UserAgent,
		hydrateLimit: hydrateLimit,
		timeout:      cfg.Timeout,
	}
}

func (s *scraperService) Scrape(ctx context.Context, q ScrapeQuery) ([]models.ScrapedJob, error) {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	var (
		mu  sync.Mutex
		all []models.ScrapedJob
		g   errgroup.Group
	)

	for _, src := range s.sources {
		g.Go(func() error {
			log.Printf("[%s] Running...", src.Name)
			jobs, err := s.scrapeSource(ctx, src, q)
			if err != nil {
				log.Printf("⚠️  [%s] scrape failed: %v", src.Name, err)
				return nil // best effort, siblings keep going
			}
			log.Printf("[%s] found %d postings", src.Name, len(jobs))

			mu.Lock()
			all = append(all, jobs...)
			mu.Unlock()
			return nil
		})
	}

	_ = g.Wait()
	return all, ctx.Err()
}

func (s *scraperService) scrapeSource(ctx context.Context, src config.Source, q ScrapeQuery) ([]models.ScrapedJob, error) {
	searchURL := BuildSearchURL(src.SearchURL, q)

	doc, err := s.fetch(ctx, searchURL)
	if err != nil {
		return nil, err
	}

	jobs := ParseCards(doc, src.Selectors, searchURL)
	if src.Hydrate && src.Selectors.Description != "" {
		s.hydrate(ctx, jobs, src.Selectors.Description)
	}
	return jobs, nil
}

// hydrate fills in descriptions from each posting's own page.
func (s *scraperService) hydrate(ctx context.Context, jobs []models.ScrapedJob, selector string) {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.hydrateLimit)

	for i := range jobs {
		if jobs[i].Description != "" || jobs[i].JobURL == "" {
			continue
		}
		g.Go(func() error {
			doc, err := s.fetch(gctx, jobs[i].JobURL)
			if err != nil {
				log.Printf("⚠️  Failed to hydrate %s: %v", jobs[i].JobURL, err)
				return nil
			}
			jobs[i].Description = cleanText(doc.Find(selector).First().Text())
			return nil
		})
	}

	_ = g.Wait()
}

func (s *scraperService) ScrapePage(ctx context.Context, pageURL string) (*models.ScrapedJob, error) {
	u, err := url.Parse(pageURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
		return nil, fmt.Errorf("invalid page url %q", pageURL)
	}

	doc, err := s.fetch(ctx, pageURL)
	if err != nil {
		return nil, err
	}

	job := ParsePosting(doc, pageURL)
	if job.Title == "" {
		return nil, ErrNoPosting
	}
	return job, nil
}

func (s *scraperService) fetch(ctx context.Context, target string) (*goquery.Document, error) {
	if err := s.limiter.WaitURL(ctx, target); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, err
	}
	if s.userAgent != "" {
		req.Header.Set("User-Agent", s.userAgent)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch %s: %w", target, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body)
		return nil, fmt.Errorf("fetch %s: unexpected status %d", target, resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(io.LimitReader(resp.Body, maxPageBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", target, err)
	}
	return doc, nil
}

// BuildSearchURL fills the {keywords}, {location} and {seconds} placeholders.
func BuildSearchURL(pattern string, q ScrapeQuery) string {
	hours := q.HoursOld
	if hours <= 0 {
		hours = 24
	}
	return strings.NewReplacer(
		"{keywords}", url.QueryEscape(q.SearchTerm),
		"{location}", url.QueryEscape(q.Location),
		"{seconds}", strconv.Itoa(hours*3600),
	).Replace(pattern)
}

// ParseCards extracts one posting per card. Relative links are resolved
// against base and query strings are dropped.
func ParseCards(doc *goquery.Document, sel config.SourceSelectors, base string) []models.ScrapedJob {
	baseURL, _ := url.Parse(base)

	var jobs []models.ScrapedJob
	doc.Find(sel.Card).Each(func(_ int, card *goquery.Selection) {
		job := models.ScrapedJob{
			Title:    cleanText(card.Find(sel.Title).First().Text()),
			Company:  cleanText(card.Find(sel.Company).First().Text()),
			Location: cleanText(card.Find(sel.Location).First().Text()),
		}
		if href, ok := card.Find(sel.Link).First().Attr("href"); ok {
			job.JobURL = resolveLink(baseURL, href)
		}
		if sel.Description != "" {
			job.Description = cleanText(card.Find(sel.Description).First().Text())
		}
		if job.Title == "" && job.JobURL == "" {
			return
		}
		jobs = append(jobs, job)
	})
	return jobs
}

var (
	titleSelectors = []string{
		".job-details-jobs-unified-top-card__job-title",
		".top-card-layout__title",
		".jobs-details-top-card__job-title",
		".t-24",
	}
	companySelectors = []string{
		".job-details-jobs-unified-top-card__company-name",
		".topcard__org-name-link",
		".job-details-jobs-unified-top-card__primary-description a",
		".jobs-details-top-card__company-url",
	}
	locationSelectors = []string{
		".job-details-jobs-unified-top-card__primary-description span",
		".topcard__flavor--bullet",
		".jobs-details-top-card__bullet",
	}
	descriptionSelectors = []string{
		"#job-details",
		".show-more-less-html__markup",
		".jobs-description__content",
		".jobs-box__html-content",
	}
	placeholderTitles = map[string]bool{
		"linkedin": true, "feed": true, "jobs": true, "home": true, "notifications": true, "messaging": true,
	}
)

// ParsePosting extracts a single posting from its page: board selectors first,
// then JSON-LD JobPosting data, then meta tags and the page headings.
func ParsePosting(doc *goquery.Document, pageURL string) *models.ScrapedJob {
	job := &models.ScrapedJob{
		JobURL:      pageURL,
		Title:       firstText(doc, titleSelectors),
		Company:     firstText(doc, companySelectors),
		Location:    firstText(doc, locationSelectors),
		Description: firstText(doc, descriptionSelectors),
	}

	if ld := jobPostingLD(doc); ld != nil {
		fillEmpty(&job.Title, ld.Title)
		fillEmpty(&job.Company, ld.HiringOrganization.Name)
		fillEmpty(&job.Location, ld.JobLocation.Address.Locality)
		fillEmpty(&job.Description, htmlToText(ld.Description))
	}

	if job.Title == "" {
		if h1 := cleanText(doc.Find("h1").First().Text()); len(h1) > 3 && !strings.Contains(h1, "LinkedIn") {
			job.Title = h1
		}
	}
	if job.Company == "" {
		job.Company = cleanText(doc.Find(`a[href*="/company/"]`).First().Text())
	}
	if job.Title == "" {
		title := metaContent(doc, "og:title")
		if title == "" {
			title = cleanText(doc.Find("title").First().Text())
		}
		job.Title, job.Company = splitPageTitle(title, job.Company)
	}
	if job.Description == "" {
		job.Description = metaContent(doc, "og:description")
	}
	if job.Description == "" {
		job.Description = metaContent(doc, "description")
	}

	if placeholderTitles[strings.ToLower(job.Title)] {
		job.Title = ""
	}
	return job
}

type ldJobPosting struct {
	Type               any    `json:"@type"`
	Title              string `json:"title"`
	Description        string `json:"description"`
	HiringOrganization struct {
		Name string `json:"name"`
	} `json:"hiringOrganization"`
	JobLocation struct {
		Address struct {
			Locality string `json:"addressLocality"`
		} `json:"address"`
	} `json:"jobLocation"`
}

func jobPostingLD(doc *goquery.Document) *ldJobPosting {
	var found *ldJobPosting
	doc.Find(`script[type="application/ld+json"]`).EachWithBreak(func(_ int, s *goquery.Selection) bool {
		raw := []byte(strings.TrimSpace(s.Text()))

		var candidates []ldJobPosting
		if err := json.Unmarshal(raw, &candidates); err != nil {
			var single ldJobPosting
			if err := json.Unmarshal(raw, &single); err != nil {
				return true
			}
			candidates = []ldJobPosting{single}
		}

		for i := range candidates {
			if t, ok := candidates[i].Type.(string); ok && t == "JobPosting" {
				found = &candidates[i]
				return false
			}
		}
		return true
	})
	return found
}

// splitPageTitle handles "Title | Company | Site" and "Title at Company" forms.
func splitPageTitle(title, company string) (string, string) {
	for _, sep := range []string{" | ", " at ", " - "} {
		parts := strings.Split(title, sep)
		if len(parts) < 2 {
			continue
		}
		if company == "" && !strings.Contains(parts[1], "LinkedIn") {
			company = strings.TrimSpace(parts[1])
		}
		return strings.TrimSpace(parts[0]), company
	}
	return strings.TrimSpace(title), company
}

func firstText(doc *goquery.Document, selectors []string) string {
	for _, sel := range selectors {
		if t := cleanText(doc.Find(sel).First().Text()); t != "" {
			return t
		}
	}
	return ""
}

func metaContent(doc *goquery.Document, name string) string {
	sel := fmt.Sprintf(`meta[name="%s"], meta[property="%s"]`, name, name)
	content, _ := doc.Find(sel).First().Attr("content")
	return strings.TrimSpace(content)
}

func htmlToText(s string) string {
	if !strings.Contains(s, "<") {
		return strings.TrimSpace(s)
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(s))
	if err != nil {
		return strings.TrimSpace(s)
	}
	return cleanText(doc.Text())
}

func resolveLink(base *url.URL, href string) string {
	ref, err := url.Parse(strings.TrimSpace(href))
	if err != nil {
		return ""
	}
	if base != nil {
		ref = base.ResolveReference(ref)
	}
	ref.RawQuery = ""
	ref.Fragment = ""
	return ref.String()
}

func fillEmpty(dst *string, v string) {
	if *dst == "" {
		*dst = strings.TrimSpace(v)
	}
}

func cleanText(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
