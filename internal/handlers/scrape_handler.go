package handlers

import (
	"context"
	"errors"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"

	"alfredoptarigan/intelliapply/internal/middleware"
	"alfredoptarigan/intelliapply/internal/models"
	"alfredoptarigan/intelliapply/internal/repositories"
	"alfredoptarigan/intelliapply/internal/services"
)

type ScrapeHandler struct {
	scraper services.ScraperService
	jobRepo repositories.JobRepository
	timeout time.Duration
	wg      sync.WaitGroup
}

func NewScrapeHandler(scraper services.ScraperService, jobRepo repositories.JobRepository, timeout time.Duration) *ScrapeHandler {
	if timeout <= 0 {
		timeout = 5 * time.Minute
	}
	return &ScrapeHandler{
		scraper: scraper,
		jobRepo: jobRepo,
		timeout: timeout,
	}
}

// HandleTriggerScrape handles POST /trigger-scrape. The scrape runs after the
// response is sent; saved rows reach clients through the change feed.
func (h *ScrapeHandler) HandleTriggerScrape(c *fiber.Ctx) error {
	var req models.ScrapeRequest
	if err := c.BodyParser(&req); err != nil {
		return detail(c, fiber.StatusBadRequest, "Invalid request payload")
	}
	if strings.TrimSpace(req.SearchTerm) == "" {
		return detail(c, fiber.StatusBadRequest, "search_term is required")
	}
	if req.HoursOld <= 0 {
		req.HoursOld = 24
	}

	userID := middleware.UserID(c)
	h.wg.Add(1)
	go func() {
		defer h.wg.Done()
		h.scrapeAndSave(userID, req)
	}()

	return c.Status(fiber.StatusAccepted).JSON(models.StatusResponse{
		Status:  "ok",
		Message: "Scrape-and-save job enqueued.",
	})
}

func (h *ScrapeHandler) scrapeAndSave(userID string, req models.ScrapeRequest) {
	ctx, cancel := context.WithTimeout(context.Background(), h.timeout)
	defer cancel()

	log.Printf("🚀 Scrape started for %q in %q (user %s)\n", req.SearchTerm, req.Location, userID)

	jobs, err := h.scraper.Scrape(ctx, services.ScrapeQuery{
		SearchTerm: req.SearchTerm,
		Location:   req.Location,
		HoursOld:   req.HoursOld,
	})
	if err != nil {
		log.Printf("⚠️  Scrape ended early: %v\n", err)
	}
	if len(jobs) == 0 {
		log.Println("📋 Scrape found no postings")
		return
	}

	saved, err := h.jobRepo.BatchSave(context.Background(), userID, req.SearchID, jobs)
	if err != nil {
		log.Printf("❌ Failed to save scraped jobs: %v\n", err)
		return
	}
	log.Printf("✅ Scrape saved %d new jobs\n", saved)
}

// Wait blocks until background scrapes have finished.
func (h *ScrapeHandler) Wait() {
	h.wg.Wait()
}

// HandleScrapePage handles POST /scrape/page
func (h *ScrapeHandler) HandleScrapePage(c *fiber.Ctx) error {
	var req models.PageScrapeRequest
	if err := c.BodyParser(&req); err != nil {
		return detail(c, fiber.StatusBadRequest, "Invalid request payload")
	}
	if strings.TrimSpace(req.URL) == "" {
		return detail(c, fiber.StatusBadRequest, "url is required")
	}

	job, err := h.scraper.ScrapePage(c.UserContext(), strings.TrimSpace(req.URL))
	if errors.Is(err, services.ErrNoPosting) {
		return detail(c, fiber.StatusUnprocessableEntity, "Could not find a job posting on this page.")
	}
	if errors.Is(err, services.ErrBlockedAddress) {
		return detail(c, fiber.StatusBadRequest, "This address cannot be scraped.")
	}
	if err != nil {
		log.Printf("⚠️  Page scrape failed for %s: %v\n", req.URL, err)
		return detail(c, fiber.StatusBadGateway, "Failed to fetch the page.")
	}

	return c.JSON(job)
}
