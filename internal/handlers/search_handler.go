package handlers

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"alfredoptarigan/intelliapply/internal/middleware"
	"alfredoptarigan/intelliapply/internal/models"
	"alfredoptarigan/intelliapply/internal/repositories"
)

type SearchHandler struct {
	searchRepo repositories.SearchRepository
}

func NewSearchHandler(searchRepo repositories.SearchRepository) *SearchHandler {
	return &SearchHandler{searchRepo: searchRepo}
}

// HandleList handles GET /searches
func (h *SearchHandler) HandleList(c *fiber.Ctx) error {
	searches, err := h.searchRepo.ListByUser(c.UserContext(), middleware.UserID(c))
	if err != nil {
		return serverError(c, "Failed to load searches.", err)
	}
	if searches == nil {
		searches = []models.Search{}
	}
	return c.JSON(searches)
}

// HandleCreate handles POST /searches
func (h *SearchHandler) HandleCreate(c *fiber.Ctx) error {
	var search models.Search
	if err := c.BodyParser(&search); err != nil {
		return detail(c, fiber.StatusBadRequest, "Invalid request payload")
	}
	if strings.TrimSpace(search.SearchTerm) == "" {
		return detail(c, fiber.StatusBadRequest, "search_term is required")
	}
	if search.ExperienceLevel != "" && !search.ExperienceLevel.Valid() {
		return detail(c, fiber.StatusBadRequest, "Invalid experience_level.")
	}

	search.ID = uuid.Nil
	search.UserID = middleware.UserID(c)
	if err := h.searchRepo.Create(c.UserContext(), &search); err != nil {
		return serverError(c, "Failed to save search.", err)
	}
	return c.Status(fiber.StatusCreated).JSON(search)
}

// HandleDelete handles DELETE /searches/:id
func (h *SearchHandler) HandleDelete(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return detail(c, fiber.StatusBadRequest, "Invalid search id.")
	}

	err = h.searchRepo.Delete(c.UserContext(), middleware.UserID(c), id)
	if errors.Is(err, repositories.ErrNotFound) {
		return detail(c, fiber.StatusNotFound, "Search not found.")
	}
	if err != nil {
		return serverError(c, "Failed to delete search.", err)
	}
	return ok(c, "Search deleted.")
}
