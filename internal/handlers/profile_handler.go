package handlers

import (
	"context"
	"errors"
	"log"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"alfredoptarigan/intelliapply/internal/middleware"
	"alfredoptarigan/intelliapply/internal/models"
	"alfredoptarigan/intelliapply/internal/repositories"
	"alfredoptarigan/intelliapply/internal/services"
)

type ProfileHandler struct {
	profileRepo repositories.ProfileRepository
	grounder    services.Grounder
}

func NewProfileHandler(profileRepo repositories.ProfileRepository, grounder services.Grounder) *ProfileHandler {
	return &ProfileHandler{
		profileRepo: profileRepo,
		grounder:    grounder,
	}
}

// HandleList handles GET /profiles
func (h *ProfileHandler) HandleList(c *fiber.Ctx) error {
	profiles, err := h.profileRepo.ListByUser(c.UserContext(), middleware.UserID(c))
	if err != nil {
		return serverError(c, "Failed to load profiles.", err)
	}
	if profiles == nil {
		profiles = []models.Profile{}
	}
	return c.JSON(profiles)
}

// HandleCreate handles POST /profiles
func (h *ProfileHandler) HandleCreate(c *fiber.Ctx) error {
	profile, err := h.bind(c)
	if profile == nil {
		return err
	}
	profile.ID = uuid.New()

	if err := h.profileRepo.Create(c.UserContext(), profile); err != nil {
		return serverError(c, "Failed to save profile.", err)
	}
	h.reindex(profile)

	return c.Status(fiber.StatusCreated).JSON(profile)
}

// HandleUpdate handles PUT /profiles/:id
func (h *ProfileHandler) HandleUpdate(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return detail(c, fiber.StatusBadRequest, "Invalid profile id.")
	}

	profile, err := h.bind(c)
	if profile == nil {
		return err
	}
	profile.ID = id

	err = h.profileRepo.Update(c.UserContext(), profile)
	if errors.Is(err, repositories.ErrNotFound) {
		return detail(c, fiber.StatusNotFound, "Profile not found or access denied.")
	}
	if err != nil {
		return serverError(c, "Failed to update profile.", err)
	}

	saved, err := h.profileRepo.FindByID(c.UserContext(), profile.UserID, id)
	if err != nil {
		return serverError(c, "Failed to update profile.", err)
	}
	h.reindex(saved)

	return c.JSON(saved)
}

// HandleDelete handles DELETE /profiles/:id
func (h *ProfileHandler) HandleDelete(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return detail(c, fiber.StatusBadRequest, "Invalid profile id.")
	}

	err = h.profileRepo.Delete(c.UserContext(), middleware.UserID(c), id)
	if errors.Is(err, repositories.ErrNotFound) {
		return detail(c, fiber.StatusNotFound, "Profile not found or access denied.")
	}
	if err != nil {
		return serverError(c, "Failed to delete profile.", err)
	}

	if err := h.grounder.RemoveProfile(c.UserContext(), id.String()); err != nil {
		log.Printf("⚠️  Failed to drop passages for profile %s: %v\n", id, err)
	}
	return ok(c, "Profile deleted.")
}

func (h *ProfileHandler) bind(c *fiber.Ctx) (*models.Profile, error) {
	var profile models.Profile
	if err := c.BodyParser(&profile); err != nil {
		return nil, detail(c, fiber.StatusBadRequest, "Invalid request payload")
	}
	if strings.TrimSpace(profile.Name) == "" {
		return nil, detail(c, fiber.StatusBadRequest, "name is required")
	}
	if strings.TrimSpace(profile.ResumeContext) == "" {
		return nil, detail(c, fiber.StatusBadRequest, "resume_context is required")
	}
	if profile.ExperienceLevel == "" {
		profile.ExperienceLevel = models.LevelEntry
	}
	if !profile.ExperienceLevel.Valid() {
		return nil, detail(c, fiber.StatusBadRequest, "Invalid experience_level.")
	}

	profile.UserID = middleware.UserID(c)
	return &profile, nil
}

// reindex refreshes the profile's passages without holding up the response.
func (h *ProfileHandler) reindex(profile *models.Profile) {
	p := *profile
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
		defer cancel()
		if err := h.grounder.IndexProfile(ctx, &p); err != nil {
			log.Printf("⚠️  Failed to index profile %s: %v\n", p.ID, err)
		}
	}()
}
