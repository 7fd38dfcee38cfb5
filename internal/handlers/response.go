package handlers

import (
	"log"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"alfredoptarigan/intelliapply/internal/models"
)

// detail writes the error envelope every client reads.
func detail(c *fiber.Ctx, status int, message string) error {
	return c.Status(status).JSON(fiber.Map{
		"detail": message,
	})
}

// serverError logs err and hides it behind message.
func serverError(c *fiber.Ctx, message string, err error) error {
	log.Printf("❌ %s %s: %v\n", c.Method(), c.Path(), err)
	return detail(c, fiber.StatusInternalServerError, message)
}

func ok(c *fiber.Ctx, message string) error {
	return c.JSON(models.StatusResponse{Status: "ok", Message: message})
}

func jobIDParam(c *fiber.Ctx) (int64, bool) {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	return id, err == nil && id > 0
}
