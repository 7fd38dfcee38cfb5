package handlers

import (
	"bufio"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/gofiber/fiber/v2"

	"alfredoptarigan/intelliapply/internal/feed"
	"alfredoptarigan/intelliapply/internal/middleware"
)

type FeedHandler struct {
	hub       *feed.Hub
	heartbeat time.Duration
}

func NewFeedHandler(hub *feed.Hub, heartbeat time.Duration) *FeedHandler {
	if heartbeat <= 0 {
		heartbeat = 15 * time.Second
	}
	return &FeedHandler{hub: hub, heartbeat: heartbeat}
}

// HandleStream handles GET /feed as server-sent events. Each frame carries one
// feed.Change for the authenticated user.
func (h *FeedHandler) HandleStream(c *fiber.Ctx) error {
	userID := middleware.UserID(c)
	changes := h.hub.Subscribe(userID)

	c.Set(fiber.HeaderContentType, "text/event-stream")
	c.Set(fiber.HeaderCacheControl, "no-cache")
	c.Set(fiber.HeaderConnection, "keep-alive")
	c.Set("X-Accel-Buffering", "no")

	c.Context().SetBodyStreamWriter(func(w *bufio.Writer) {
		defer h.hub.Unsubscribe(changes)

		ticker := time.NewTicker(h.heartbeat)
		defer ticker.Stop()

		// the comment line lets clients confirm the stream is open
		if err := writeFrame(w, ": connected\n\n"); err != nil {
			return
		}

		for {
			select {
			case change, open := <-changes:
				if !open {
					return
				}
				payload, err := json.Marshal(change)
				if err != nil {
					log.Printf("⚠️  Failed to encode change: %v\n", err)
					continue
				}
				if err := writeFrame(w, fmt.Sprintf("data: %s\n\n", payload)); err != nil {
					return
				}
			case <-ticker.C:
				if err := writeFrame(w, ": ping\n\n"); err != nil {
					return
				}
			}
		}
	})

	return nil
}

func writeFrame(w *bufio.Writer, frame string) error {
	if _, err := w.WriteString(frame); err != nil {
		return err
	}
	return w.Flush()
}
