// Package feed carries row-level change events from the repositories to
// subscribed clients.
package feed

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

type ChangeType string

const (
	Insert ChangeType = "INSERT"
	Update ChangeType = "UPDATE"
	Delete ChangeType = "DELETE"
)

// Change is one insert, update or delete of a row. New is empty for deletes
// and Old is empty for inserts.
type Change struct {
	Type   ChangeType      `json:"type"`
	Table  string          `json:"table"`
	UserID string          `json:"user_id"`
	New    json.RawMessage `json:"new,omitempty"`
	Old    json.RawMessage `json:"old,omitempty"`
	At     time.Time       `json:"at"`
}

// Publisher accepts changes for delivery.
type Publisher interface {
	Publish(ctx context.Context, c Change) error
}

func NewChange(typ ChangeType, table, userID string, newRow, oldRow any) (Change, error) {
	c := Change{
		Type:   typ,
		Table:  table,
		UserID: userID,
		At:     time.Now().UTC(),
	}
	if newRow != nil {
		b, err := json.Marshal(newRow)
		if err != nil {
			return Change{}, fmt.Errorf("failed to marshal new row: %w", err)
		}
		c.New = b
	}
	if oldRow != nil {
		b, err := json.Marshal(oldRow)
		if err != nil {
			return Change{}, fmt.Errorf("failed to marshal old row: %w", err)
		}
		c.Old = b
	}
	return c, nil
}

// Nop discards every change.
type Nop struct{}

func (Nop) Publish(context.Context, Change) error { return nil }
