package client

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorMessage(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		want   string
	}{
		{"plain detail", 404, `{"detail":"Job not found or access denied."}`, "Job not found or access denied."},
		{"nested message", 500, `{"detail":"{\"message\":\"quota exceeded\"}"}`, "quota exceeded"},
		{"structured detail", 422, `{"detail":[{"loc":["body"]}]}`, `[{"loc":["body"]}]`},
		{"empty detail", 502, `{"detail":""}`, "Bad Gateway"},
		{"not json", 503, `<html>down</html>`, "Service Unavailable"},
		{"nothing at all", 599, ``, "An unknown error occurred."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ErrorMessage(tt.status, []byte(tt.body)))
		})
	}
}

func TestMessageOf(t *testing.T) {
	wrapped := fmt.Errorf("list jobs: %w", &APIError{Status: 401, Message: "Invalid token."})

	assert.Equal(t, "Invalid token.", messageOf(wrapped))
	assert.Equal(t, "dial tcp: refused", messageOf(errors.New("dial tcp: refused")))
	assert.Equal(t, unknownError, messageOf(nil))
}
