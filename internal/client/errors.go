package client

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
)

var (
	// ErrInFlight is returned when a workflow slot already has a request out.
	ErrInFlight = errors.New("request already in flight")
	// ErrPrecondition is returned when a workflow is started without its inputs.
	ErrPrecondition = errors.New("precondition failed")
)

const unknownError = "An unknown error occurred."

// APIError is a non-2xx response from the backend.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return e.Message
}

// ErrorMessage extracts the human readable message from an error response.
// The detail field is sometimes a JSON document of its own carrying a message.
func ErrorMessage(status int, body []byte) string {
	var envelope struct {
		Detail json.RawMessage `json:"detail"`
	}
	if err := json.Unmarshal(body, &envelope); err == nil && len(envelope.Detail) > 0 && string(envelope.Detail) != "null" {
		var detail string
		if err := json.Unmarshal(envelope.Detail, &detail); err != nil {
			// structured detail, e.g. a validation error list
			return string(envelope.Detail)
		}
		if detail != "" {
			var inner struct {
				Message string `json:"message"`
			}
			if err := json.Unmarshal([]byte(detail), &inner); err == nil && inner.Message != "" {
				return inner.Message
			}
			return detail
		}
	}

	if text := http.StatusText(status); text != "" {
		return text
	}
	return unknownError
}

// messageOf is the text shown to the user for err.
func messageOf(err error) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Message
	}
	if err == nil || strings.TrimSpace(err.Error()) == "" {
		return unknownError
	}
	return err.Error()
}
