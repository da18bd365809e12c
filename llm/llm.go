package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"caption-relay/models"
)

// Client abstracts a captioning provider used by the relay.
// Implementations must be concurrency-safe; one instance serves all requests.
type Client interface {
	// Caption sends one image and prompt to the provider and returns the
	// trimmed caption with the provider's raw payload. The call must stop
	// waiting as soon as ctx is done.
	Caption(ctx context.Context, req models.CaptionRequest) (*models.CaptionResult, error)
	// SourceName returns a short provider label for logs and metrics (e.g. "Gemini").
	SourceName() string
}

var (
	// ErrMissingAPIKey is returned before any network call when the provider
	// credential is not configured.
	ErrMissingAPIKey = errors.New("API key is not configured")

	// ErrTimeout is returned when the call was abandoned because its context
	// expired or was cancelled.
	ErrTimeout = errors.New("request timed out")
)

// APIError is a non-2xx reply from the provider. Body is kept verbatim.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("API error (status %d): %s", e.StatusCode, e.Body)
}

// ResponseShapeError is a 2xx JSON reply the caption could not be extracted from.
type ResponseShapeError struct {
	Reason string
	Raw    json.RawMessage
}

func (e *ResponseShapeError) Error() string {
	return "unexpected response shape: " + e.Reason
}
