package stubllm

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"

	"caption-relay/llm"
	"caption-relay/models"
)

// Client is a deterministic, no-network captioner intended for CI and local
// end-to-end tests. Its raw payload has the same shape Gemini returns, so the
// full response path is exercised.
type Client struct{}

func NewClient() *Client { return &Client{} }

func (c *Client) SourceName() string { return "Stub" }

func (c *Client) Caption(ctx context.Context, req models.CaptionRequest) (*models.CaptionResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", llm.ErrTimeout, err)
	}

	// Same input, same caption.
	sum := sha256.Sum256(append([]byte(req.Prompt), req.Image...))
	short := hex.EncodeToString(sum[:8])
	caption := fmt.Sprintf("Stub caption %s for a %d byte %s image", short, len(req.Image), req.MimeType)

	out := map[string]any{
		"candidates": []any{
			map[string]any{
				"content": map[string]any{
					"role":  "model",
					"parts": []any{map[string]any{"text": caption}},
				},
				"finishReason": "STOP",
			},
		},
		"modelVersion": "stub",
	}

	b, err := json.Marshal(out)
	if err != nil {
		return nil, err
	}
	return &models.CaptionResult{Caption: caption, Raw: b}, nil
}
