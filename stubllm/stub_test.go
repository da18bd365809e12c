package stubllm

import (
	"context"
	"encoding/json"
	"testing"

	"caption-relay/llm"
	"caption-relay/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCaption_Deterministic(t *testing.T) {
	client := NewClient()
	req := models.CaptionRequest{Image: []byte("pixels"), MimeType: "image/jpeg", Prompt: "Describe"}

	first, err := client.Caption(context.Background(), req)
	require.NoError(t, err)
	second, err := client.Caption(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, first.Caption, second.Caption)
	assert.Contains(t, first.Caption, "6 byte image/jpeg image")

	var payload struct {
		Candidates []struct {
			Content struct {
				Parts []struct {
					Text string `json:"text"`
				} `json:"parts"`
			} `json:"content"`
		} `json:"candidates"`
	}
	require.NoError(t, json.Unmarshal(first.Raw, &payload))
	require.Len(t, payload.Candidates, 1)
	assert.Equal(t, first.Caption, payload.Candidates[0].Content.Parts[0].Text)
}

func TestCaption_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewClient().Caption(ctx, models.CaptionRequest{Image: []byte("x")})
	assert.ErrorIs(t, err, llm.ErrTimeout)
}
