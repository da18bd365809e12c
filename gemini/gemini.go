package gemini

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"caption-relay/llm"
	"caption-relay/metrics"
	"caption-relay/models"

	"github.com/apex/log"
)

type inlineData struct {
	MimeType string `json:"mimeType"`
	Data     string `json:"data"`
}

type part struct {
	Text       string      `json:"text,omitempty"`
	InlineData *inlineData `json:"inlineData,omitempty"`
}

type content struct {
	Role  string `json:"role"`
	Parts []part `json:"parts"`
}

type geminiRequest struct {
	Contents []content `json:"contents"`
}

type geminiResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text,omitempty"`
			} `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

type Client struct {
	apiKey   string
	endpoint string
	http     *http.Client
}

// NewClient returns a Gemini generateContent client. The endpoint is the full
// generateContent URL, model included. Requests carry no client-level timeout;
// callers bound them with the context.
func NewClient(apiKey, endpoint string) *Client {
	return &Client{
		apiKey:   apiKey,
		endpoint: endpoint,
		http:     &http.Client{},
	}
}

func (c *Client) SourceName() string {
	return "Gemini"
}

// Caption sends the prompt and the image as a single user turn and extracts
// candidates[0].content.parts[0].text from the reply.
func (c *Client) Caption(ctx context.Context, req models.CaptionRequest) (*models.CaptionResult, error) {
	if c.apiKey == "" {
		return nil, llm.ErrMissingAPIKey
	}

	body := newCaptionRequest(req.Prompt, req.MimeType, req.Image)
	data, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-goog-api-key", c.apiKey)

	resp, err := c.http.Do(httpReq)
	if err != nil {
		if cancelled(ctx, err) {
			return nil, fmt.Errorf("%w: %w", llm.ErrTimeout, err)
		}
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		if cancelled(ctx, err) {
			return nil, fmt.Errorf("%w: %w", llm.ErrTimeout, err)
		}
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	metrics.ObserveUpstream(c.SourceName(), resp.StatusCode)
	log.WithFields(log.Fields{
		"status": resp.StatusCode,
		"bytes":  len(bodyBytes),
	}).Debug("gemini.generate_content.response")

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &llm.APIError{StatusCode: resp.StatusCode, Body: string(bodyBytes)}
	}

	caption, raw, err := extractCaption(bodyBytes)
	if err != nil {
		return nil, err
	}
	return &models.CaptionResult{Caption: caption, Raw: raw}, nil
}

func newCaptionRequest(prompt, mimeType string, image []byte) geminiRequest {
	return geminiRequest{
		Contents: []content{
			{
				Role: "user",
				Parts: []part{
					{Text: prompt},
					{
						InlineData: &inlineData{
							MimeType: mimeType,
							Data:     base64.StdEncoding.EncodeToString(image),
						},
					},
				},
			},
		},
	}
}

// extractCaption returns the trimmed caption and the payload to hand back to
// the caller. Only valid JSON without a usable first text part is a
// ResponseShapeError; a body that does not parse is a plain error.
func extractCaption(body []byte) (string, json.RawMessage, error) {
	var doc any
	if err := json.Unmarshal(body, &doc); err != nil {
		return "", nil, fmt.Errorf("failed to parse response: %w", err)
	}
	raw := json.RawMessage(body)

	var gr geminiResponse
	if err := json.Unmarshal(body, &gr); err != nil {
		return "", raw, &llm.ResponseShapeError{Reason: err.Error(), Raw: raw}
	}
	if len(gr.Candidates) == 0 {
		return "", raw, &llm.ResponseShapeError{Reason: "no candidates in response", Raw: raw}
	}
	parts := gr.Candidates[0].Content.Parts
	if len(parts) == 0 {
		return "", raw, &llm.ResponseShapeError{Reason: "no parts in first candidate", Raw: raw}
	}
	caption := strings.TrimSpace(parts[0].Text)
	if caption == "" {
		return "", raw, &llm.ResponseShapeError{Reason: "empty text in first part", Raw: raw}
	}
	return caption, raw, nil
}

func cancelled(ctx context.Context, err error) bool {
	return ctx.Err() != nil ||
		errors.Is(err, context.DeadlineExceeded) ||
		errors.Is(err, context.Canceled)
}
