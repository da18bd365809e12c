package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"caption-relay/config"
	"caption-relay/llm"
	"caption-relay/metrics"
	"caption-relay/models"
	"caption-relay/utils"

	"github.com/apex/log"
)

const (
	MsgNoImage          = "No image provided"
	MsgMissingAPIKey    = "API key is not configured"
	MsgTimeout          = "Generative API request timed out"
	MsgUnexpectedShape  = "Unexpected Generative API response"
	MsgGenericFailure   = "Failed to generate caption"
	msgUpstreamTemplate = "Generative API error (%d): %s"
)

// CaptionService relays one image per call to the captioning provider.
// It holds no per-request state and is safe for concurrent use.
type CaptionService struct {
	client        llm.Client
	timeout       time.Duration
	defaultPrompt string
}

func NewCaptionService(client llm.Client, cfg *config.Config) *CaptionService {
	prompt := cfg.DefaultPrompt
	if prompt == "" {
		prompt = config.DefaultPrompt
	}
	return &CaptionService{
		client:        client,
		timeout:       cfg.RequestTimeout,
		defaultPrompt: prompt,
	}
}

// GenerateCaption captions req.Image. Every failure is returned as a
// *models.RelayError carrying the HTTP status to report.
func (s *CaptionService) GenerateCaption(ctx context.Context, req models.CaptionRequest) (*models.CaptionResponse, error) {
	if len(req.Image) == 0 {
		metrics.CaptionRequestsTotal.WithLabelValues(metrics.ResultBadRequest).Inc()
		return nil, models.NewBadRequestError(MsgNoImage)
	}
	if strings.TrimSpace(req.Prompt) == "" {
		req.Prompt = s.defaultPrompt
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	fields := log.Fields{
		"request_id": utils.RequestIDFromContext(ctx),
		"source":     s.client.SourceName(),
		"mime_type":  req.MimeType,
		"bytes":      len(req.Image),
	}

	start := time.Now()
	result, err := s.client.Caption(ctx, req)
	elapsed := time.Since(start)

	if err != nil {
		relayErr, label := classify(ctx, err)
		metrics.CaptionRequestsTotal.WithLabelValues(label).Inc()
		metrics.CaptionDurationSeconds.WithLabelValues(label).Observe(elapsed.Seconds())
		log.WithFields(fields).
			WithField("status", relayErr.StatusCode).
			WithField("duration_ms", elapsed.Milliseconds()).
			WithError(err).
			Error("caption.generate.failed")
		return nil, relayErr
	}

	metrics.CaptionRequestsTotal.WithLabelValues(metrics.ResultSuccess).Inc()
	metrics.CaptionDurationSeconds.WithLabelValues(metrics.ResultSuccess).Observe(elapsed.Seconds())
	log.WithFields(fields).
		WithField("duration_ms", elapsed.Milliseconds()).
		WithField("caption_length", len(result.Caption)).
		Info("caption.generate.success")

	return &models.CaptionResponse{Caption: result.Caption, Raw: result.Raw}, nil
}

// classify maps a provider error to the status and message reported to the
// caller, plus the metrics result label.
func classify(ctx context.Context, err error) (*models.RelayError, string) {
	var relayErr *models.RelayError
	var apiErr *llm.APIError
	var shapeErr *llm.ResponseShapeError

	switch {
	case errors.As(err, &relayErr):
		return relayErr, metrics.ResultError
	case errors.Is(err, llm.ErrMissingAPIKey):
		return models.NewInternalError(MsgMissingAPIKey), metrics.ResultMisconfigured
	case errors.Is(err, llm.ErrTimeout),
		errors.Is(err, context.DeadlineExceeded),
		errors.Is(err, context.Canceled):
		return models.NewInternalError(MsgTimeout), metrics.ResultTimeout
	case errors.As(err, &apiErr):
		return models.NewBadGatewayError(fmt.Sprintf(msgUpstreamTemplate, apiErr.StatusCode, apiErr.Body), nil), metrics.ResultUpstreamError
	case errors.As(err, &shapeErr):
		return models.NewBadGatewayError(MsgUnexpectedShape, shapeErr.Raw), metrics.ResultBadResponse
	}

	if ctx.Err() != nil {
		return models.NewInternalError(MsgTimeout), metrics.ResultTimeout
	}

	msg := err.Error()
	if msg == "" {
		msg = MsgGenericFailure
	}
	return models.NewInternalError(msg), metrics.ResultError
}
