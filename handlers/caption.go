package handlers

import (
	"errors"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"strings"

	"caption-relay/api"
	"caption-relay/config"
	"caption-relay/metrics"
	"caption-relay/models"
	"caption-relay/service"
	"caption-relay/utils"

	"github.com/apex/log"
	"github.com/gabriel-vasile/mimetype"
	"github.com/gin-gonic/gin"
)

const (
	msgTooLarge        = "Image is too large"
	msgUnsupportedType = "Unsupported image type"

	// Room for multipart boundaries, part headers and the prompt field on top
	// of the image itself.
	multipartOverhead = 1 << 20
)

type CaptionHandler struct {
	service        *service.CaptionService
	maxUploadBytes int64
}

func NewCaptionHandler(svc *service.CaptionService, cfg *config.Config) *CaptionHandler {
	return &CaptionHandler{
		service:        svc,
		maxUploadBytes: cfg.MaxUploadBytes,
	}
}

// GenerateCaption accepts a multipart upload with an "image" file and an
// optional "prompt" and replies with {caption, raw} or {error[, raw]}.
func (h *CaptionHandler) GenerateCaption(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUploadBytes+multipartOverhead)

	fileHeader, err := c.FormFile(api.FieldImage)
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			h.reject(c, msgTooLarge, err)
			return
		}
		h.reject(c, service.MsgNoImage, err)
		return
	}
	if fileHeader.Size > h.maxUploadBytes {
		h.reject(c, msgTooLarge, nil)
		return
	}

	imageData, ok := readUpload(c, fileHeader)
	if !ok {
		return
	}
	if len(imageData) == 0 {
		h.reject(c, service.MsgNoImage, nil)
		return
	}

	mimeType := resolveMimeType(fileHeader.Header.Get("Content-Type"), imageData)
	if !strings.HasPrefix(mimeType, "image/") {
		h.reject(c, msgUnsupportedType, nil)
		return
	}
	metrics.UploadBytes.Observe(float64(len(imageData)))

	resp, err := h.service.GenerateCaption(c.Request.Context(), models.CaptionRequest{
		Image:    imageData,
		MimeType: mimeType,
		Prompt:   c.PostForm(api.FieldPrompt),
	})
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (h *CaptionHandler) reject(c *gin.Context, message string, cause error) {
	entry := log.WithFields(log.Fields{
		"request_id": utils.RequestIDFromContext(c.Request.Context()),
		"reason":     message,
	})
	if cause != nil {
		entry = entry.WithError(cause)
	}
	entry.Warn("caption.request.rejected")

	metrics.CaptionRequestsTotal.WithLabelValues(metrics.ResultBadRequest).Inc()
	c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: message})
}

// uploadedFile is the part of *multipart.FileHeader the handler reads from.
type uploadedFile interface {
	Open() (multipart.File, error)
}

// readUpload reads an attachment that is known to be present. Failures here
// are server side and are reported as 500 with the underlying message.
func readUpload(c *gin.Context, upload uploadedFile) ([]byte, bool) {
	file, err := upload.Open()
	if err != nil {
		writeError(c, readFailure(c, err))
		return nil, false
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		writeError(c, readFailure(c, err))
		return nil, false
	}
	return data, true
}

func readFailure(c *gin.Context, err error) *models.RelayError {
	log.WithFields(log.Fields{
		"request_id": utils.RequestIDFromContext(c.Request.Context()),
	}).WithError(err).Error("caption.upload.read_failed")
	metrics.CaptionRequestsTotal.WithLabelValues(metrics.ResultError).Inc()
	return models.NewInternalError(err.Error())
}

func writeError(c *gin.Context, err error) {
	var relayErr *models.RelayError
	if !errors.As(err, &relayErr) {
		relayErr = models.NewInternalError(service.MsgGenericFailure)
	}
	c.JSON(relayErr.StatusCode, relayErr.Response())
}

// resolveMimeType returns the declared media type of the part without
// parameters. Parts declared as generic binary, or not declared at all, are
// sniffed from their content.
func resolveMimeType(declared string, data []byte) string {
	if mediaType, _, err := mime.ParseMediaType(declared); err == nil &&
		mediaType != "" && mediaType != "application/octet-stream" {
		return strings.ToLower(mediaType)
	}
	detected := mimetype.Detect(data).String()
	if mediaType, _, err := mime.ParseMediaType(detected); err == nil {
		return mediaType
	}
	return detected
}
