package models

import (
	"encoding/json"
	"net/http"
)

// CaptionRequest is a single image to caption, built per inbound request
type CaptionRequest struct {
	Image    []byte
	MimeType string
	Prompt   string
}

// CaptionResult is what a captioning provider returns on success
type CaptionResult struct {
	Caption string
	Raw     json.RawMessage
}

// CaptionResponse is the JSON body of a successful caption request
type CaptionResponse struct {
	Caption string          `json:"caption"`
	Raw     json.RawMessage `json:"raw"`
}

// ErrorResponse is the JSON body of a failed caption request
type ErrorResponse struct {
	Error string          `json:"error"`
	Raw   json.RawMessage `json:"raw,omitempty"`
}

// RelayError is an error that carries the HTTP status it is reported with
type RelayError struct {
	StatusCode int
	Message    string
	Raw        json.RawMessage
}

func (e *RelayError) Error() string {
	return e.Message
}

// Response returns the JSON body for the error
func (e *RelayError) Response() ErrorResponse {
	return ErrorResponse{Error: e.Message, Raw: e.Raw}
}

func NewBadRequestError(message string) *RelayError {
	return &RelayError{StatusCode: http.StatusBadRequest, Message: message}
}

func NewInternalError(message string) *RelayError {
	return &RelayError{StatusCode: http.StatusInternalServerError, Message: message}
}

func NewBadGatewayError(message string, raw json.RawMessage) *RelayError {
	return &RelayError{StatusCode: http.StatusBadGateway, Message: message, Raw: raw}
}
