package api

const (
	CaptionEndpoint = "/api/v1/generate-caption"
	HealthEndpoint  = "/health"
	VersionEndpoint = "/version"
	MetricsEndpoint = "/metrics"
)

// Multipart form fields accepted by CaptionEndpoint.
const (
	FieldImage  = "image"  // file attachment, required
	FieldPrompt = "prompt" // optional, the service supplies a default
)
