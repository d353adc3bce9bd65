package model

type APIError struct {
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
}

type ErrorResponse struct {
	Error     APIError `json:"error"`
	RequestID string   `json:"request_id,omitempty"`
}

type HealthResponse struct {
	OK bool `json:"ok"`
}

type ReadyResponse struct {
	OK          bool   `json:"ok"`
	ServiceName string `json:"service_name,omitempty"`
}

// GenerateRequest is the body of POST /v1/generate. TemplateName
// distinguishes absent (nil, use the configured default) from an explicit
// empty string, which disables prompt templating for the request.
type GenerateRequest struct {
	AudioBase64  string         `json:"audio_base64"`
	ModelName    string         `json:"model_name,omitempty"`
	TemplateName *string        `json:"template_name,omitempty"`
	TemplateVars map[string]any `json:"template_vars,omitempty"`
}

type TemplateInfo struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
}
