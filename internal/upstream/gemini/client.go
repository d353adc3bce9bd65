package gemini

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

type ObserverFunc func(endpoint string, status int, duration time.Duration)

type Option func(*Client)

type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	observer   ObserverFunc
}

// Error is a non-2xx reply from the Gemini API. Status carries the symbolic
// code ("NOT_FOUND", "RESOURCE_EXHAUSTED") when the body was parseable.
type Error struct {
	StatusCode int
	Status     string
	Message    string
}

func (e *Error) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("gemini request failed with status %d: %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("gemini request failed with status %d", e.StatusCode)
}

// Part is one element of a multimodal request: either text or inline binary
// data, never both.
type Part struct {
	Text       string      `json:"text,omitempty"`
	InlineData *InlineData `json:"inlineData,omitempty"`
}

type InlineData struct {
	MIMEType string `json:"mimeType"`
	Data     []byte `json:"data"`
}

func TextPart(text string) Part {
	return Part{Text: text}
}

func DataPart(mimeType string, data []byte) Part {
	return Part{InlineData: &InlineData{MIMEType: mimeType, Data: data}}
}

type ThinkingConfig struct {
	ThinkingBudget int `json:"thinkingBudget"`
}

// GenerationConfig is serialized with temperature always present so an
// explicit zero reaches the API instead of falling back to the model default.
type GenerationConfig struct {
	Temperature      float64         `json:"temperature"`
	ResponseMIMEType string          `json:"responseMimeType,omitempty"`
	ThinkingConfig   *ThinkingConfig `json:"thinkingConfig,omitempty"`
}

type requestContent struct {
	Role  string `json:"role"`
	Parts []Part `json:"parts"`
}

type generateContentRequest struct {
	Contents         []requestContent  `json:"contents"`
	GenerationConfig *GenerationConfig `json:"generationConfig,omitempty"`
}

func WithObserver(observer ObserverFunc) Option {
	return func(c *Client) {
		c.observer = observer
	}
}

func New(baseURL, apiKey string, httpClient *http.Client, opts ...Option) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     strings.TrimSpace(apiKey),
		httpClient: httpClient,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	return c
}

// GenerateContentStream opens a streaming generateContent call. The returned
// Stream owns the response body; callers must Close it.
func (c *Client) GenerateContentStream(ctx context.Context, model string, parts []Part, genCfg GenerationConfig) (*Stream, error) {
	started := time.Now()
	statusCode := 0
	defer func() { c.observe("stream_generate_content", statusCode, time.Since(started)) }()

	payload, err := json.Marshal(generateContentRequest{
		Contents:         []requestContent{{Role: "user", Parts: parts}},
		GenerationConfig: &genCfg,
	})
	if err != nil {
		return nil, err
	}

	url := fmt.Sprintf("%s/v1beta/models/%s:streamGenerateContent?alt=sse", c.baseURL, model)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "text/event-stream")
	req.Header.Set("x-goog-api-key", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	statusCode = resp.StatusCode

	if resp.StatusCode != http.StatusOK {
		defer resp.Body.Close()
		body, _ := io.ReadAll(resp.Body)
		return nil, decodeError(resp.StatusCode, body)
	}
	return newStream(resp.Body), nil
}

// CheckModels probes the models listing as a readiness signal.
func (c *Client) CheckModels(ctx context.Context) error {
	started := time.Now()
	statusCode := 0
	defer func() { c.observe("models", statusCode, time.Since(started)) }()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/v1beta/models", nil)
	if err != nil {
		return err
	}
	req.Header.Set("x-goog-api-key", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	statusCode = resp.StatusCode

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return decodeError(resp.StatusCode, body)
	}
	return nil
}

func (c *Client) observe(endpoint string, status int, duration time.Duration) {
	if c.observer != nil {
		c.observer(endpoint, status, duration)
	}
}

func decodeError(statusCode int, body []byte) *Error {
	var parsed struct {
		Error struct {
			Code    int    `json:"code"`
			Message string `json:"message"`
			Status  string `json:"status"`
		} `json:"error"`
	}
	if err := json.Unmarshal(body, &parsed); err == nil && parsed.Error.Message != "" {
		return &Error{StatusCode: statusCode, Status: parsed.Error.Status, Message: parsed.Error.Message}
	}
	return &Error{StatusCode: statusCode, Message: truncateBody(string(body))}
}

func truncateBody(s string) string {
	s = strings.TrimSpace(s)
	if len(s) <= 4096 {
		return s
	}
	return s[:4096] + "..."
}
