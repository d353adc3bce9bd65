package groq

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
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

type Error struct {
	StatusCode int
	Body       string
}

func (e *Error) Error() string {
	return fmt.Sprintf("groq request failed with status %d", e.StatusCode)
}

// TranscriptionRequest carries one audio clip to the transcriptions endpoint.
// Prompt and Language are optional and omitted from the form when empty.
type TranscriptionRequest struct {
	FileName       string
	FileBytes      []byte
	MIMEType       string
	Model          string
	Prompt         string
	Language       string
	ResponseFormat string
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

// Transcribe performs the single blocking transcription call and returns the
// response body as-is. With ResponseFormat "text" that body is the finished
// transcript.
func (c *Client) Transcribe(ctx context.Context, tr TranscriptionRequest) (string, error) {
	started := time.Now()
	statusCode := 0
	defer func() { c.observe("audio_transcriptions", statusCode, time.Since(started)) }()

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	if err := writer.WriteField("model", tr.Model); err != nil {
		return "", err
	}
	if tr.ResponseFormat != "" {
		if err := writer.WriteField("response_format", tr.ResponseFormat); err != nil {
			return "", err
		}
	}
	if tr.Prompt != "" {
		if err := writer.WriteField("prompt", tr.Prompt); err != nil {
			return "", err
		}
	}
	if tr.Language != "" {
		if err := writer.WriteField("language", tr.Language); err != nil {
			return "", err
		}
	}
	part, err := createAudioPart(writer, tr.FileName, tr.MIMEType)
	if err != nil {
		return "", err
	}
	if _, err := part.Write(tr.FileBytes); err != nil {
		return "", err
	}
	if err := writer.Close(); err != nil {
		return "", err
	}

	url := c.baseURL + "/audio/transcriptions"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body.Bytes()))
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	statusCode = resp.StatusCode

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}

	if resp.StatusCode != http.StatusOK {
		return "", &Error{StatusCode: resp.StatusCode, Body: truncateBody(string(respBody))}
	}

	return string(respBody), nil
}

// createAudioPart is CreateFormFile with the sniffed MIME type instead of
// application/octet-stream.
func createAudioPart(writer *multipart.Writer, fileName, mimeType string) (io.Writer, error) {
	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename=%q`, fileName))
	if mimeType == "" {
		mimeType = "application/octet-stream"
	}
	header.Set("Content-Type", mimeType)
	return writer.CreatePart(header)
}

func (c *Client) observe(endpoint string, status int, duration time.Duration) {
	if c.observer != nil {
		c.observer(endpoint, status, duration)
	}
}

func truncateBody(s string) string {
	s = strings.TrimSpace(s)
	if len(s) <= 4096 {
		return s
	}
	return s[:4096] + "..."
}
