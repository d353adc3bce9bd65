package transcription

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"escriba/internal/audio"
	"escriba/internal/prompt"
	"escriba/internal/upstream/groq"
)

type TranscriptionClient interface {
	Transcribe(ctx context.Context, tr groq.TranscriptionRequest) (string, error)
}

// Groq performs one blocking transcription call and yields the full
// transcript as a single chunk.
type Groq struct {
	client       TranscriptionClient
	apiKey       string
	defaultModel string
	logger       *slog.Logger
}

func NewGroq(client TranscriptionClient, apiKey, defaultModel string, logger *slog.Logger) *Groq {
	return &Groq{
		client:       client,
		apiKey:       strings.TrimSpace(apiKey),
		defaultModel: strings.TrimSpace(defaultModel),
		logger:       logger,
	}
}

func (g *Groq) Name() string { return "groq" }

func (g *Groq) Transcribe(ctx context.Context, req Request) <-chan string {
	return pump(ctx, g.logger, func(ctx context.Context, out chan<- string) {
		g.transcribe(ctx, req, out)
	})
}

func (g *Groq) transcribe(ctx context.Context, req Request, out chan<- string) {
	if g.apiKey == "" {
		g.logger.Error("groq api key not configured")
		emit(ctx, out, "Error: GROQ API key is not configured.")
		return
	}

	model := strings.TrimSpace(req.Model)
	if model == "" {
		model = g.defaultModel
	}

	var initialPrompt string
	if hint, ok := prompt.BuildInitialPrompt(req.Variables); ok {
		initialPrompt = "Context: " + hint
	}
	language, _ := req.Variables["language"].(string)

	clip, err := audio.Decode(req.AudioBase64)
	if err != nil {
		g.logger.Error("audio decode failed", "error", err)
		emit(ctx, out, "Error: "+err.Error())
		return
	}

	g.logger.Info("transcribing audio", "model", model, "mime_type", clip.MIMEType)
	text, err := g.client.Transcribe(ctx, groq.TranscriptionRequest{
		FileName:       "audio." + clip.Extension,
		FileBytes:      clip.Bytes,
		MIMEType:       clip.MIMEType,
		Model:          model,
		Prompt:         initialPrompt,
		Language:       language,
		ResponseFormat: "text",
	})
	if err != nil {
		g.emitFailure(ctx, out, err)
		return
	}
	emit(ctx, out, text)
}

func (g *Groq) emitFailure(ctx context.Context, out chan<- string, err error) {
	var upErr *groq.Error
	var urlErr *url.Error
	switch {
	case errors.Is(err, context.Canceled):
	case errors.As(err, &upErr):
		g.logger.Error("groq transcription failed", "status", upErr.StatusCode, "body", upErr.Body)
		emit(ctx, out, fmt.Sprintf("Error: Groq API error: %d - %s", upErr.StatusCode, upErr.Body))
	case errors.As(err, &urlErr):
		g.logger.Error("groq transcription failed", "error", err)
		emit(ctx, out, "Error: Failed to connect to Groq API.")
	default:
		g.logger.Error("groq transcription failed", "error", err)
		emit(ctx, out, "Error: Failed to process Groq transcription.")
	}
}
