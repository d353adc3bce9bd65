package transcription

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"escriba/internal/audio"
	"escriba/internal/prompt"
	"escriba/internal/upstream/gemini"
)

type GenerationClient interface {
	GenerateContentStream(ctx context.Context, model string, parts []gemini.Part, genCfg gemini.GenerationConfig) (*gemini.Stream, error)
}

type Renderer interface {
	Render(name string, vars map[string]any) (string, error)
}

// Gemini sends the audio clip and the rendered prompt in a single multimodal
// call and relays the streamed response chunk by chunk.
type Gemini struct {
	client       GenerationClient
	renderer     Renderer
	defaultModel string
	logger       *slog.Logger
}

func NewGemini(client GenerationClient, renderer Renderer, defaultModel string, logger *slog.Logger) *Gemini {
	return &Gemini{
		client:       client,
		renderer:     renderer,
		defaultModel: strings.TrimSpace(defaultModel),
		logger:       logger,
	}
}

func (g *Gemini) Name() string { return "gemini" }

func (g *Gemini) Transcribe(ctx context.Context, req Request) <-chan string {
	return pump(ctx, g.logger, func(ctx context.Context, out chan<- string) {
		g.transcribe(ctx, req, out)
	})
}

func (g *Gemini) transcribe(ctx context.Context, req Request, out chan<- string) {
	model := strings.TrimSpace(req.Model)
	if model == "" {
		model = g.defaultModel
	}

	var rendered string
	if req.Template != "" {
		vars := prompt.NormalizeLanguage(req.Variables)
		text, err := g.renderer.Render(req.Template, vars)
		if err != nil {
			g.logger.Error("template render failed", "template", req.Template, "error", err)
			emit(ctx, out, "Error: "+err.Error())
			return
		}
		rendered = text
	}

	parts := make([]gemini.Part, 0, 2)
	if strings.TrimSpace(req.AudioBase64) != "" {
		clip, err := audio.Decode(req.AudioBase64)
		if err != nil {
			g.logger.Error("audio decode failed", "error", err)
			// Clients match on this exact wording.
			emit(ctx, out, "Error: Error processing audio data: "+err.Error())
			return
		}
		g.logger.Info("audio attached", "mime_type", clip.MIMEType, "bytes", len(clip.Bytes))
		parts = append(parts, gemini.DataPart(clip.MIMEType, clip.Bytes))
	}
	if rendered != "" {
		parts = append(parts, gemini.TextPart(rendered))
	}
	if len(parts) == 0 {
		emit(ctx, out, "Error: No input provided (neither text nor audio)")
		return
	}

	stream, err := g.client.GenerateContentStream(ctx, model, parts, gemini.GenerationConfig{
		Temperature:      0,
		ResponseMIMEType: "text/plain",
		ThinkingConfig:   &gemini.ThinkingConfig{ThinkingBudget: 0},
	})
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return
		}
		g.logger.Error("generate content failed", "model", model, "error", err)
		emit(ctx, out, "Error: "+err.Error())
		return
	}
	defer stream.Close()

	g.logger.Info("streaming generation started", "model", model)
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}
		text, ok := stream.Next()
		if !ok {
			break
		}
		if !emit(ctx, out, text) {
			return
		}
	}
	if err := stream.Err(); err != nil {
		// Mid-stream drops usually mean the peer went away; end quietly.
		g.logger.Warn("generation stream interrupted", "error", err)
	}
}
