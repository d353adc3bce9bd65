package transcription

import (
	"context"
	"log/slog"
)

// Request is one transcription job after defaults were applied. Template is
// empty when prompt templating is disabled for the request.
type Request struct {
	AudioBase64 string
	Model       string
	Template    string
	Variables   map[string]any
}

// Provider turns a request into an ordered stream of text chunks. Once the
// stream exists every failure surfaces as an "Error: ..." chunk rather than
// a Go error, so output already delivered stays valid.
type Provider interface {
	Name() string
	Transcribe(ctx context.Context, req Request) <-chan string
}

const genericErrorChunk = "An unexpected error occurred."

// emit delivers one chunk unless the consumer is gone.
func emit(ctx context.Context, out chan<- string, chunk string) bool {
	select {
	case out <- chunk:
		return true
	case <-ctx.Done():
		return false
	}
}

// pump runs fn in its own goroutine, owning the output channel. A panic in
// fn becomes the generic error chunk instead of taking down the process.
func pump(ctx context.Context, logger *slog.Logger, fn func(ctx context.Context, out chan<- string)) <-chan string {
	out := make(chan string)
	go func() {
		defer close(out)
		defer func() {
			if rec := recover(); rec != nil {
				logger.Error("panic during transcription", "panic", rec)
				emit(ctx, out, genericErrorChunk)
			}
		}()
		fn(ctx, out)
	}()
	return out
}
