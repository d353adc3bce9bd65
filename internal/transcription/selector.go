package transcription

import (
	"log/slog"
	"strings"
)

// FallbackObserver counts dispatches that fell through to the default
// provider because the identifier matched nothing.
type FallbackObserver interface {
	IncDispatchFallback()
}

type Selector struct {
	multimodal Provider
	singleShot Provider
	logger     *slog.Logger
	observer   FallbackObserver
}

func NewSelector(multimodal, singleShot Provider, logger *slog.Logger, observer FallbackObserver) *Selector {
	return &Selector{
		multimodal: multimodal,
		singleShot: singleShot,
		logger:     logger,
		observer:   observer,
	}
}

// Select routes by substring so versioned identifiers like
// "gemini-2.5-flash-preview-05-20" or "whisper-large-v3" keep matching
// without registry updates. Multimodal rules win when both would match.
func (s *Selector) Select(identifier string) Provider {
	id := strings.ToLower(identifier)
	switch {
	case strings.Contains(id, "gemini"), strings.Contains(id, "google"):
		return s.multimodal
	case strings.Contains(id, "whisper"), strings.Contains(id, "groq"):
		return s.singleShot
	default:
		s.logger.Warn("unknown model identifier, using default provider",
			"model", identifier, "provider", s.multimodal.Name())
		if s.observer != nil {
			s.observer.IncDispatchFallback()
		}
		return s.multimodal
	}
}
