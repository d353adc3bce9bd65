package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"escriba/internal/transcription"
)

type ProviderSelector interface {
	Select(identifier string) transcription.Provider
}

var (
	ErrMissingAudio  = errors.New("request must include audio data")
	ErrAudioRequired = errors.New("audio required for transcription templates")
)

// Request is the generation request before defaults are applied. Template
// nil means "use the configured default"; a pointer to the empty string
// disables templating entirely.
type Request struct {
	AudioBase64 string
	Model       string
	Template    *string
	Variables   map[string]any
}

// Defaults are the values seeded into requests that leave fields unset.
type Defaults struct {
	Model    string
	Template string
	Language string
	Context  string
}

type Service struct {
	selector ProviderSelector
	defaults Defaults
	logger   *slog.Logger
}

func New(selector ProviderSelector, defaults Defaults, logger *slog.Logger) *Service {
	return &Service{
		selector: selector,
		defaults: defaults,
		logger:   logger,
	}
}

// Stream validates the request, applies defaults, dispatches to a provider
// and relays its chunks. A non-nil error can only happen before the first
// chunk; once a stream is returned all failures arrive inside it.
func (s *Service) Stream(ctx context.Context, req Request) (<-chan string, error) {
	if strings.TrimSpace(req.AudioBase64) == "" {
		return nil, ErrMissingAudio
	}

	template := s.defaults.Template
	if req.Template != nil {
		template = strings.TrimSpace(*req.Template)
	}
	// Transcription templates are meaningless without audio. The guard above
	// already rejects empty audio; this one stays independent of it.
	if template == s.defaults.Template && strings.TrimSpace(req.AudioBase64) == "" {
		return nil, ErrAudioRequired
	}

	model := strings.TrimSpace(req.Model)
	if model == "" {
		model = s.defaults.Model
	}

	vars := make(map[string]any, len(req.Variables)+2)
	for k, v := range req.Variables {
		vars[k] = v
	}
	if _, ok := vars["language"]; !ok {
		vars["language"] = s.defaults.Language
	}
	if _, ok := vars["context"]; !ok {
		vars["context"] = s.defaults.Context
	}

	provider := s.selector.Select(model)
	s.logger.Info("dispatching generation request",
		"model", model, "provider", provider.Name(), "template", template)

	upstream := provider.Transcribe(ctx, transcription.Request{
		AudioBase64: req.AudioBase64,
		Model:       model,
		Template:    template,
		Variables:   vars,
	})

	out := make(chan string)
	go s.relay(ctx, upstream, out)
	return out, nil
}

// relay forwards chunks until the provider closes its stream or the client
// goes away. The consumer sees the output channel close either way.
func (s *Service) relay(ctx context.Context, upstream <-chan string, out chan<- string) {
	defer close(out)
	for {
		select {
		case <-ctx.Done():
			s.logger.Info("client disconnected during streaming")
			return
		case chunk, ok := <-upstream:
			if !ok {
				return
			}
			select {
			case out <- chunk:
			case <-ctx.Done():
				s.logger.Info("client disconnected during streaming")
				return
			}
		}
	}
}
