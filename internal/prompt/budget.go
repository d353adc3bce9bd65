package prompt

import (
	"fmt"
	"strings"
)

// initialPromptKeys are the only variables short enough to ride along as a
// transcription hint. Groq caps the prompt field at roughly 896 characters,
// so transcript-scale variables must never be included here.
var initialPromptKeys = []string{"context", "previous_context"}

// BuildInitialPrompt assembles the hint passed to single-shot transcription
// from the request variables. The second return reports whether any hint
// material was present.
func BuildInitialPrompt(vars map[string]any) (string, bool) {
	parts := make([]string, 0, len(initialPromptKeys))
	for _, key := range initialPromptKeys {
		value, ok := vars[key]
		if !ok || value == nil {
			continue
		}
		text := strings.TrimSpace(stringify(value))
		if text == "" {
			continue
		}
		parts = append(parts, text)
	}
	if len(parts) == 0 {
		return "", false
	}
	return strings.Join(parts, " "), true
}

func stringify(value any) string {
	if s, ok := value.(string); ok {
		return s
	}
	return fmt.Sprint(value)
}
