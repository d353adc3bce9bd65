package prompt

var languageNames = map[string]string{
	"en": "English",
	"es": "Español",
	"pt": "Português",
	"fr": "Français",
	"de": "Deutsch",
}

// NormalizeLanguage maps a short language code in the "language" variable to
// the display name used inside prompts. Unknown codes and non-string values
// pass through unchanged, so applying it twice is safe. The input map is not
// mutated.
func NormalizeLanguage(vars map[string]any) map[string]any {
	out := make(map[string]any, len(vars))
	for k, v := range vars {
		out[k] = v
	}
	code, ok := out["language"].(string)
	if !ok {
		return out
	}
	if name, known := languageNames[code]; known {
		out["language"] = name
	}
	return out
}
