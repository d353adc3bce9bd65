package transcription

import "testing"

type fallbackCounter struct {
	count int
}

func (c *fallbackCounter) IncDispatchFallback() { c.count++ }

func TestSelectorRoutesBySubstring(t *testing.T) {
	multimodal := &stubProvider{name: "gemini"}
	singleShot := &stubProvider{name: "groq"}

	cases := []struct {
		identifier   string
		want         Provider
		wantFallback bool
	}{
		{"gemini-2.5-flash-preview-05-20", multimodal, false},
		{"google-experimental", multimodal, false},
		{"whisper-large-v3", singleShot, false},
		{"distil-whisper-large-v3-en", singleShot, false},
		{"groq-default", singleShot, false},
		{"GEMINI-PRO", multimodal, false},
		{"llama-3.1-8b", multimodal, true},
		{"", multimodal, true},
	}

	for _, tc := range cases {
		counter := &fallbackCounter{}
		s := NewSelector(multimodal, singleShot, testLogger(), counter)
		got := s.Select(tc.identifier)
		if got != tc.want {
			t.Fatalf("Select(%q) = %s, want %s", tc.identifier, got.Name(), tc.want.Name())
		}
		if tc.wantFallback && counter.count != 1 {
			t.Fatalf("Select(%q) should count a fallback", tc.identifier)
		}
		if !tc.wantFallback && counter.count != 0 {
			t.Fatalf("Select(%q) should not count a fallback", tc.identifier)
		}
	}
}

func TestSelectorPrefersMultimodalWhenBothMatch(t *testing.T) {
	multimodal := &stubProvider{name: "gemini"}
	singleShot := &stubProvider{name: "groq"}
	s := NewSelector(multimodal, singleShot, testLogger(), nil)

	if got := s.Select("google-whisper-hybrid"); got != multimodal {
		t.Fatalf("Select() = %s, want multimodal", got.Name())
	}
}

func TestSelectorWorksWithoutObserver(t *testing.T) {
	multimodal := &stubProvider{name: "gemini"}
	singleShot := &stubProvider{name: "groq"}
	s := NewSelector(multimodal, singleShot, testLogger(), nil)

	if got := s.Select("mystery-model"); got != multimodal {
		t.Fatalf("Select() = %s, want multimodal fallback", got.Name())
	}
}
