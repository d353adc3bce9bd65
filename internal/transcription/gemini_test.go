package transcription

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"escriba/internal/upstream/gemini"
)

type stubRenderer struct {
	out      string
	err      error
	lastName string
	lastVars map[string]any
}

func (r *stubRenderer) Render(name string, vars map[string]any) (string, error) {
	r.lastName = name
	r.lastVars = vars
	return r.out, r.err
}

func sseChunk(text string) string {
	encoded, _ := json.Marshal(text)
	return `data: {"candidates":[{"content":{"parts":[{"text":` + string(encoded) + `}]}}]}` + "\n\n"
}

func TestGeminiStreamsChunksInOrder(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.Contains(r.URL.Path, "gemini-2.5-flash-preview-05-20") {
			t.Fatalf("unexpected path: %s", r.URL.Path)
		}
		body, _ := io.ReadAll(r.Body)
		var payload map[string]any
		if err := json.Unmarshal(body, &payload); err != nil {
			t.Fatalf("Unmarshal request: %v", err)
		}
		parts := payload["contents"].([]any)[0].(map[string]any)["parts"].([]any)
		if len(parts) != 2 {
			t.Fatalf("expected audio and text parts, got %d", len(parts))
		}
		if _, ok := parts[0].(map[string]any)["inlineData"]; !ok {
			t.Fatal("first part should carry inline audio")
		}
		if parts[1].(map[string]any)["text"] != "Transcribe the audio." {
			t.Fatalf("unexpected text part: %v", parts[1])
		}

		w.Header().Set("Content-Type", "text/event-stream")
		_, _ = io.WriteString(w, sseChunk("He"))
		_, _ = io.WriteString(w, sseChunk("llo"))
		_, _ = io.WriteString(w, sseChunk(" world"))
	}))
	defer ts.Close()

	client := gemini.New(ts.URL, "test-key", ts.Client())
	renderer := &stubRenderer{out: "Transcribe the audio."}
	p := NewGemini(client, renderer, "gemini-2.5-flash-preview-05-20", testLogger())

	chunks := collect(t, p.Transcribe(context.Background(), Request{
		AudioBase64: wavBase64(),
		Template:    "transcription.tmpl",
		Variables:   map[string]any{"language": "en"},
	}))
	if len(chunks) != 3 || chunks[0] != "He" || chunks[1] != "llo" || chunks[2] != " world" {
		t.Fatalf("unexpected chunks: %q", chunks)
	}
	if renderer.lastName != "transcription.tmpl" {
		t.Fatalf("unexpected template name: %q", renderer.lastName)
	}
	if renderer.lastVars["language"] != "English" {
		t.Fatalf("language should be normalized before rendering: %v", renderer.lastVars["language"])
	}
}

func TestGeminiRenderFailureBecomesErrorChunk(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("upstream should not be called")
	}))
	defer ts.Close()

	client := gemini.New(ts.URL, "test-key", ts.Client())
	renderer := &stubRenderer{err: io.ErrUnexpectedEOF}
	p := NewGemini(client, renderer, "gemini-2.5-flash-preview-05-20", testLogger())

	chunks := collect(t, p.Transcribe(context.Background(), Request{
		AudioBase64: wavBase64(),
		Template:    "transcription.tmpl",
	}))
	if len(chunks) != 1 || !strings.HasPrefix(chunks[0], "Error: ") {
		t.Fatalf("unexpected chunks: %q", chunks)
	}
}

func TestGeminiAPIErrorBecomesErrorChunk(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = io.WriteString(w, `{"error":{"code":404,"message":"model not found","status":"NOT_FOUND"}}`)
	}))
	defer ts.Close()

	client := gemini.New(ts.URL, "test-key", ts.Client())
	p := NewGemini(client, &stubRenderer{out: "prompt"}, "gemini-2.5-flash-preview-05-20", testLogger())

	chunks := collect(t, p.Transcribe(context.Background(), Request{
		AudioBase64: wavBase64(),
		Template:    "transcription.tmpl",
	}))
	if len(chunks) != 1 {
		t.Fatalf("unexpected chunks: %q", chunks)
	}
	if chunks[0] != "Error: gemini request failed with status 404: model not found" {
		t.Fatalf("unexpected chunk: %q", chunks[0])
	}
}

func TestGeminiInvalidAudioBecomesErrorChunk(t *testing.T) {
	client := gemini.New("http://localhost:0", "test-key", nil)
	p := NewGemini(client, &stubRenderer{out: "prompt"}, "gemini-2.5-flash-preview-05-20", testLogger())

	chunks := collect(t, p.Transcribe(context.Background(), Request{
		AudioBase64: "bm90IGF1ZGlvIGF0IGFsbA==",
		Template:    "transcription.tmpl",
	}))
	if len(chunks) != 1 || chunks[0] != "Error: Error processing audio data: invalid audio file format" {
		t.Fatalf("unexpected chunks: %q", chunks)
	}
}

func TestGeminiWithoutAnyInputBecomesErrorChunk(t *testing.T) {
	client := gemini.New("http://localhost:0", "test-key", nil)
	p := NewGemini(client, &stubRenderer{}, "gemini-2.5-flash-preview-05-20", testLogger())

	chunks := collect(t, p.Transcribe(context.Background(), Request{}))
	if len(chunks) != 1 || chunks[0] != "Error: No input provided (neither text nor audio)" {
		t.Fatalf("unexpected chunks: %q", chunks)
	}
}

func TestGeminiTextOnlyRequestSkipsAudioPart(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		var payload map[string]any
		if err := json.Unmarshal(body, &payload); err != nil {
			t.Fatalf("Unmarshal request: %v", err)
		}
		parts := payload["contents"].([]any)[0].(map[string]any)["parts"].([]any)
		if len(parts) != 1 {
			t.Fatalf("expected a single text part, got %d", len(parts))
		}
		w.Header().Set("Content-Type", "text/event-stream")
		_, _ = io.WriteString(w, sseChunk("done"))
	}))
	defer ts.Close()

	client := gemini.New(ts.URL, "test-key", ts.Client())
	p := NewGemini(client, &stubRenderer{out: "summarize"}, "gemini-2.5-flash-preview-05-20", testLogger())

	chunks := collect(t, p.Transcribe(context.Background(), Request{Template: "summary.tmpl"}))
	if len(chunks) != 1 || chunks[0] != "done" {
		t.Fatalf("unexpected chunks: %q", chunks)
	}
}

func TestGeminiStopsRelayWhenClientDisconnects(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		flusher := w.(http.Flusher)
		w.Header().Set("Content-Type", "text/event-stream")
		_, _ = io.WriteString(w, sseChunk("first"))
		flusher.Flush()
		<-r.Context().Done()
		_, _ = io.WriteString(w, sseChunk("second"))
		_, _ = io.WriteString(w, sseChunk("third"))
	}))
	defer ts.Close()

	client := gemini.New(ts.URL, "test-key", ts.Client())
	p := NewGemini(client, &stubRenderer{out: "prompt"}, "gemini-2.5-flash-preview-05-20", testLogger())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	stream := p.Transcribe(ctx, Request{
		AudioBase64: wavBase64(),
		Template:    "transcription.tmpl",
	})

	first, ok := <-stream
	if !ok || first != "first" {
		t.Fatalf("unexpected first chunk: %q (ok=%v)", first, ok)
	}
	cancel()

	rest := collect(t, stream)
	if len(rest) != 0 {
		t.Fatalf("no chunks should follow a disconnect, got %q", rest)
	}
}
