package groq

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestTranscribeSendsFormFields(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/audio/transcriptions" {
			t.Fatalf("unexpected path: %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Fatalf("unexpected auth header: %q", got)
		}
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Fatalf("ParseMultipartForm: %v", err)
		}
		defer func() { _ = r.MultipartForm.RemoveAll() }()
		if r.FormValue("model") != "whisper-large-v3" {
			t.Fatalf("unexpected model: %q", r.FormValue("model"))
		}
		if r.FormValue("response_format") != "text" {
			t.Fatalf("unexpected response_format: %q", r.FormValue("response_format"))
		}
		if r.FormValue("prompt") != "Context: Medical" {
			t.Fatalf("unexpected prompt: %q", r.FormValue("prompt"))
		}
		if r.FormValue("language") != "en" {
			t.Fatalf("unexpected language: %q", r.FormValue("language"))
		}
		files := r.MultipartForm.File["file"]
		if len(files) != 1 {
			t.Fatalf("expected one file part, got %d", len(files))
		}
		if files[0].Filename != "audio.wav" {
			t.Fatalf("unexpected filename: %q", files[0].Filename)
		}
		if got := files[0].Header.Get("Content-Type"); got != "audio/x-wav" {
			t.Fatalf("unexpected part content type: %q", got)
		}
		_, _ = io.WriteString(w, "hello world")
	}))
	defer ts.Close()

	c := New(ts.URL, "test-key", ts.Client())
	text, err := c.Transcribe(context.Background(), TranscriptionRequest{
		FileName:       "audio.wav",
		FileBytes:      []byte("RIFF audio bytes"),
		MIMEType:       "audio/x-wav",
		Model:          "whisper-large-v3",
		Prompt:         "Context: Medical",
		Language:       "en",
		ResponseFormat: "text",
	})
	if err != nil {
		t.Fatalf("Transcribe() error = %v", err)
	}
	if text != "hello world" {
		t.Fatalf("unexpected text: %q", text)
	}
}

func TestTranscribeOmitsEmptyOptionalFields(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Fatalf("ParseMultipartForm: %v", err)
		}
		defer func() { _ = r.MultipartForm.RemoveAll() }()
		if _, ok := r.MultipartForm.Value["prompt"]; ok {
			t.Fatal("prompt field should be omitted")
		}
		if _, ok := r.MultipartForm.Value["language"]; ok {
			t.Fatal("language field should be omitted")
		}
		_, _ = io.WriteString(w, "ok")
	}))
	defer ts.Close()

	c := New(ts.URL, "test-key", ts.Client())
	_, err := c.Transcribe(context.Background(), TranscriptionRequest{
		FileName:       "audio.mp3",
		FileBytes:      []byte("ID3 bytes"),
		MIMEType:       "audio/mpeg",
		Model:          "whisper-large-v3",
		ResponseFormat: "text",
	})
	if err != nil {
		t.Fatalf("Transcribe() error = %v", err)
	}
}

func TestTranscribeReturnsUpstreamError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "rate limited", http.StatusTooManyRequests)
	}))
	defer ts.Close()

	c := New(ts.URL, "test-key", ts.Client())
	_, err := c.Transcribe(context.Background(), TranscriptionRequest{
		FileName:  "audio.wav",
		FileBytes: []byte("bytes"),
		Model:     "whisper-large-v3",
	})
	if err == nil {
		t.Fatal("expected error")
	}
	upErr, ok := err.(*Error)
	if !ok {
		t.Fatalf("expected *Error, got %T", err)
	}
	if upErr.StatusCode != http.StatusTooManyRequests {
		t.Fatalf("unexpected status code: %d", upErr.StatusCode)
	}
	if upErr.Body != "rate limited" {
		t.Fatalf("unexpected body: %q", upErr.Body)
	}
}

func TestTranscribeObserverSeesFinalStatus(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, "ok")
	}))
	defer ts.Close()

	var gotEndpoint string
	var gotStatus int
	c := New(ts.URL, "test-key", ts.Client(), WithObserver(func(endpoint string, status int, _ time.Duration) {
		gotEndpoint = endpoint
		gotStatus = status
	}))
	_, err := c.Transcribe(context.Background(), TranscriptionRequest{
		FileName:  "audio.wav",
		FileBytes: []byte("bytes"),
		Model:     "whisper-large-v3",
	})
	if err != nil {
		t.Fatalf("Transcribe() error = %v", err)
	}
	if gotEndpoint != "audio_transcriptions" {
		t.Fatalf("unexpected endpoint: %q", gotEndpoint)
	}
	if gotStatus != http.StatusOK {
		t.Fatalf("unexpected status: %d", gotStatus)
	}
}
