package gemini

import (
	"bufio"
	"encoding/json"
	"io"
	"strings"
)

// Stream yields the text fragments of a server-sent-event generateContent
// response in arrival order.
type Stream struct {
	body    io.ReadCloser
	scanner *bufio.Scanner
	err     error
}

func newStream(body io.ReadCloser) *Stream {
	scanner := bufio.NewScanner(body)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	return &Stream{body: body, scanner: scanner}
}

// Next returns the next non-empty text fragment. A false return means the
// stream ended; Err reports whether that was a clean close or a transport
// failure.
func (s *Stream) Next() (string, bool) {
	for s.scanner.Scan() {
		line := strings.TrimSpace(s.scanner.Text())
		if !strings.HasPrefix(line, "data:") {
			continue
		}
		payload := strings.TrimSpace(strings.TrimPrefix(line, "data:"))
		if payload == "" {
			continue
		}
		var chunk generateContentChunk
		if err := json.Unmarshal([]byte(payload), &chunk); err != nil {
			continue
		}
		if text := chunk.text(); text != "" {
			return text, true
		}
	}
	s.err = s.scanner.Err()
	return "", false
}

func (s *Stream) Err() error {
	return s.err
}

func (s *Stream) Close() error {
	return s.body.Close()
}

type generateContentChunk struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

func (c generateContentChunk) text() string {
	var sb strings.Builder
	for _, candidate := range c.Candidates {
		for _, part := range candidate.Content.Parts {
			sb.WriteString(part.Text)
		}
	}
	return sb.String()
}
