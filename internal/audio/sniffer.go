package audio

import (
	"encoding/base64"
	"errors"

	"github.com/h2non/filetype"
)

var (
	ErrInvalidEncoding = errors.New("invalid base64-encoded audio data")
	ErrUnknownFormat   = errors.New("invalid audio file format")
)

// Audio is a decoded clip with the MIME type and extension sniffed from its
// leading magic bytes. Client-supplied content types are never trusted.
type Audio struct {
	Bytes     []byte
	MIMEType  string
	Extension string
}

func Decode(audioBase64 string) (Audio, error) {
	raw, err := base64.StdEncoding.DecodeString(audioBase64)
	if err != nil {
		return Audio{}, ErrInvalidEncoding
	}
	kind, err := filetype.Match(raw)
	if err != nil || kind == filetype.Unknown {
		return Audio{}, ErrUnknownFormat
	}
	return Audio{
		Bytes:     raw,
		MIMEType:  kind.MIME.Value,
		Extension: kind.Extension,
	}, nil
}
