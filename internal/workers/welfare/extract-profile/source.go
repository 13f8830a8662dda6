// internal/workers/welfare/extract-profile/source.go
package extractprofile

import (
	"context"
	"errors"
	"fmt"
	"mime"
	"strings"
	"unicode/utf8"
)

var ErrUnsupportedMedia = errors.New("unsupported media type")

// PlainTextSource passes text documents through unchanged. Scans and audio
// need an OCR or speech backend and are rejected.
type PlainTextSource struct{}

func (PlainTextSource) ExtractText(ctx context.Context, data []byte, mimeType string) (string, error) {
	if mimeType != "" {
		mediaType, _, err := mime.ParseMediaType(mimeType)
		if err != nil {
			return "", fmt.Errorf("%w: %v", ErrUnsupportedMedia, err)
		}
		if !strings.HasPrefix(mediaType, "text/") {
			return "", fmt.Errorf("%w: %s", ErrUnsupportedMedia, mediaType)
		}
	}
	if !utf8.Valid(data) {
		return "", fmt.Errorf("%w: document is not valid UTF-8", ErrUnsupportedMedia)
	}
	return string(data), nil
}
