// internal/workers/welfare/extract-profile/models.go
package extractprofile

import "scheme-finder/internal/models"

type Input struct {
	RawText string `json:"rawText"`
	UserID  string `json:"userId,omitempty"`
}

// DocumentInput is a scanned document or voice note that still needs OCR or
// speech-to-text before extraction.
type DocumentInput struct {
	Data     []byte `json:"data"`
	MimeType string `json:"mimeType"`
	UserID   string `json:"userId,omitempty"`
}

type Output struct {
	Profile models.Profile `json:"profile"`
}
