// internal/workers/welfare/extract-profile/config.go
package extractprofile

import "time"

type Config struct {
	Timeout time.Duration
	// MaxInputChars truncates very long OCR output before it is sent.
	MaxInputChars int
}

func LoadConfig() *Config {
	return &Config{
		Timeout:       120 * time.Second,
		MaxInputChars: 20000,
	}
}
