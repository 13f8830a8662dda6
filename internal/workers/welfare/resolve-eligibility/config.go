// internal/workers/welfare/resolve-eligibility/config.go
package resolveeligibility

import "time"

type Config struct {
	Timeout time.Duration
	// Concurrency bounds ResolveAll fan-out against the completion service.
	Concurrency int
}

func LoadConfig() *Config {
	return &Config{
		Timeout:     120 * time.Second,
		Concurrency: 4,
	}
}
