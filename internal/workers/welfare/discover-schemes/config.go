// internal/workers/welfare/discover-schemes/config.go
package discoverschemes

import "time"

const (
	DefaultMaxResults = 20
	MaxResultsCap     = 50
)

type Config struct {
	Timeout           time.Duration
	DefaultMaxResults int
}

func LoadConfig() *Config {
	return &Config{
		Timeout:           120 * time.Second,
		DefaultMaxResults: DefaultMaxResults,
	}
}
