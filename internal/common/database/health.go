// internal/common/database/health.go
package database

import "context"

// Pinger is a dependency the readiness check can ping.
type Pinger interface {
	Name() string
	Ping(ctx context.Context) error
}

// CheckAll pings every dependency and returns the failures keyed by name.
func CheckAll(ctx context.Context, deps ...Pinger) map[string]string {
	failures := map[string]string{}
	for _, d := range deps {
		if d == nil {
			continue
		}
		if err := d.Ping(ctx); err != nil {
			failures[d.Name()] = err.Error()
		}
	}
	return failures
}
