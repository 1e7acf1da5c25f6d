// internal/workers/intake/generate-suggestion/config.go
package generatesuggestion

import "time"

type Config struct {
	// Timeout bounds the whole job; the gateway applies its own tighter limit.
	Timeout     time.Duration
	InputSchema map[string]interface{}
}

func LoadConfig() *Config {
	return &Config{
		Timeout: 45 * time.Second,
	}
}
