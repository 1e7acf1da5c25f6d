// internal/workers/intake/score-pre-interview/config.go
package scorepreinterview

import "time"

type Config struct {
	Timeout     time.Duration
	InputSchema map[string]interface{}
}

func LoadConfig() *Config {
	return &Config{
		Timeout: 5 * time.Second,
	}
}
