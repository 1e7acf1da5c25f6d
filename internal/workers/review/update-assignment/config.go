// internal/workers/review/update-assignment/config.go
package updateassignment

import "time"

type Config struct {
	// Counselors is the roster a submission may be assigned to.
	Counselors  []string
	Timeout     time.Duration
	InputSchema map[string]interface{}
}

func LoadConfig(counselors []string) *Config {
	return &Config{
		Counselors: counselors,
		Timeout:    10 * time.Second,
	}
}
