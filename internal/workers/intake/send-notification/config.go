// internal/workers/intake/send-notification/config.go
package sendnotification

import "time"

type Config struct {
	EmailEnabled bool
	SMSEnabled   bool
	// EmailProvider is "ses" or "smtp"; it only labels logs, the sender is injected.
	EmailProvider string
	BookingLink   string
	Timeout       time.Duration
	InputSchema   map[string]interface{}
}

func LoadConfig() *Config {
	return &Config{
		EmailEnabled:  false,
		SMSEnabled:    false,
		EmailProvider: "smtp",
		Timeout:       30 * time.Second,
	}
}
