// internal/workers/insights/analyze-prospect/config.go
package analyzeprospect

import "time"

// DefaultNamePrompt is the built-in name extraction template. {query} is substituted.
const DefaultNamePrompt = `Extract the name of the single business the user is asking about.
Copy the name exactly as written in the message. Use an empty string when no business is named.

Respond with JSON only: {"business_name": "..."}
Message: {query}`

type Config struct {
	NamePrompt    string
	MaxIterations int
	Timeout       time.Duration
}

func LoadConfig() *Config {
	return &Config{
		NamePrompt:    DefaultNamePrompt,
		MaxIterations: 10,
		Timeout:       30 * time.Second,
	}
}
