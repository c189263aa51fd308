// internal/workers/communication/draft-outreach/config.go
package draftoutreach

import (
	"time"

	analyzeprospect "sales-assistant/internal/workers/insights/analyze-prospect"
)

type Config struct {
	SenderName    string
	SignOff       string
	NamePrompt    string
	MaxIterations int
	Timeout       time.Duration
}

func LoadConfig() *Config {
	return &Config{
		SenderName:    "Prashant Aarya",
		SignOff:       "Best Regards",
		NamePrompt:    analyzeprospect.DefaultNamePrompt,
		MaxIterations: 10,
		Timeout:       30 * time.Second,
	}
}
