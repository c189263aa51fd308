// internal/workers/prospecting/find-prospects/config.go
package findprospects

import "time"

// DefaultPrompt is the built-in filter extraction template. {columns} and {query} are substituted.
const DefaultPrompt = `Extract ONLY basic demographic filters. Do NOT extract complex concepts like 'low presence' or 'high spend'.
Available fields:
{columns}

For categories, use 'contains' operator to catch variations:
- 'Computer Contractors' -> field='Primary Category', operator='contains', value='Computer'
- 'IT Services' -> field='Primary Category', operator='contains', value='IT'
- 'businesses in Texas' -> field='State', operator='equals', value='TX'

IGNORE complex terms like: low/high presence, ads spend, digital gaps

Respond with JSON only: {"filters": [{"field": "...", "operator": "contains|not_contains|equals|not_equals", "value": "..."}]}
Query: {query}`

type Config struct {
	Prompt          string
	MaxResults      int
	FallbackSize    int
	BroaderPerStem  int
	SuggestionLimit int
	MaxIterations   int
	Timeout         time.Duration
}

func LoadConfig() *Config {
	return &Config{
		Prompt:          DefaultPrompt,
		MaxResults:      10,
		FallbackSize:    5,
		BroaderPerStem:  5,
		SuggestionLimit: 10,
		MaxIterations:   10,
		Timeout:         30 * time.Second,
	}
}
