// internal/workers/routing/route-request/config.go
package routerequest

import "time"

// DefaultPrompt is the built-in router template. {history} and {message} are substituted.
const DefaultPrompt = `You are an expert router that identifies user type and routes requests.

First, identify the user type:
- SALES REP: Asks about specific prospects, needs detailed analysis, wants personalized outreach
- DEMAND GEN: Asks about broader campaigns, market segments, lead generation strategies

Then route to appropriate agent:
- 'prospecting': Finding/searching businesses
- 'insights': Analysis of specific companies
- 'communication': Drafting messages/emails
- 'end': Goodbye/thank you

Previous context: {history}
Current message: {message}

Respond with: [USER_TYPE]|[ROUTE]
Example: SALESREP|insights or DEMANDGEN|prospecting`

type Config struct {
	Prompt        string
	HistoryWindow int
	MaxIterations int
	Timeout       time.Duration
}

func LoadConfig() *Config {
	return &Config{
		Prompt:        DefaultPrompt,
		HistoryWindow: 3,
		MaxIterations: 10,
		Timeout:       30 * time.Second,
	}
}
