// Package conversation holds the bounded, process-wide log of recent turns.
package conversation

import (
	"sync"
	"time"

	"sales-assistant/internal/common/metrics"
	"sales-assistant/internal/models"
)

const (
	DefaultMaxEntries = 10

	// KeyUserType is the user-context key the router writes the detected segment to.
	KeyUserType = "user_type"
)

// Entry is one completed turn.
type Entry struct {
	Query     string    `json:"query"`
	Timestamp time.Time `json:"timestamp"`
	Response  string    `json:"response,omitempty"`
}

// Context is safe for concurrent use. Appends are atomic and evict oldest-first.
type Context struct {
	mu         sync.RWMutex
	maxEntries int
	entries    []Entry
	user       map[string]string
}

func New(maxEntries int) *Context {
	if maxEntries <= 0 {
		maxEntries = DefaultMaxEntries
	}
	return &Context{
		maxEntries: maxEntries,
		user:       make(map[string]string),
	}
}

// Append records a full entry and truncates the log to the newest maxEntries.
func (c *Context) Append(e Entry) {
	if e.Timestamp.IsZero() {
		e.Timestamp = time.Now().UTC()
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries = append(c.entries, e)
	if over := len(c.entries) - c.maxEntries; over > 0 {
		kept := make([]Entry, c.maxEntries)
		copy(kept, c.entries[over:])
		c.entries = kept
	}
	metrics.ConversationEntries.Set(float64(len(c.entries)))
}

// Entries returns a copy of the log, oldest first.
func (c *Context) Entries() []Entry {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]Entry, len(c.entries))
	copy(out, c.entries)
	return out
}

// RecentQueries returns up to n of the latest queries, oldest first.
func (c *Context) RecentQueries(n int) []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	start := len(c.entries) - n
	if start < 0 || n < 0 {
		start = 0
	}
	out := make([]string, 0, len(c.entries)-start)
	for _, e := range c.entries[start:] {
		out = append(out, e.Query)
	}
	return out
}

func (c *Context) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

func (c *Context) MaxEntries() int {
	return c.maxEntries
}

// Set stores a free-form user-context value.
func (c *Context) Set(key, value string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.user[key] = value
}

func (c *Context) Get(key string) (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	v, ok := c.user[key]
	return v, ok
}

// UserContext returns a copy of the user-context map.
func (c *Context) UserContext() map[string]string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make(map[string]string, len(c.user))
	for k, v := range c.user {
		out[k] = v
	}
	return out
}

// SetSegment remembers the last detected user segment. Unknown never overwrites a known one.
func (c *Context) SetSegment(s models.Segment) {
	if s == "" || s == models.SegmentUnknown {
		return
	}
	c.Set(KeyUserType, string(s))
}

func (c *Context) Segment() models.Segment {
	v, ok := c.Get(KeyUserType)
	if !ok {
		return models.SegmentUnknown
	}
	return models.Segment(v)
}

// Clear wipes both the log and the user context.
func (c *Context) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = nil
	c.user = make(map[string]string)
	metrics.ConversationEntries.Set(0)
}
