package generator

import "sync"

// Usage reports token consumption.
type Usage struct {
	InputTokens  int64 `json:"input_tokens" yaml:"input_tokens"`
	OutputTokens int64 `json:"output_tokens" yaml:"output_tokens"`
}

// UsageCounter accumulates token usage across every invocation in the
// process. It is never reset and is safe for concurrent use.
type UsageCounter struct {
	mu    sync.Mutex
	total Usage
}

// NewUsageCounter returns an empty counter.
func NewUsageCounter() *UsageCounter {
	return &UsageCounter{}
}

// Add records one call's usage.
func (c *UsageCounter) Add(u Usage) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.total.InputTokens += u.InputTokens
	c.total.OutputTokens += u.OutputTokens
}

// Snapshot returns the totals so far.
func (c *UsageCounter) Snapshot() Usage {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.total
}
