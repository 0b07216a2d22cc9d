package generator

import (
	"context"
	"errors"
	"fmt"
)

// LLMClient 抽象大模型客户端，便于替换/Mock。
// Complete performs exactly one call; retries belong to the Invoker.
type LLMClient interface {
	Complete(ctx context.Context, prompt Prompt, opts CallOptions) (Completion, error)
}

// LLMSettings 提供给具体实现的基础配置。
type LLMSettings struct {
	Provider string
	Model    string
	BaseURL  string
	// Credentials is consulted on every call so a key removed or added at
	// runtime is noticed without rebuilding the client.
	Credentials Credentials
}

// Credentials resolves the generation service secret. An empty string means
// no credential is configured.
type Credentials func() string

// StaticCredentials returns a Credentials that always yields key.
func StaticCredentials(key string) Credentials {
	return func() string { return key }
}

// CallOptions controls one generation request.
type CallOptions struct {
	Model       string
	Temperature float64
	MaxTokens   int
	// JSONMode asks the service for syntactically valid JSON. No schema is enforced.
	JSONMode bool
}

// Completion is the service response for one call.
type Completion struct {
	Text  string
	Usage Usage
}

var (
	// ErrMissingCredential is returned before any network attempt when no
	// API key is configured. It is never retried.
	ErrMissingCredential = errors.New("generation service credential is not configured")

	// ErrRetriesExhausted wraps the last transient error once the retry
	// budget is spent.
	ErrRetriesExhausted = errors.New("generation service retries exhausted")
)

// StatusError reports an HTTP status from a backend that does not surface
// openai-go errors.
type StatusError struct {
	StatusCode int
	Message    string
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("generation service: HTTP %d", e.StatusCode)
	}
	return fmt.Sprintf("generation service: HTTP %d: %s", e.StatusCode, e.Message)
}
