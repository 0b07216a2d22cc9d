package generator

import (
	"context"
	"errors"
	"fmt"
	"log"
)

// ModelInvoker is the capability every role needs from the generation
// service. Tests substitute a deterministic stub.
type ModelInvoker interface {
	Invoke(ctx context.Context, prompt Prompt, opts CallOptions) (string, error)
}

// Invoker wraps an LLMClient with credential pre-flight, retry and
// token accounting.
type Invoker struct {
	client      LLMClient
	credentials Credentials
	retry       RetryPolicy
	usage       *UsageCounter
	model       string
	verbose     bool
	logger      *log.Logger
}

// InvokerOption configures an Invoker.
type InvokerOption func(*Invoker)

// WithCredentials makes every call fail with ErrMissingCredential while
// creds yields an empty string.
func WithCredentials(creds Credentials) InvokerOption {
	return func(i *Invoker) { i.credentials = creds }
}

// WithRetryPolicy overrides the default retry policy.
func WithRetryPolicy(p RetryPolicy) InvokerOption {
	return func(i *Invoker) { i.retry = p }
}

// WithUsageCounter shares a process-wide counter.
func WithUsageCounter(c *UsageCounter) InvokerOption {
	return func(i *Invoker) {
		if c != nil {
			i.usage = c
		}
	}
}

// WithModel sets the model used when a call does not name one.
func WithModel(model string) InvokerOption {
	return func(i *Invoker) { i.model = model }
}

// WithVerbose logs every call's token usage.
func WithVerbose(v bool) InvokerOption {
	return func(i *Invoker) { i.verbose = v }
}

// WithLogger sets the logger for retry and usage lines.
func WithLogger(l *log.Logger) InvokerOption {
	return func(i *Invoker) {
		if l != nil {
			i.logger = l
		}
	}
}

// NewInvoker builds an Invoker around client.
func NewInvoker(client LLMClient, opts ...InvokerOption) (*Invoker, error) {
	if client == nil {
		return nil, errors.New("llm client is required")
	}
	inv := &Invoker{
		client: client,
		logger: log.Default(),
	}
	for _, opt := range opts {
		opt(inv)
	}
	if inv.usage == nil {
		inv.usage = NewUsageCounter()
	}
	if inv.retry.Logger == nil {
		inv.retry.Logger = inv.logger
	}
	return inv, nil
}

// Usage returns the counter this invoker adds to.
func (i *Invoker) Usage() *UsageCounter {
	return i.usage
}

// Invoke sends prompt and returns the generated text, which may be empty.
func (i *Invoker) Invoke(ctx context.Context, prompt Prompt, opts CallOptions) (string, error) {
	if i.credentials != nil && i.credentials() == "" {
		return "", ErrMissingCredential
	}
	if opts.Model == "" {
		opts.Model = i.model
	}

	label := string(prompt.Task)
	if label == "" {
		label = "llm"
	}
	var out Completion
	err := i.retry.Do(ctx, label, func(ctx context.Context) error {
		c, err := i.client.Complete(ctx, prompt, opts)
		if err != nil {
			return err
		}
		out = c
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("%s: %w", label, err)
	}

	i.usage.Add(out.Usage)
	if i.verbose {
		i.logger.Printf("[llm] %s tokens: input=%d output=%d", label, out.Usage.InputTokens, out.Usage.OutputTokens)
	}
	return out.Text, nil
}
