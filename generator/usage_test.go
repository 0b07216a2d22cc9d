package generator

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// usageLLM reports a fixed usage for every call.
type usageLLM struct{ usage Usage }

func (u usageLLM) Complete(context.Context, Prompt, CallOptions) (Completion, error) {
	return Completion{Text: "ok", Usage: u.usage}, nil
}

func TestUsageCounterConcurrentInvocations(t *testing.T) {
	counter := NewUsageCounter()
	a, err := NewInvoker(usageLLM{Usage{InputTokens: 100, OutputTokens: 50}}, WithUsageCounter(counter))
	require.NoError(t, err)
	b, err := NewInvoker(usageLLM{Usage{InputTokens: 200, OutputTokens: 80}}, WithUsageCounter(counter))
	require.NoError(t, err)

	var wg sync.WaitGroup
	for _, inv := range []*Invoker{a, b} {
		wg.Add(1)
		go func(inv *Invoker) {
			defer wg.Done()
			_, err := inv.Invoke(context.Background(), Prompt{User: "hi"}, CallOptions{})
			assert.NoError(t, err)
		}(inv)
	}
	wg.Wait()

	assert.Equal(t, Usage{InputTokens: 300, OutputTokens: 130}, counter.Snapshot())
}

func TestUsageCounterNoLostUpdates(t *testing.T) {
	counter := NewUsageCounter()
	const workers, perWorker = 16, 500

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < perWorker; i++ {
				counter.Add(Usage{InputTokens: 2, OutputTokens: 1})
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, Usage{InputTokens: 2 * workers * perWorker, OutputTokens: workers * perWorker}, counter.Snapshot())
}
