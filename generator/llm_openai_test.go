package generator

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
)

const chatCompletionBody = `{
  "id": "chatcmpl-1",
  "object": "chat.completion",
  "created": 1700000000,
  "model": "gpt-3.5-turbo",
  "choices": [{"index": 0, "finish_reason": "stop", "message": {"role": "assistant", "content": "{\"score\": 9}"}}],
  "usage": {"prompt_tokens": 42, "completion_tokens": 7, "total_tokens": 49}
}`

// fakeOpenAI serves canned chat completions and records the last request body.
func fakeOpenAI(t *testing.T, status int, body string) (*httptest.Server, *[]byte, *int) {
	t.Helper()
	var last []byte
	var calls int
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if !strings.HasSuffix(r.URL.Path, "/chat/completions") {
			http.NotFound(w, r)
			return
		}
		last, _ = io.ReadAll(r.Body)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = io.WriteString(w, body)
	}))
	t.Cleanup(ts.Close)
	return ts, &last, &calls
}

func newTestOpenAI(t *testing.T, baseURL, key string) *OpenAILLM {
	t.Helper()
	llm, err := NewOpenAILLMFromConfig(&LLMSettings{
		Provider:    "openai",
		BaseURL:     baseURL,
		Credentials: StaticCredentials(key),
	})
	require.NoError(t, err)
	return llm
}

func TestOpenAILLMComplete(t *testing.T) {
	ts, last, _ := fakeOpenAI(t, http.StatusOK, chatCompletionBody)
	llm := newTestOpenAI(t, ts.URL, "sk-test")

	got, err := llm.Complete(context.Background(), Prompt{System: "sys", User: "story please"}, CallOptions{
		Temperature: 0.1,
		MaxTokens:   200,
		JSONMode:    true,
	})
	require.NoError(t, err)
	assert.Equal(t, `{"score": 9}`, got.Text)
	assert.Equal(t, Usage{InputTokens: 42, OutputTokens: 7}, got.Usage)

	req := gjson.ParseBytes(*last)
	assert.Equal(t, DefaultModel, req.Get("model").String())
	assert.InDelta(t, 0.1, req.Get("temperature").Float(), 1e-9)
	assert.Equal(t, int64(200), req.Get("max_tokens").Int())
	assert.Equal(t, "json_object", req.Get("response_format.type").String())
	assert.Equal(t, "system", req.Get("messages.0.role").String())
	assert.Equal(t, "story please", req.Get("messages.1.content").String())
}

func TestOpenAILLMFreeTextOmitsResponseFormat(t *testing.T) {
	ts, last, _ := fakeOpenAI(t, http.StatusOK, chatCompletionBody)
	llm := newTestOpenAI(t, ts.URL, "sk-test")

	_, err := llm.Complete(context.Background(), Prompt{User: "words"}, CallOptions{Model: "gpt-4o", Temperature: 0.8})
	require.NoError(t, err)

	req := gjson.ParseBytes(*last)
	assert.False(t, req.Get("response_format").Exists())
	assert.Equal(t, "gpt-4o", req.Get("model").String())
	// no system prompt means the user message comes first
	assert.Equal(t, "user", req.Get("messages.0.role").String())
}

func TestOpenAILLMMissingCredential(t *testing.T) {
	ts, _, calls := fakeOpenAI(t, http.StatusOK, chatCompletionBody)
	llm := newTestOpenAI(t, ts.URL, "")

	_, err := llm.Complete(context.Background(), Prompt{User: "x"}, CallOptions{})
	assert.ErrorIs(t, err, ErrMissingCredential)
	assert.Equal(t, 0, *calls)
}

func TestOpenAILLMErrorClassification(t *testing.T) {
	tests := []struct {
		status    int
		transient bool
	}{
		{status: http.StatusTooManyRequests, transient: true},
		{status: http.StatusServiceUnavailable, transient: true},
		{status: http.StatusInternalServerError, transient: true},
		{status: http.StatusUnauthorized, transient: false},
		{status: http.StatusBadRequest, transient: false},
	}
	for _, tt := range tests {
		t.Run(http.StatusText(tt.status), func(t *testing.T) {
			ts, _, calls := fakeOpenAI(t, tt.status, `{"error": {"message": "nope", "type": "x"}}`)
			llm := newTestOpenAI(t, ts.URL, "sk-test")

			_, err := llm.Complete(context.Background(), Prompt{User: "x"}, CallOptions{})
			require.Error(t, err)
			assert.Equal(t, tt.transient, IsTransient(err))
			// the SDK must not retry on its own
			assert.Equal(t, 1, *calls)
		})
	}
}

func TestNewOpenAILLMFromConfig(t *testing.T) {
	_, err := NewOpenAILLMFromConfig(nil)
	assert.Error(t, err)

	_, err = NewOpenAILLMFromConfig(&LLMSettings{})
	assert.Error(t, err)

	llm, err := NewOpenAILLMFromConfig(&LLMSettings{Model: "gpt-4o", Credentials: StaticCredentials("k")})
	require.NoError(t, err)
	assert.Equal(t, "gpt-4o", llm.Model)
}
