package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bedtime_storyteller/generator"
	"bedtime_storyteller/publisher"
)

type fakeRunner struct {
	mu     sync.Mutex
	got    []generator.Request
	ctxErr error
	err    error
}

func (f *fakeRunner) Run(ctx context.Context, req generator.Request) (generator.Result, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.got = append(f.got, req)
	f.ctxErr = ctx.Err()
	if f.err != nil {
		return generator.Result{}, f.err
	}
	return generator.Result{
		Story:          "Once upon a time " + req.Topic,
		ChallengeWords: "1. brave - not afraid",
		ReadingTime:    "1 min read",
		Artifact:       "story.html",
		Outcome:        generator.OutcomeAccepted,
		Score:          9,
		Attempts:       1,
	}, nil
}

func (f *fakeRunner) last() generator.Request {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.got[len(f.got)-1]
}

type fakeLibrary struct {
	entries   []publisher.Entry
	err       error
	lastLimit int
}

func (f *fakeLibrary) List(_ context.Context, limit int) ([]publisher.Entry, error) {
	f.lastLimit = limit
	return f.entries, f.err
}

func newTestServer(t *testing.T, runner Runner, opts ...Option) http.Handler {
	t.Helper()
	opts = append([]Option{WithLogger(log.New(io.Discard, "", 0))}, opts...)
	s, err := New(runner, opts...)
	require.NoError(t, err)
	return s.Routes()
}

func post(t *testing.T, h http.Handler, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/generate", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestNewRequiresRunner(t *testing.T) {
	_, err := New(nil)
	assert.Error(t, err)
}

func TestIndexServesPage(t *testing.T) {
	h := newTestServer(t, &fakeRunner{})

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/html")
	assert.Contains(t, rec.Body.String(), "Bedtime Storyteller")
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/nope", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGenerate(t *testing.T) {
	runner := &fakeRunner{}
	h := newTestServer(t, runner)

	rec := post(t, h, `{"topic": " A brave toaster ", "name": "Milo", "age": 5}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "Once upon a time A brave toaster", body["story"])
	assert.Equal(t, "1. brave - not afraid", body["challenge_words"])
	assert.Equal(t, "1 min read", body["reading_time"])
	assert.Equal(t, "story.html", body["artifact_reference"])
	assert.Equal(t, "accepted", body["outcome"])
	assert.EqualValues(t, 9, body["score"])
	assert.Equal(t, rec.Header().Get("X-Request-ID"), body["request_id"])

	got := runner.last()
	assert.Equal(t, "A brave toaster", got.Topic)
	assert.Equal(t, "Milo", got.Name)
	assert.Equal(t, 5, got.Age)
	assert.Equal(t, rec.Header().Get("X-Request-ID"), got.ID)
}

func TestGenerateAgeParsing(t *testing.T) {
	tests := []struct {
		name string
		body string
		want int
	}{
		{name: "number", body: `{"topic": "t", "age": 9}`, want: 9},
		{name: "numeric string", body: `{"topic": "t", "age": "4"}`, want: 4},
		{name: "missing", body: `{"topic": "t"}`, want: generator.DefaultAge},
		{name: "garbage string", body: `{"topic": "t", "age": "old"}`, want: generator.DefaultAge},
		{name: "negative", body: `{"topic": "t", "age": -2}`, want: generator.DefaultAge},
		{name: "zero", body: `{"topic": "t", "age": 0}`, want: generator.DefaultAge},
		{name: "bool", body: `{"topic": "t", "age": true}`, want: generator.DefaultAge},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			runner := &fakeRunner{}
			rec := post(t, newTestServer(t, runner), tt.body)
			require.Equal(t, http.StatusOK, rec.Code)
			assert.Equal(t, tt.want, runner.last().Age)
		})
	}
}

func TestGenerateBadRequests(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{name: "missing topic", body: `{"age": 6}`, want: "topic is required"},
		{name: "blank topic", body: `{"topic": "   "}`, want: "topic is required"},
		{name: "not json", body: `topic=dragons`, want: "must be JSON"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			runner := &fakeRunner{}
			rec := post(t, newTestServer(t, runner), tt.body)
			assert.Equal(t, http.StatusBadRequest, rec.Code)

			var body map[string]string
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
			assert.Contains(t, body["error"], tt.want)
			assert.Empty(t, runner.got)
		})
	}
}

func TestGenerateRunnerError(t *testing.T) {
	runner := &fakeRunner{err: errors.New("plan: planning failed")}
	rec := post(t, newTestServer(t, runner), `{"topic": "dragons"}`)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "plan: planning failed", body["error"])
}

func TestGenerateMethodNotAllowed(t *testing.T) {
	rec := httptest.NewRecorder()
	newTestServer(t, &fakeRunner{}).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/generate", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestGenerateOutlivesClient(t *testing.T) {
	runner := &fakeRunner{}
	h := newTestServer(t, runner)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	req := httptest.NewRequest(http.MethodPost, "/generate", strings.NewReader(`{"topic": "owls"}`)).WithContext(ctx)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NoError(t, runner.ctxErr)
}

func TestUsageEndpoint(t *testing.T) {
	counter := generator.NewUsageCounter()
	counter.Add(generator.Usage{InputTokens: 120, OutputTokens: 45})
	h := newTestServer(t, &fakeRunner{}, WithUsage(counter))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/usage", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"input_tokens": 120, "output_tokens": 45}`, rec.Body.String())
}

func TestUsageEndpointWithoutCounter(t *testing.T) {
	rec := httptest.NewRecorder()
	newTestServer(t, &fakeRunner{}).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/usage", nil))
	assert.JSONEq(t, `{"input_tokens": 0, "output_tokens": 0}`, rec.Body.String())
}

func TestStoriesEndpoint(t *testing.T) {
	created := time.Date(2026, 3, 1, 20, 0, 0, 0, time.UTC)
	lib := &fakeLibrary{entries: []publisher.Entry{{ID: "01J", Title: "owls", File: "owls.html", CreatedAt: created}}}
	h := newTestServer(t, &fakeRunner{}, WithLibrary(lib))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/stories?limit=5", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 5, lib.lastLimit)

	var got []publisher.Entry
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	require.Len(t, got, 1)
	assert.Equal(t, "owls.html", got[0].File)
	assert.True(t, created.Equal(got[0].CreatedAt))
}

func TestStoriesEndpointEmpty(t *testing.T) {
	rec := httptest.NewRecorder()
	newTestServer(t, &fakeRunner{}).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/stories", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())
}

func TestStoriesEndpointError(t *testing.T) {
	lib := &fakeLibrary{err: errors.New("database is locked")}
	rec := httptest.NewRecorder()
	newTestServer(t, &fakeRunner{}, WithLibrary(lib)).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/stories", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestStoriesDirServesPages(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "owls.html"), []byte("<h1>Owls</h1>"), 0o644))
	h := newTestServer(t, &fakeRunner{}, WithStoriesDir(dir))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/stories/owls.html", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "<h1>Owls</h1>", rec.Body.String())
}
