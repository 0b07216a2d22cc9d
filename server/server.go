package server

import (
	"context"
	"embed"
	"encoding/json"
	"errors"
	"io"
	"io/fs"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"

	"bedtime_storyteller/generator"
	"bedtime_storyteller/publisher"
)

//go:embed web/index.html
var embeddedStatic embed.FS

const maxBodyBytes = 1 << 20

// Runner produces one story per request. *generator.Pipeline implements it.
type Runner interface {
	Run(ctx context.Context, req generator.Request) (generator.Result, error)
}

// Library lists saved stories. *publisher.Catalog implements it.
type Library interface {
	List(ctx context.Context, limit int) ([]publisher.Entry, error)
}

type Server struct {
	runner     Runner
	usage      *generator.UsageCounter
	library    Library
	storiesDir string
	static     fs.FS
	logger     *log.Logger
}

// Option configures a Server.
type Option func(*Server)

// WithUsage exposes c on GET /api/usage.
func WithUsage(c *generator.UsageCounter) Option {
	return func(s *Server) { s.usage = c }
}

// WithLibrary exposes the catalog on GET /api/stories.
func WithLibrary(l Library) Option {
	return func(s *Server) { s.library = l }
}

// WithStoriesDir serves saved pages under /stories/.
func WithStoriesDir(dir string) Option {
	return func(s *Server) { s.storiesDir = dir }
}

func WithLogger(l *log.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}

func New(runner Runner, opts ...Option) (*Server, error) {
	if runner == nil {
		return nil, errors.New("story runner required")
	}

	sub, err := fs.Sub(embeddedStatic, "web")
	if err != nil {
		return nil, err
	}

	s := &Server{
		runner: runner,
		static: sub,
		logger: log.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/generate", s.handleGenerate)
	mux.HandleFunc("/api/usage", s.handleUsage)
	mux.HandleFunc("/api/stories", s.handleStories)
	if s.storiesDir != "" {
		mux.Handle("/stories/", http.StripPrefix("/stories/", http.FileServer(http.Dir(s.storiesDir))))
	}
	mux.HandleFunc("/", s.handleIndex)
	return s.logMiddleware(mux)
}

// --- Handlers ---

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	http.ServeFileFS(w, r, s.static, "index.html")
}

func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	req, err := parseRequest(body)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	req.ID = requestID(r.Context())

	// a client hanging up does not abort a run in progress
	res, err := s.runner.Run(context.WithoutCancel(r.Context()), req)
	if err != nil {
		s.logger.Printf("[http] generate %s failed: %v", req.ID, err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	data, err := json.Marshal(res)
	if err == nil {
		data, err = sjson.SetBytes(data, "request_id", req.ID)
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write(data)
}

func (s *Server) handleUsage(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	var u generator.Usage
	if s.usage != nil {
		u = s.usage.Snapshot()
	}
	writeJSON(w, http.StatusOK, u)
}

func (s *Server) handleStories(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	entries := []publisher.Entry{}
	if s.library != nil {
		limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
		list, err := s.library.List(r.Context(), limit)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		if list != nil {
			entries = list
		}
	}
	writeJSON(w, http.StatusOK, entries)
}

// --- Helpers ---

// parseRequest reads {topic, name, age}. Age may be a number or a numeric
// string; anything missing or unusable falls back to the default age.
func parseRequest(body []byte) (generator.Request, error) {
	if !gjson.ValidBytes(body) {
		return generator.Request{}, errors.New("request body must be JSON")
	}
	doc := gjson.ParseBytes(body)
	topic := strings.TrimSpace(doc.Get("topic").String())
	if topic == "" {
		return generator.Request{}, errors.New("topic is required")
	}
	return generator.Request{
		Topic: topic,
		Name:  strings.TrimSpace(doc.Get("name").String()),
		Age:   parseAge(doc.Get("age")),
	}, nil
}

func parseAge(v gjson.Result) int {
	var age int
	switch v.Type {
	case gjson.Number:
		age = int(v.Int())
	case gjson.String:
		age, _ = strconv.Atoi(strings.TrimSpace(v.Str))
	}
	if age <= 0 {
		return generator.DefaultAge
	}
	return age
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

type ctxKey struct{}

func requestID(ctx context.Context) string {
	id, _ := ctx.Value(ctxKey{}).(string)
	return id
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (s *Server) logMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		id := uuid.NewString()
		w.Header().Set("X-Request-ID", id)
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r.WithContext(context.WithValue(r.Context(), ctxKey{}, id)))
		s.logger.Printf("[http] %s %s %d %s id=%s", r.Method, r.URL.Path, rec.status, time.Since(start).Round(time.Millisecond), id)
	})
}
