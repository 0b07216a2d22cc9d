package generator

import (
	"context"
	"errors"
	"log"

	"github.com/google/uuid"
)

const (
	// DefaultMaxAttempts is how many revisions follow the first draft.
	DefaultMaxAttempts = 2
	// DefaultPassScore is the quality gate, out of 10.
	DefaultPassScore = 8
)

// Planner produces the outline.
type Planner interface {
	Plan(ctx context.Context, request string, g AgeGuidelines) (StoryPlan, error)
}

// Storyteller writes a draft; critique is empty on the first pass.
type Storyteller interface {
	Write(ctx context.Context, plan StoryPlan, g AgeGuidelines, critique string) (string, error)
}

// Judge scores a draft.
type Judge interface {
	Evaluate(ctx context.Context, draft string, g AgeGuidelines) (Evaluation, error)
}

// WordCoach picks vocabulary for the "little learners" box.
type WordCoach interface {
	ChallengeWords(ctx context.Context, text string, age int) (string, error)
}

// ArtifactStore persists the finished story and returns a reference to it.
type ArtifactStore interface {
	Save(ctx context.Context, a Artifact) (string, error)
}

// Pipeline runs plan, then write/judge cycles until the draft passes or the
// revision budget is spent, then post-processes the last draft.
//
// A Pipeline holds no per-request state and may serve concurrent Runs.
type Pipeline struct {
	planner     Planner
	writer      Storyteller
	judge       Judge
	coach       WordCoach
	store       ArtifactStore
	maxAttempts int
	passScore   int
	logger      *log.Logger
}

// PipelineOption configures a Pipeline.
type PipelineOption func(*Pipeline)

func WithPlanner(p Planner) PipelineOption         { return func(pl *Pipeline) { pl.planner = p } }
func WithStoryteller(s Storyteller) PipelineOption { return func(pl *Pipeline) { pl.writer = s } }
func WithJudge(j Judge) PipelineOption             { return func(pl *Pipeline) { pl.judge = j } }
func WithWordCoach(c WordCoach) PipelineOption     { return func(pl *Pipeline) { pl.coach = c } }

// WithArtifactStore sets where finished stories are saved. Without one,
// nothing is persisted.
func WithArtifactStore(s ArtifactStore) PipelineOption {
	return func(pl *Pipeline) { pl.store = s }
}

// WithMaxAttempts sets the number of revisions after the first draft.
func WithMaxAttempts(n int) PipelineOption {
	return func(pl *Pipeline) {
		if n >= 0 {
			pl.maxAttempts = n
		}
	}
}

// WithPassScore sets the minimum score that accepts a draft.
func WithPassScore(n int) PipelineOption {
	return func(pl *Pipeline) {
		if n > 0 {
			pl.passScore = n
		}
	}
}

func WithPipelineLogger(l *log.Logger) PipelineOption {
	return func(pl *Pipeline) {
		if l != nil {
			pl.logger = l
		}
	}
}

// NewPipeline fills every role from agent; options may replace individual
// roles. agent may be nil when all four roles are supplied as options.
func NewPipeline(agent *Agent, opts ...PipelineOption) (*Pipeline, error) {
	p := &Pipeline{
		maxAttempts: DefaultMaxAttempts,
		passScore:   DefaultPassScore,
		logger:      log.Default(),
	}
	if agent != nil {
		p.planner, p.writer, p.judge, p.coach = agent, agent, agent, agent
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.planner == nil || p.writer == nil || p.judge == nil || p.coach == nil {
		return nil, errors.New("pipeline needs a planner, storyteller, judge and word coach")
	}
	return p, nil
}

// Run produces one story. Only credential, planning and exhausted-retry
// failures are returned as errors; a draft that never passes the judge is
// still returned with OutcomeExhausted.
func (p *Pipeline) Run(ctx context.Context, req Request) (Result, error) {
	if req.Age <= 0 {
		req.Age = DefaultAge
	}
	if req.ID == "" {
		req.ID = uuid.NewString()
	}
	g := GuidelinesFor(req.Age)
	p.logger.Printf("[pipeline] req=%s topic=%q age=%d", req.ID, req.Topic, req.Age)

	plan, err := p.planner.Plan(ctx, req.Brief(), g)
	if err != nil {
		p.logger.Printf("[pipeline] req=%s planning failed: %v", req.ID, err)
		return Result{}, err
	}

	var (
		draft    string
		eval     Evaluation
		critique string
		outcome  Outcome
		cycles   int
	)
	for attempt := 0; ; attempt++ {
		draft, err = p.writer.Write(ctx, plan, g, critique)
		if err != nil {
			return Result{}, err
		}
		eval, err = p.judge.Evaluate(ctx, draft, g)
		if err != nil {
			return Result{}, err
		}
		cycles++
		p.logger.Printf("[pipeline] req=%s Judge Score: %d | Feedback: %s", req.ID, eval.Score, eval.Feedback)

		if eval.Score >= p.passScore {
			outcome = OutcomeAccepted
			break
		}
		if attempt >= p.maxAttempts {
			// Keep the last draft even if an earlier one scored higher.
			outcome = OutcomeExhausted
			break
		}
		critique = eval.Feedback
	}
	p.logger.Printf("[pipeline] req=%s %s after %d cycle(s), score=%d", req.ID, outcome, cycles, eval.Score)

	res := Result{
		Story:       draft,
		ReadingTime: ReadingTime(draft),
		Outcome:     outcome,
		Score:       eval.Score,
		Attempts:    cycles,
	}

	words, err := p.coach.ChallengeWords(ctx, draft, req.Age)
	if err != nil {
		p.logger.Printf("[pipeline] req=%s challenge words unavailable: %v", req.ID, err)
	}
	res.ChallengeWords = words

	if p.store != nil {
		ref, err := p.store.Save(ctx, Artifact{
			Title:          req.Topic,
			Story:          draft,
			ChallengeWords: words,
			Age:            req.Age,
			ReadingTime:    res.ReadingTime,
			Score:          eval.Score,
			Outcome:        outcome,
		})
		if err != nil {
			p.logger.Printf("[pipeline] req=%s could not save story: %v", req.ID, err)
		} else {
			res.Artifact = ref
		}
	}
	return res, nil
}

// String renders an outcome for log lines and CLI output.
func (o Outcome) String() string {
	if o == "" {
		return "unknown"
	}
	return string(o)
}
