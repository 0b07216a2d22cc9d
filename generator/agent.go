package generator

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
)

const (
	planTemperature  = 0.7
	storyTemperature = 0.8
	judgeTemperature = 0.1
	defaultMaxTokens = 2000
	challengeTokens  = 200

	noFeedback = "No feedback provided."
)

// ErrPlanningFailed means the planner produced nothing usable. No plan, no story.
var ErrPlanningFailed = errors.New("planning failed")

// Agent 负责规划、写作、评审三个角色。
// Every role is the same executor: build a prompt, invoke the model,
// optionally parse JSON out of the reply.
type Agent struct {
	llm    ModelInvoker
	logger *log.Logger
}

func NewAgent(llm ModelInvoker, logger *log.Logger) (*Agent, error) {
	if llm == nil {
		return nil, errors.New("model invoker is required")
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Agent{llm: llm, logger: logger}, nil
}

func (a *Agent) text(ctx context.Context, prompt Prompt, opts CallOptions) (string, error) {
	if opts.MaxTokens == 0 {
		opts.MaxTokens = defaultMaxTokens
	}
	return a.llm.Invoke(ctx, prompt, opts)
}

func (a *Agent) structured(ctx context.Context, prompt Prompt, opts CallOptions) (map[string]any, error) {
	opts.JSONMode = true
	raw, err := a.text(ctx, prompt, opts)
	if err != nil {
		return nil, err
	}
	m := ExtractJSON(raw)
	if len(m) == 0 {
		a.logger.Printf("[%s] warning: could not parse JSON from reply: %.50q", prompt.Task, raw)
	}
	return m, nil
}

// Plan turns a request into a three-act outline. An entirely empty reply is
// ErrPlanningFailed; partially filled plans are returned as is.
func (a *Agent) Plan(ctx context.Context, request string, g AgeGuidelines) (StoryPlan, error) {
	a.logger.Printf("[plan] generating story arc")
	m, err := a.structured(ctx, BuildPlanPrompt(request, g), CallOptions{Temperature: planTemperature})
	if err != nil {
		return StoryPlan{}, fmt.Errorf("plan: %w", err)
	}
	if len(m) == 0 {
		return StoryPlan{}, ErrPlanningFailed
	}
	return StoryPlan{
		Reasoning:     stringField(m, "reasoning"),
		Setup:         stringField(m, "setup"),
		Confrontation: stringField(m, "confrontation"),
		Resolution:    stringField(m, "resolution"),
	}, nil
}

// Write produces a draft from the plan. critique is the previous verdict's
// feedback, empty on the first pass.
func (a *Agent) Write(ctx context.Context, plan StoryPlan, g AgeGuidelines, critique string) (string, error) {
	a.logger.Printf("[write] writing story (revision=%t)", critique != "")
	draft, err := a.text(ctx, BuildStoryPrompt(plan, g, critique), CallOptions{Temperature: storyTemperature})
	if err != nil {
		return "", fmt.Errorf("write: %w", err)
	}
	return strings.TrimSpace(draft), nil
}

// Evaluate scores a draft.
func (a *Agent) Evaluate(ctx context.Context, draft string, g AgeGuidelines) (Evaluation, error) {
	a.logger.Printf("[judge] critiquing draft")
	m, err := a.structured(ctx, BuildJudgePrompt(draft, g), CallOptions{Temperature: judgeTemperature})
	if err != nil {
		return Evaluation{}, fmt.Errorf("judge: %w", err)
	}
	ev := Evaluation{
		ThoughtProcess: stringField(m, "thought_process"),
		Score:          intField(m, "score", 0),
		Feedback:       stringField(m, "feedback"),
	}
	if ev.Feedback == "" {
		ev.Feedback = noFeedback
	}
	return ev, nil
}

// ChallengeWords picks three hard words from text and defines them for age.
func (a *Agent) ChallengeWords(ctx context.Context, text string, age int) (string, error) {
	out, err := a.text(ctx, BuildChallengePrompt(text, age), CallOptions{
		Temperature: planTemperature,
		MaxTokens:   challengeTokens,
	})
	if err != nil {
		return "", fmt.Errorf("challenge words: %w", err)
	}
	return strings.TrimSpace(out), nil
}
