package generator

import "fmt"

// DefaultAge is used when a request carries no usable age.
const DefaultAge = 7

// Request is one story order from the presentation layer.
type Request struct {
	ID    string
	Topic string
	Name  string
	Age   int
}

// Brief is the enriched request handed to the planner.
func (r Request) Brief() string {
	s := fmt.Sprintf("Topic: %s.", r.Topic)
	if r.Name != "" {
		s += fmt.Sprintf(" Main character name: %s.", r.Name)
	}
	return s + fmt.Sprintf(" Audience Age: %d.", r.Age)
}

// StoryPlan is the three-act outline. Fields may be empty when the model
// omitted them.
type StoryPlan struct {
	Reasoning     string `json:"reasoning" yaml:"reasoning"`
	Setup         string `json:"setup" yaml:"setup"`
	Confrontation string `json:"confrontation" yaml:"confrontation"`
	Resolution    string `json:"resolution" yaml:"resolution"`
}

// Evaluation is the judge's verdict on one draft. Score is 0 when the
// model omitted it, so a missing score never passes the quality gate.
type Evaluation struct {
	ThoughtProcess string `json:"thought_process" yaml:"thought_process"`
	Score          int    `json:"score" yaml:"score"`
	Feedback       string `json:"feedback" yaml:"feedback"`
}

// Outcome is how the refinement loop ended.
type Outcome string

const (
	// OutcomeAccepted means the last draft met the pass score.
	OutcomeAccepted Outcome = "accepted"
	// OutcomeExhausted means revisions ran out; the last draft is returned anyway.
	OutcomeExhausted Outcome = "exhausted"
)

// Result is the finished story plus derived extras. Callers must not assume
// Story cleared the pass score; check Outcome.
type Result struct {
	Story          string  `json:"story" yaml:"story"`
	ChallengeWords string  `json:"challenge_words" yaml:"challenge_words"`
	ReadingTime    string  `json:"reading_time" yaml:"reading_time"`
	Artifact       string  `json:"artifact_reference,omitempty" yaml:"artifact_reference,omitempty"`
	Outcome        Outcome `json:"outcome" yaml:"outcome"`
	Score          int     `json:"score" yaml:"score"`
	Attempts       int     `json:"attempts" yaml:"attempts"`
}

// Artifact is what gets handed to the persistence layer.
type Artifact struct {
	Title          string
	Story          string
	ChallengeWords string
	Age            int
	ReadingTime    string
	Score          int
	Outcome        Outcome
}
