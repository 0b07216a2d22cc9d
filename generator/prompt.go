package generator

import (
	"fmt"
	"strings"
)

// Task names the role a prompt is built for. It labels log lines and lets
// offline clients answer per role.
type Task string

const (
	TaskPlan      Task = "plan"
	TaskWrite     Task = "write"
	TaskJudge     Task = "judge"
	TaskChallenge Task = "challenge"
)

// Prompt 表示发送给 LLM 的消息集合。
type Prompt struct {
	Task    Task
	System  string
	User    string
	History []Message
}

// Message 用于少量历史（可选）。
type Message struct {
	Role    string
	Content string
}

const planExample = `Request: 'A mouse who wants to fly'
Output: {
  "reasoning": "The theme of ambition vs limitation works well here. Conflict is physical inability. Resolution should be creative, not magic.",
  "setup": "Milo the mouse watches birds and builds wings from leaves.",
  "confrontation": "He tries to fly but crashes. The other mice laugh. A hawk chases him.",
  "resolution": "Milo uses his failed wings as a glider to escape the hawk, realizing he can glide if not fly."
}`

// BuildPlanPrompt asks for a three-act outline as JSON.
func BuildPlanPrompt(request string, g AgeGuidelines) Prompt {
	var sb strings.Builder
	sb.WriteString("You are a world-class narrative architect for children's literature.\n")
	sb.WriteString(fmt.Sprintf("Target Audience Profile: %s\n", g.Complexity))
	sb.WriteString(fmt.Sprintf("Target Themes: %s\n", g.Themes))
	sb.WriteString("Design a captivating, original 3-Act story structure for the user's request.\n")
	sb.WriteString("GUIDELINES:\n")
	sb.WriteString("- Protagonist: give them a clear motivation and a distinct personality trait.\n")
	sb.WriteString("- Conflict: a meaningful challenge that requires the protagonist to grow.\n")
	sb.WriteString("- Setup: introduce the status quo and the inciting incident.\n")
	sb.WriteString("- Confrontation: rising action where obstacles get tougher.\n")
	sb.WriteString("- Resolution: a satisfying conclusion where the hero succeeds through their own effort.\n\n")
	sb.WriteString("EXAMPLE OF GOOD PLANNING:\n")
	sb.WriteString(planExample)
	sb.WriteString("\n\nOutput must be valid JSON with keys: \"reasoning\", \"setup\", \"confrontation\", \"resolution\".")

	return Prompt{
		Task:   TaskPlan,
		System: sb.String(),
		User:   fmt.Sprintf("Create a story outline for: %s", request),
	}
}

// BuildStoryPrompt asks for prose following the plan beats. The plan's
// reasoning is deliberately not forwarded. A non-empty critique becomes a
// revision directive quoting it verbatim.
func BuildStoryPrompt(plan StoryPlan, g AgeGuidelines, critique string) Prompt {
	var sb strings.Builder
	sb.WriteString("You are a master storyteller writing for a specific age group.\n")
	sb.WriteString("Adhere to these STYLE GUIDELINES strictly:\n")
	sb.WriteString(fmt.Sprintf("- Voice/Style: %s\n", g.Style))
	sb.WriteString(fmt.Sprintf("- Vocabulary Level: %s\n", g.Vocabulary))
	sb.WriteString("Write a story based STRICTLY on the provided outline.\n")
	sb.WriteString("STORYTELLING RULES:\n")
	sb.WriteString("1. Show, Don't Tell: use sensory details suitable for the age group.\n")
	sb.WriteString("2. Pacing: keep it engaging.\n")
	sb.WriteString("3. Tone: adventurous, heartwarming, and safe.\n")
	sb.WriteString("Length: 400-600 words.")

	var user strings.Builder
	user.WriteString("Here is the Narrative Plan:\n")
	user.WriteString(fmt.Sprintf("1. Setup: %s\n", plan.Setup))
	user.WriteString(fmt.Sprintf("2. Confrontation: %s\n", plan.Confrontation))
	user.WriteString(fmt.Sprintf("3. Resolution: %s\n", plan.Resolution))
	if critique != "" {
		user.WriteString("\n\nIMPORTANT: The previous draft had issues. ")
		user.WriteString(fmt.Sprintf("The Editor (Judge) provided this feedback: '%s' ", critique))
		user.WriteString("Refine the story to address these points specifically.")
	}

	return Prompt{
		Task:   TaskWrite,
		System: sb.String(),
		User:   user.String(),
	}
}

// BuildJudgePrompt asks for a JSON verdict against four fixed criteria.
func BuildJudgePrompt(draft string, g AgeGuidelines) Prompt {
	var sb strings.Builder
	sb.WriteString("You are a critical, discerning editor for a top-tier children's publisher. ")
	sb.WriteString("You generally only accept stories that are exceptional.\n")
	sb.WriteString("Target Audience Criteria:\n")
	sb.WriteString(fmt.Sprintf("- Expected Vocabulary: %s\n", g.Vocabulary))
	sb.WriteString(fmt.Sprintf("- Expected Themes: %s\n", g.Themes))
	sb.WriteString("EVALUATION CRITERIA:\n")
	sb.WriteString("1. Safety: (Pass/Fail) No violence, gore, scary themes, or inappropriate language.\n")
	sb.WriteString("2. Age Appropriateness: does it match the target profile above?\n")
	sb.WriteString("3. Show, Don't Tell: does the story use imagery and action rather than exposition?\n")
	sb.WriteString("4. Engagement: is the pacing good? Is the ending satisfying?\n\n")
	sb.WriteString("Output valid JSON with keys:\n")
	sb.WriteString("- \"thought_process\": (string) internal monologue analyzing the story step-by-step.\n")
	sb.WriteString("- \"score\": (integer 1-10)\n")
	sb.WriteString("- \"feedback\": (string) be specific. If scoring < 8, explain exactly what to improve.")

	return Prompt{
		Task:   TaskJudge,
		System: sb.String(),
		User:   fmt.Sprintf("Story Text:\n%s", draft),
	}
}

// BuildChallengePrompt asks for three hard words from text, defined for a reader of age.
func BuildChallengePrompt(text string, age int) Prompt {
	return Prompt{
		Task: TaskChallenge,
		User: fmt.Sprintf("Identify 3 challenging words from this text for a %d-year-old and define them simply:\n\n%s", age, text),
	}
}
