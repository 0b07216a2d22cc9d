package generator

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
)

// MockLLM 一个简单的占位实现，便于本地调试，不调用外部模型。
// It answers each Task with fixed, well-formed output so the whole
// pipeline can run offline.
type MockLLM struct{}

func (m MockLLM) Complete(_ context.Context, prompt Prompt, _ CallOptions) (Completion, error) {
	var text string
	switch prompt.Task {
	case TaskPlan:
		topic := strings.TrimPrefix(prompt.User, "Create a story outline for: ")
		plan, _ := json.Marshal(map[string]string{
			"reasoning":     "A small hero and a kind ending suit a bedtime story.",
			"setup":         fmt.Sprintf("A curious hero wakes up to a surprise: %s", topic),
			"confrontation": "Something goes wrong and friends must help each other.",
			"resolution":    "The hero finds a gentle, clever way to make things right.",
		})
		text = "```json\n" + string(plan) + "\n```"
	case TaskWrite:
		var sb strings.Builder
		sb.WriteString("Once upon a time, a curious little hero looked up at the stars.\n\n")
		sb.WriteString("根据提示生成的内容：\n\n")
		sb.WriteString(prompt.User)
		sb.WriteString("\n\nAnd with a yawn and a smile, everyone drifted off to sleep. The End.")
		text = sb.String()
	case TaskJudge:
		text = `{"thought_process": "Safe, gentle and well paced.", "score": 9, "feedback": "Lovely as it is."}`
	case TaskChallenge:
		text = "1. Curious - wanting to know or learn something.\n2. Gentle - soft and kind.\n3. Drifted - moved slowly without trying."
	default:
		text = prompt.User
	}
	return Completion{
		Text: text,
		Usage: Usage{
			InputTokens:  int64(WordCount(prompt.System) + WordCount(prompt.User)),
			OutputTokens: int64(WordCount(text)),
		},
	}, nil
}
