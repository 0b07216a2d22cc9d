package generator

import (
	"fmt"
	"strings"
)

// readAloudWPM is the read-aloud pace used for the estimate.
const readAloudWPM = 150

// WordCount counts whitespace-separated words.
func WordCount(text string) int {
	return len(strings.Fields(text))
}

// ReadingTime estimates minutes to read text aloud, rounded up: "2 min read".
func ReadingTime(text string) string {
	words := WordCount(text)
	minutes := (words + readAloudWPM - 1) / readAloudWPM
	return fmt.Sprintf("%d min read", minutes)
}

// Excerpt 截取正文前 limit 个字符，供书库列表展示。
func Excerpt(text string, limit int) string {
	joined := strings.Join(strings.Fields(text), " ")
	r := []rune(joined)
	if len(r) <= limit {
		return joined
	}
	return string(r[:limit])
}
