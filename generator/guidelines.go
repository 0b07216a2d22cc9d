package generator

// AgeGuidelines is the style profile a story is planned, written and judged against.
type AgeGuidelines struct {
	Style      string `json:"style" yaml:"style"`
	Vocabulary string `json:"vocabulary" yaml:"vocabulary"`
	Themes     string `json:"themes" yaml:"themes"`
	Complexity string `json:"complexity" yaml:"complexity"`
}

var (
	earlyReaders = AgeGuidelines{
		Style:      "Simple, repetitive, and rhythmic. Focus on clear cause-and-effect.",
		Vocabulary: "Concrete nouns (dog, ball) and action verbs (run, jump). Avoid abstract concepts.",
		Themes:     "Friendship, sharing, daily routines, magical helpers, clear 'good vs bad'.",
		Complexity: "Linear plot. One main character. Happy, definite ending.",
	}
	middleReaders = AgeGuidelines{
		Style:      "Engaging and descriptive. Start using longer sentences and some puns/humor.",
		Vocabulary: "Wider range, introduction of adverbs and adjectives. Simple figurative language.",
		Themes:     "Empathy, courage, problem-solving, overcoming fear, school/social situations.",
		Complexity: "Character having a clear goal. Introduction of internal monologue/feelings.",
	}
	olderReaders = AgeGuidelines{
		Style:      "Sophisticated and immersive. Use idioms, metaphors, and varied sentence structures.",
		Vocabulary: "Rich, specific, and abstract words (courage, betrayal, ancient, mysterious).",
		Themes:     "Identity, loyalty, moral dilemmas, accepting differences, exploring the wider world.",
		Complexity: "Subplots allowed. Characters faced with tough choices. Personal growth is key.",
	}
)

// GuidelinesFor returns the profile for age: 6 and under, 7-8, or 9 and up.
func GuidelinesFor(age int) AgeGuidelines {
	switch {
	case age <= 6:
		return earlyReaders
	case age <= 8:
		return middleReaders
	default:
		return olderReaders
	}
}
