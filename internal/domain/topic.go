package domain

import "strings"

type Topic struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

type Question struct {
	TopicTitle  string `json:"topic_title"`
	Question    string `json:"question"`
	AnswerGuide string `json:"answer_guide"`
}

// Feedback is the tutor's structured evaluation of one answer.
type Feedback struct {
	Summary  string  `json:"feedback"`
	FollowUp string  `json:"follow_up"`
	Score    float64 `json:"score"`
}

// IsExitPhrase reports whether a learner answer is one of the configured
// session-ending phrases. Transcriptions tend to carry trailing punctuation,
// so that is stripped before comparing.
func IsExitPhrase(text string, phrases []string) bool {
	norm := strings.ToLower(strings.TrimSpace(text))
	norm = strings.TrimRight(norm, ".!?,;")
	norm = strings.TrimSpace(norm)
	if norm == "" {
		return false
	}
	for _, p := range phrases {
		if norm == strings.ToLower(strings.TrimSpace(p)) {
			return true
		}
	}
	return false
}
