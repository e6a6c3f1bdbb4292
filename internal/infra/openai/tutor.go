package openai

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"voiced-trainer/internal/domain"
)

const (
	questionSystemPrompt = "You are a helpful assistant that creates educational assessment questions."
	evalSystemPrompt     = "You are a knowledgeable and supportive tutor evaluating a student's answer."
)

// Tutor generates study questions and evaluates spoken answers through the
// chat API.
type Tutor struct {
	client *Client
	logger *slog.Logger
}

func NewTutor(client *Client, logger *slog.Logger) *Tutor {
	return &Tutor{client: client, logger: logger}
}

func (t *Tutor) GenerateQuestions(ctx context.Context, topic domain.Topic, n int) ([]domain.Question, error) {
	prompt := fmt.Sprintf(
		"Based on the following topic about '%s', create %d thought-provoking questions "+
			"that would test understanding and critical thinking. For each question, also provide a "+
			"brief guide on what a good answer should include. Format the response so that each "+
			"question is clearly separated.\n\nTOPIC CONTENT:\n%s",
		topic.Title, n, topic.Content,
	)

	content, err := t.client.Complete(ctx, questionSystemPrompt, prompt)
	if err != nil {
		return nil, fmt.Errorf("generating questions for %q: %w", topic.Title, err)
	}

	questions := ParseQuestions(content, topic.Title, n)
	if len(questions) == 0 {
		return nil, fmt.Errorf("no questions parsed from response for %q", topic.Title)
	}
	return questions, nil
}

func (t *Tutor) Evaluate(ctx context.Context, q domain.Question, answer string) (*domain.Feedback, error) {
	prompt := fmt.Sprintf(
		"Evaluate the student's answer to the following question about %s.\n\n"+
			"Question: %s\n\n"+
			"A good answer should include: %s\n\n"+
			"Student's answer: %s\n\n"+
			"Provide constructive feedback, highlighting strengths and areas for improvement. "+
			"Be encouraging but honest, in a conversational tutoring style suitable for reading aloud.\n\n"+
			"Respond ONLY with valid JSON (no markdown, no backticks):\n"+
			`{"feedback": "spoken feedback text", "follow_up": "one follow-up question to deepen understanding", "score": 0.0}`+
			"\nwhere score is between 0.0 and 1.0.",
		q.TopicTitle, q.Question, q.AnswerGuide, answer,
	)

	content, err := t.client.Complete(ctx, evalSystemPrompt, prompt)
	if err != nil {
		return nil, fmt.Errorf("evaluating answer: %w", err)
	}

	cleaned := stripFences(content)

	var fb domain.Feedback
	if err := json.Unmarshal([]byte(cleaned), &fb); err != nil || fb.Summary == "" {
		// some responses ignore the JSON instruction; use the raw text
		t.logger.Warn("feedback was not valid JSON, using raw text")
		return &domain.Feedback{Summary: cleaned}, nil
	}
	return &fb, nil
}

// ParseQuestions extracts questions and answer guides from free-form model
// output: blocks separated by blank lines, the question ending at the first
// question mark, the guide following it.
func ParseQuestions(text, topicTitle string, max int) []domain.Question {
	var questions []domain.Question

	for _, block := range strings.Split(text, "\n\n") {
		if !strings.Contains(block, "?") {
			continue
		}

		idx := strings.Index(block, "?")
		question := stripQuestionPrefix(strings.TrimSpace(block[:idx+1]))
		guide := stripGuidePrefix(strings.TrimSpace(block[idx+1:]))

		if question == "" || question == "?" {
			continue
		}

		questions = append(questions, domain.Question{
			TopicTitle:  topicTitle,
			Question:    question,
			AnswerGuide: guide,
		})
		if len(questions) >= max {
			break
		}
	}

	return questions
}

// stripQuestionPrefix removes list numbering and "Question:" style labels.
func stripQuestionPrefix(q string) string {
	q = strings.Trim(q, "*_ ")

	if i := strings.Index(q, ":"); i >= 0 {
		head := strings.ToLower(strings.TrimSpace(q[:i]))
		head = strings.TrimLeft(head, "0123456789.) ")
		head = strings.TrimRight(head, "0123456789 ")
		head = strings.Trim(head, "*_ ")
		if head == "question" || head == "q" {
			return strings.TrimSpace(q[i+1:])
		}
	}

	if len(q) > 0 && q[0] >= '0' && q[0] <= '9' {
		if i := strings.Index(q, ". "); i >= 0 {
			return strings.TrimSpace(q[i+2:])
		}
	}

	return q
}

func stripGuidePrefix(g string) string {
	g = strings.TrimSpace(strings.TrimLeft(g, "*_ \n"))
	lower := strings.ToLower(g)
	for _, prefix := range []string{"a good answer should include:", "good answer:", "guide:", "answer:"} {
		if strings.HasPrefix(lower, prefix) {
			return strings.TrimSpace(g[len(prefix):])
		}
	}
	return g
}

// stripFences removes a markdown code fence wrapped around a JSON payload.
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}
