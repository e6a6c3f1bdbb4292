package application

import (
	"context"

	"voiced-trainer/internal/domain"
)

// Tutor is the LLM collaborator: it prepares questions for a topic and
// evaluates learner answers against them.
type Tutor interface {
	GenerateQuestions(ctx context.Context, topic domain.Topic, n int) ([]domain.Question, error)
	Evaluate(ctx context.Context, q domain.Question, answer string) (*domain.Feedback, error)
}
