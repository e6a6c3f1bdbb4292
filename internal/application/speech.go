package application

import (
	"context"

	"voiced-trainer/internal/domain"
)

type Transcriber interface {
	Transcribe(ctx context.Context, u *domain.Utterance) (string, error)
}

// Speaker voices a message to the learner. The trainer always prints messages
// as well, so speaking is best-effort.
type Speaker interface {
	Say(ctx context.Context, text string) error
}

// NoopSpeaker is used in text-only mode where output is printed only.
type NoopSpeaker struct{}

func (n *NoopSpeaker) Say(_ context.Context, _ string) error {
	return nil
}
