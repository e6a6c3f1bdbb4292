package application

import (
	"context"

	"voiced-trainer/internal/domain"
)

// VoiceSource produces one Utterance per speaking turn. NextUtterance blocks
// until the learner finishes speaking (or typing, for text-backed sources).
type VoiceSource interface {
	Start(ctx context.Context) error
	Stop() error
	NextUtterance(ctx context.Context) (*domain.Utterance, error)
	Name() string
}
