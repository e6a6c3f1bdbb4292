package application

import (
	"context"

	"voiced-trainer/internal/domain"
)

// TopicCatalog gives the trainer access to the preprocessed study topics.
type TopicCatalog interface {
	Load(ctx context.Context) error
	Topics() []domain.Topic
	FindByTitle(title string) (*domain.Topic, bool)
	Summary() string
}
