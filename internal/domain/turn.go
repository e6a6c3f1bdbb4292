package domain

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// Turn pairs one learner answer with the tutor's feedback on it.
type Turn struct {
	ID         string
	TopicTitle string
	Question   string
	Answer     string
	Feedback   string
	AskedAt    time.Time
	AnsweredAt time.Time
}

func NewTurn(topicTitle, question string) Turn {
	return Turn{
		ID:         uuid.NewString(),
		TopicTitle: topicTitle,
		Question:   question,
		AskedAt:    time.Now(),
	}
}

// Transcript is the ordered record of completed turns for a single session.
// Turns are appended in the order they complete and never mutated afterwards.
// The session loop is the only writer.
type Transcript struct {
	mu    sync.Mutex
	turns []Turn
}

func (t *Transcript) Append(turn Turn) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.turns = append(t.turns, turn)
}

// Turns returns a copy of the recorded turns in insertion order.
func (t *Transcript) Turns() []Turn {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]Turn, len(t.turns))
	copy(out, t.turns)
	return out
}

func (t *Transcript) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.turns)
}
