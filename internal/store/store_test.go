package store_test

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"voiced-trainer/internal/domain"
	"voiced-trainer/internal/store"
)

func newStore(t *testing.T) (*store.TopicStore, string) {
	t.Helper()
	dir := t.TempDir()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return store.New(dir, logger), dir
}

func TestTopicStore_SaveAndLoad(t *testing.T) {
	s, dir := newStore(t)

	topics := []domain.Topic{
		{Title: "Thermodynamics", Content: "Heat and energy."},
		{Title: "Optics", Content: "Light and lenses."},
	}
	require.NoError(t, s.SaveTopics(topics))

	_, err := os.Stat(filepath.Join(dir, "topic_1.json"))
	require.NoError(t, err)
	_, err = os.Stat(filepath.Join(dir, "topic_2.json"))
	require.NoError(t, err)

	require.NoError(t, s.Load(context.Background()))
	got := s.Topics()
	require.Len(t, got, 2)
	require.Equal(t, "Thermodynamics", got[0].Title)
	require.Equal(t, "Light and lenses.", got[1].Content)
}

func TestTopicStore_FindByTitle(t *testing.T) {
	s, _ := newStore(t)
	require.NoError(t, s.SaveTopics([]domain.Topic{
		{Title: "Quantum Mechanics", Content: "..."},
	}))
	require.NoError(t, s.Load(context.Background()))

	// exact, case-insensitive
	topic, ok := s.FindByTitle("quantum mechanics")
	require.True(t, ok)
	require.Equal(t, "Quantum Mechanics", topic.Title)

	// substring
	topic, ok = s.FindByTitle("quantum")
	require.True(t, ok)
	require.Equal(t, "Quantum Mechanics", topic.Title)

	_, ok = s.FindByTitle("astrology")
	require.False(t, ok)
}

func TestTopicStore_LockLifecycle(t *testing.T) {
	s, _ := newStore(t)

	require.False(t, s.Preprocessed())
	require.NoError(t, s.WriteLock())
	require.True(t, s.Preprocessed())
}

func TestTopicStore_Questions(t *testing.T) {
	s, _ := newStore(t)

	// absent bank is not an error
	questions, err := s.Questions()
	require.NoError(t, err)
	require.Nil(t, questions)

	bank := []domain.Question{
		{TopicTitle: "Optics", Question: "What is refraction?", AnswerGuide: "bending of light"},
	}
	require.NoError(t, s.SaveQuestions(bank))

	questions, err = s.Questions()
	require.NoError(t, err)
	require.Len(t, questions, 1)
	require.Equal(t, "What is refraction?", questions[0].Question)
}

func TestTopicStore_LoadSkipsBadFiles(t *testing.T) {
	s, dir := newStore(t)
	require.NoError(t, s.SaveTopics([]domain.Topic{{Title: "Good", Content: "ok"}}))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "topic_99.json"), []byte("{not json"), 0644))

	require.NoError(t, s.Load(context.Background()))
	require.Len(t, s.Topics(), 1)
}

func TestTopicStore_Summary(t *testing.T) {
	s, _ := newStore(t)
	require.NoError(t, s.SaveTopics([]domain.Topic{
		{Title: "Alpha"}, {Title: "Beta"},
	}))
	require.NoError(t, s.Load(context.Background()))

	summary := s.Summary()
	require.Contains(t, summary, "- Alpha")
	require.Contains(t, summary, "- Beta")
}
