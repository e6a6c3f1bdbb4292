package store

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"voiced-trainer/internal/domain"
)

const (
	lockFile      = "preprocessed.lock"
	questionsFile = "questions.json"
)

// TopicStore persists preprocessed topics and questions as JSON files and
// serves them back to the trainer as the topic catalog.
type TopicStore struct {
	dir    string
	logger *slog.Logger

	mu     sync.RWMutex
	topics []domain.Topic
	index  map[string]*domain.Topic
}

func New(dir string, logger *slog.Logger) *TopicStore {
	return &TopicStore{
		dir:    dir,
		logger: logger,
		index:  make(map[string]*domain.Topic),
	}
}

// Preprocessed reports whether the lock file from a completed preprocessing
// run exists.
func (s *TopicStore) Preprocessed() bool {
	_, err := os.Stat(filepath.Join(s.dir, lockFile))
	return err == nil
}

func (s *TopicStore) WriteLock() error {
	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return fmt.Errorf("creating processed dir: %w", err)
	}
	path := filepath.Join(s.dir, lockFile)
	if err := os.WriteFile(path, []byte("preprocessing completed\n"), 0644); err != nil {
		return fmt.Errorf("writing lock file: %w", err)
	}
	s.logger.Info("created lock file", "path", path)
	return nil
}

func (s *TopicStore) SaveTopics(topics []domain.Topic) error {
	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return fmt.Errorf("creating processed dir: %w", err)
	}
	for i, topic := range topics {
		data, err := json.MarshalIndent(topic, "", "  ")
		if err != nil {
			return fmt.Errorf("marshaling topic %q: %w", topic.Title, err)
		}
		path := filepath.Join(s.dir, fmt.Sprintf("topic_%d.json", i+1))
		if err := os.WriteFile(path, data, 0644); err != nil {
			return fmt.Errorf("writing %s: %w", path, err)
		}
	}
	s.logger.Info("saved topics", "count", len(topics), "dir", s.dir)
	return nil
}

func (s *TopicStore) SaveQuestions(questions []domain.Question) error {
	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return fmt.Errorf("creating processed dir: %w", err)
	}
	data, err := json.MarshalIndent(questions, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling questions: %w", err)
	}
	path := filepath.Join(s.dir, questionsFile)
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	s.logger.Info("saved questions", "count", len(questions))
	return nil
}

// Questions loads the pregenerated question bank, if any.
func (s *TopicStore) Questions() ([]domain.Question, error) {
	data, err := os.ReadFile(filepath.Join(s.dir, questionsFile))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading questions: %w", err)
	}
	var questions []domain.Question
	if err := json.Unmarshal(data, &questions); err != nil {
		return nil, fmt.Errorf("parsing questions: %w", err)
	}
	return questions, nil
}

// Load reads every topic_*.json file into memory. A file that fails to parse
// is logged and skipped rather than failing the whole catalog.
func (s *TopicStore) Load(_ context.Context) error {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return fmt.Errorf("reading processed dir: %w", err)
	}

	var topics []domain.Topic
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasPrefix(name, "topic_") || !strings.HasSuffix(name, ".json") {
			continue
		}

		path := filepath.Join(s.dir, name)
		data, err := os.ReadFile(path)
		if err != nil {
			s.logger.Error("reading topic file", "path", path, "error", err)
			continue
		}
		var topic domain.Topic
		if err := json.Unmarshal(data, &topic); err != nil {
			s.logger.Error("parsing topic file", "path", path, "error", err)
			continue
		}
		topics = append(topics, topic)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.topics = topics
	s.index = make(map[string]*domain.Topic)
	for i := range s.topics {
		s.index[strings.ToLower(s.topics[i].Title)] = &s.topics[i]
	}

	s.logger.Info("topics loaded", "count", len(s.topics))
	return nil
}

func (s *TopicStore) Topics() []domain.Topic {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result := make([]domain.Topic, len(s.topics))
	copy(result, s.topics)
	return result
}

func (s *TopicStore) FindByTitle(title string) (*domain.Topic, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	key := strings.ToLower(strings.TrimSpace(title))

	if t, ok := s.index[key]; ok {
		return t, true
	}

	for i := range s.topics {
		if strings.Contains(strings.ToLower(s.topics[i].Title), key) {
			return &s.topics[i], true
		}
	}

	return nil, false
}

// Summary lists the topic titles, for inclusion in prompts.
func (s *TopicStore) Summary() string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var sb strings.Builder
	sb.WriteString("## Topics:\n")
	for _, t := range s.topics {
		sb.WriteString(fmt.Sprintf("- %s\n", t.Title))
	}
	return sb.String()
}
