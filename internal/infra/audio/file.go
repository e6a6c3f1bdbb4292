package audio

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"voiced-trainer/internal/domain"
)

// FileSource polls a directory for dropped answer files. Audio files are
// handed to the transcriber as-is; .txt files are treated as already
// transcribed answers. Useful for machines without a microphone and in tests.
type FileSource struct {
	dir       string
	processed map[string]bool
	mu        sync.Mutex
}

func NewFileSource(dir string) *FileSource {
	return &FileSource{
		dir:       dir,
		processed: make(map[string]bool),
	}
}

func (f *FileSource) Name() string {
	return "file"
}

func (f *FileSource) Start(_ context.Context) error {
	if err := os.MkdirAll(f.dir, 0755); err != nil {
		return fmt.Errorf("creating answers dir: %w", err)
	}
	return nil
}

func (f *FileSource) Stop() error {
	return nil
}

func (f *FileSource) NextUtterance(ctx context.Context) (*domain.Utterance, error) {
	ticker := time.NewTicker(500 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ticker.C:
			utt, err := f.checkForNewFile()
			if err != nil {
				return nil, err
			}
			if utt != nil {
				return utt, nil
			}
		}
	}
}

func (f *FileSource) checkForNewFile() (*domain.Utterance, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	entries, err := os.ReadDir(f.dir)
	if err != nil {
		return nil, fmt.Errorf("reading answers dir: %w", err)
	}

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		ext := strings.ToLower(filepath.Ext(entry.Name()))
		switch ext {
		case ".wav", ".mp3", ".m4a", ".webm", ".txt":
		default:
			continue
		}

		path := filepath.Join(f.dir, entry.Name())
		if f.processed[path] {
			continue
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading file %s: %w", path, err)
		}

		f.processed[path] = true
		os.Rename(path, path+".processed")

		if ext == ".txt" {
			return &domain.Utterance{Text: strings.TrimSpace(string(data))}, nil
		}
		return &domain.Utterance{Encoded: data, Format: strings.TrimPrefix(ext, ".")}, nil
	}

	return nil, nil
}
