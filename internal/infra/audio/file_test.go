package audio_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"voiced-trainer/internal/infra/audio"
)

func TestFileSource_AudioFile(t *testing.T) {
	tmpDir := t.TempDir()

	content := []byte("RIFF....WAVEfmt audio data")
	if err := os.WriteFile(filepath.Join(tmpDir, "answer.wav"), content, 0644); err != nil {
		t.Fatalf("writing test file: %v", err)
	}

	source := audio.NewFileSource(tmpDir)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if err := source.Start(ctx); err != nil {
		t.Fatalf("starting source: %v", err)
	}

	utt, err := source.NextUtterance(ctx)
	if err != nil {
		t.Fatalf("reading utterance: %v", err)
	}
	if len(utt.Encoded) == 0 {
		t.Error("expected encoded audio")
	}
	if utt.Format != "wav" {
		t.Errorf("format: got %q, want wav", utt.Format)
	}

	// consumed file is renamed so it is not picked up again
	if _, err := os.Stat(filepath.Join(tmpDir, "answer.wav.processed")); err != nil {
		t.Error("expected file to be renamed after processing")
	}
}

func TestFileSource_TextFile(t *testing.T) {
	tmpDir := t.TempDir()

	if err := os.WriteFile(filepath.Join(tmpDir, "answer.txt"), []byte("typed answer\n"), 0644); err != nil {
		t.Fatalf("writing test file: %v", err)
	}

	source := audio.NewFileSource(tmpDir)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if err := source.Start(ctx); err != nil {
		t.Fatalf("starting source: %v", err)
	}

	utt, err := source.NextUtterance(ctx)
	if err != nil {
		t.Fatalf("reading utterance: %v", err)
	}
	if utt.Text != "typed answer" {
		t.Errorf("text: got %q, want %q", utt.Text, "typed answer")
	}
}

func TestFileSource_IgnoresOtherExtensions(t *testing.T) {
	tmpDir := t.TempDir()

	if err := os.WriteFile(filepath.Join(tmpDir, "notes.md"), []byte("irrelevant"), 0644); err != nil {
		t.Fatalf("writing test file: %v", err)
	}

	source := audio.NewFileSource(tmpDir)

	ctx, cancel := context.WithTimeout(context.Background(), 1200*time.Millisecond)
	defer cancel()

	if err := source.Start(ctx); err != nil {
		t.Fatalf("starting source: %v", err)
	}

	_, err := source.NextUtterance(ctx)
	if err != context.DeadlineExceeded {
		t.Errorf("expected timeout with no matching files, got %v", err)
	}
}
