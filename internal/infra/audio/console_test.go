package audio_test

import (
	"context"
	"io"
	"strings"
	"testing"

	"voiced-trainer/internal/infra/audio"
)

func TestConsoleSource_ReadsLines(t *testing.T) {
	source := audio.NewConsoleSource(strings.NewReader("first answer\nsecond answer\n"), io.Discard)

	ctx := context.Background()
	if err := source.Start(ctx); err != nil {
		t.Fatalf("starting source: %v", err)
	}

	for _, want := range []string{"first answer", "second answer"} {
		utt, err := source.NextUtterance(ctx)
		if err != nil {
			t.Fatalf("reading line: %v", err)
		}
		if utt.Text != want {
			t.Errorf("got %q, want %q", utt.Text, want)
		}
	}

	// input exhausted
	if _, err := source.NextUtterance(ctx); err == nil {
		t.Error("expected error after EOF")
	}
}

func TestConsoleSource_ContextCancel(t *testing.T) {
	// a reader that never produces a line
	source := audio.NewConsoleSource(blockingReader{}, io.Discard)

	ctx, cancel := context.WithCancel(context.Background())
	if err := source.Start(ctx); err != nil {
		t.Fatalf("starting source: %v", err)
	}
	cancel()

	if _, err := source.NextUtterance(ctx); err != context.Canceled {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

type blockingReader struct{}

func (blockingReader) Read(p []byte) (int, error) {
	select {}
}
