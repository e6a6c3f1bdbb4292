package audio

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"sync"

	"voiced-trainer/internal/domain"
)

// ConsoleSource reads typed answers from an io.Reader, one line per
// utterance. Reading happens on its own goroutine so NextUtterance can honor
// context cancellation while stdin blocks.
type ConsoleSource struct {
	in    io.Reader
	out   io.Writer
	lines chan lineResult

	startOnce sync.Once
}

type lineResult struct {
	text string
	err  error
}

func NewConsoleSource(in io.Reader, out io.Writer) *ConsoleSource {
	return &ConsoleSource{
		in:    in,
		out:   out,
		lines: make(chan lineResult),
	}
}

func (c *ConsoleSource) Name() string {
	return "console"
}

func (c *ConsoleSource) Start(_ context.Context) error {
	c.startOnce.Do(func() {
		go func() {
			scanner := bufio.NewScanner(c.in)
			for scanner.Scan() {
				c.lines <- lineResult{text: scanner.Text()}
			}
			err := scanner.Err()
			if err == nil {
				err = io.EOF
			}
			c.lines <- lineResult{err: err}
			close(c.lines)
		}()
	})
	return nil
}

func (c *ConsoleSource) Stop() error {
	return nil
}

func (c *ConsoleSource) NextUtterance(ctx context.Context) (*domain.Utterance, error) {
	fmt.Fprint(c.out, "> ")

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case line, ok := <-c.lines:
		if !ok {
			return nil, io.EOF
		}
		if line.err != nil {
			return nil, fmt.Errorf("reading input: %w", line.err)
		}
		return &domain.Utterance{Text: line.text}, nil
	}
}
