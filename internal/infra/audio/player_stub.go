//go:build !portaudio
// +build !portaudio

package audio

import (
	"context"
	"fmt"
	"log/slog"
)

// PortAudioPlayer stub when portaudio is not available
type PortAudioPlayer struct {
	logger *slog.Logger
}

func NewPortAudioPlayer(logger *slog.Logger) *PortAudioPlayer {
	return &PortAudioPlayer{logger: logger}
}

func (p *PortAudioPlayer) Play(_ context.Context, _ []byte, _ int) error {
	return fmt.Errorf("audio playback not available: rebuild with -tags portaudio")
}
