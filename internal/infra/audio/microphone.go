//go:build portaudio
// +build portaudio

package audio

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/gordonklaus/portaudio"

	"voiced-trainer/internal/domain"
)

const framesPerBuffer = 1024

// MicrophoneSource records one utterance per call, using trailing silence to
// decide when the learner has finished speaking.
type MicrophoneSource struct {
	stream           *portaudio.Stream
	buffer           []int16
	sampleRate       int
	silenceThreshold int16
	maxRecord        time.Duration
	logger           *slog.Logger
}

func NewMicrophoneSource(sampleRate, silenceThreshold, maxRecordSeconds int, logger *slog.Logger) *MicrophoneSource {
	return &MicrophoneSource{
		buffer:           make([]int16, framesPerBuffer),
		sampleRate:       sampleRate,
		silenceThreshold: int16(silenceThreshold),
		maxRecord:        time.Duration(maxRecordSeconds) * time.Second,
		logger:           logger,
	}
}

func (m *MicrophoneSource) Name() string {
	return "microphone"
}

func (m *MicrophoneSource) Start(_ context.Context) error {
	if err := portaudio.Initialize(); err != nil {
		return fmt.Errorf("initializing portaudio: %w", err)
	}

	stream, err := portaudio.OpenDefaultStream(1, 0, float64(m.sampleRate), framesPerBuffer, m.buffer)
	if err != nil {
		portaudio.Terminate()
		return fmt.Errorf("opening input stream: %w", err)
	}
	m.stream = stream

	if err := m.stream.Start(); err != nil {
		return fmt.Errorf("starting input stream: %w", err)
	}

	m.logger.Info("microphone started", "sample_rate", m.sampleRate)
	return nil
}

func (m *MicrophoneSource) Stop() error {
	if m.stream != nil {
		m.stream.Stop()
		m.stream.Close()
	}
	portaudio.Terminate()
	return nil
}

// NextUtterance blocks until speech is heard, then records until one second
// of trailing silence or the configured maximum duration.
func (m *MicrophoneSource) NextUtterance(ctx context.Context) (*domain.Utterance, error) {
	maxSamples := int(m.maxRecord.Seconds()) * m.sampleRate
	silenceLimit := m.sampleRate // one second of trailing silence

	samples := make([]int16, 0, m.sampleRate*5)
	silentRun := 0
	heardSpeech := false

	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		if err := m.stream.Read(); err != nil {
			return nil, fmt.Errorf("reading from input stream: %w", err)
		}

		silent := m.isSilent(m.buffer)

		if !heardSpeech {
			if silent {
				continue // skip leading silence
			}
			heardSpeech = true
		}

		chunk := make([]int16, len(m.buffer))
		copy(chunk, m.buffer)
		samples = append(samples, chunk...)

		if silent {
			silentRun += len(m.buffer)
		} else {
			silentRun = 0
		}

		if silentRun > silenceLimit || len(samples) >= maxSamples {
			break
		}
	}

	utt := &domain.Utterance{
		Samples:    samples,
		SampleRate: m.sampleRate,
		Channels:   1,
	}
	m.logger.Info("utterance captured", "duration", utt.Duration())
	return utt, nil
}

func (m *MicrophoneSource) isSilent(buf []int16) bool {
	for _, s := range buf {
		if s > m.silenceThreshold || s < -m.silenceThreshold {
			return false
		}
	}
	return true
}
