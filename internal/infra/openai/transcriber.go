package openai

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"voiced-trainer/internal/domain"
	"voiced-trainer/internal/infra"
	"voiced-trainer/internal/infra/audio"
)

// Transcriber turns captured utterances into text with the Whisper API.
type Transcriber struct {
	client   *Client
	model    string
	language string
}

func NewTranscriber(client *Client, model, language string) *Transcriber {
	return &Transcriber{
		client:   client,
		model:    model,
		language: language,
	}
}

func (t *Transcriber) Transcribe(ctx context.Context, u *domain.Utterance) (string, error) {
	if u.IsText() {
		return u.Text, nil
	}
	if u.Empty() {
		return "", nil
	}

	data := u.Encoded
	filename := "answer." + u.Format
	if len(data) == 0 {
		data = audio.EncodeWAV(u.Samples, u.SampleRate, u.Channels)
		filename = "answer.wav"
	}

	var text string
	err := infra.WithRetry(ctx, infra.DefaultRetryConfig(), func() error {
		resp, err := t.client.api.CreateTranscription(ctx, openai.AudioRequest{
			Model:    t.model,
			FilePath: filename,
			Reader:   bytes.NewReader(data),
			Language: t.language,
		})
		if err != nil {
			return classify(err)
		}
		text = resp.Text
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("transcribing audio: %w", err)
	}
	return strings.TrimSpace(text), nil
}
