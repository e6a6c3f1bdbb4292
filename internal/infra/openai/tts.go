package openai

import (
	"context"
	"fmt"
	"io"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"voiced-trainer/internal/infra"
)

// The speech API returns raw PCM16 mono at a fixed rate when asked for pcm.
const ttsSampleRate = 24000

// Player plays a clip of raw PCM16 audio.
type Player interface {
	Play(ctx context.Context, pcm []byte, sampleRate int) error
}

// Speaker synthesizes text with the OpenAI speech API and hands the audio to
// a Player.
type Speaker struct {
	client *Client
	model  string
	voice  string
	player Player
}

func NewSpeaker(client *Client, model, voice string, player Player) *Speaker {
	return &Speaker{
		client: client,
		model:  model,
		voice:  voice,
		player: player,
	}
}

func (s *Speaker) Say(ctx context.Context, text string) error {
	if strings.TrimSpace(text) == "" {
		return nil
	}

	var pcm []byte
	err := infra.WithRetry(ctx, infra.DefaultRetryConfig(), func() error {
		resp, err := s.client.api.CreateSpeech(ctx, openai.CreateSpeechRequest{
			Model:          openai.SpeechModel(s.model),
			Input:          text,
			Voice:          openai.SpeechVoice(s.voice),
			ResponseFormat: openai.SpeechResponseFormatPcm,
		})
		if err != nil {
			return classify(err)
		}
		defer resp.Close()

		data, err := io.ReadAll(resp)
		if err != nil {
			return fmt.Errorf("reading speech audio: %w", err)
		}
		pcm = data
		return nil
	})
	if err != nil {
		return fmt.Errorf("synthesizing speech: %w", err)
	}

	return s.player.Play(ctx, pcm, ttsSampleRate)
}
