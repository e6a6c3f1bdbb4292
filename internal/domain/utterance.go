package domain

import "time"

// Utterance is one captured span of learner speech. A voice source produces
// it, the transcriber consumes it, and it is discarded afterwards.
type Utterance struct {
	// Text is set when the input arrived already transcribed, e.g. from the
	// console or a posted text answer. Samples and Encoded are empty then.
	Text string

	// Samples holds raw PCM16 audio captured from a microphone.
	Samples    []int16
	SampleRate int
	Channels   int

	// Encoded holds container audio (wav, mp3, ...) received from a file or
	// HTTP source, kept as-is for the transcription API.
	Encoded []byte
	Format  string
}

func (u *Utterance) IsText() bool {
	return u.Text != ""
}

func (u *Utterance) Empty() bool {
	return u.Text == "" && len(u.Samples) == 0 && len(u.Encoded) == 0
}

// Duration reports the length of a raw capture. Zero for text and encoded
// input, where the sample layout is unknown.
func (u *Utterance) Duration() time.Duration {
	if u.SampleRate == 0 || u.Channels == 0 || len(u.Samples) == 0 {
		return 0
	}
	frames := len(u.Samples) / u.Channels
	return time.Duration(frames) * time.Second / time.Duration(u.SampleRate)
}
