package application

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math/rand"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"

	"voiced-trainer/internal/domain"
)

const (
	welcomeMessage = "Welcome to VoicedTrainer! I'll ask you questions about topics from your material. " +
		"Try to answer as completely as you can. Say 'exit' at any time to end the session."
	goodbyeMessage   = "Thank you for using VoicedTrainer. Goodbye!"
	completedMessage = "Congratulations! You've completed all the topics. Thank you for using VoicedTrainer. Goodbye!"
)

// Options tune the session loop itself; the collaborators are passed to
// NewTrainer directly.
type Options struct {
	Out               io.Writer
	QuestionsPerTopic int
	ExitPhrases       []string
	Shuffle           bool
}

// Trainer drives the interactive session: one conversational turn at a time,
// capture -> transcription -> evaluation -> playback, appending completed
// turns to the session transcript.
type Trainer struct {
	source      VoiceSource
	transcriber Transcriber
	speaker     Speaker
	tutor       Tutor
	catalog     TopicCatalog
	opts        Options
	logger      *slog.Logger

	transcript domain.Transcript
}

func NewTrainer(
	source VoiceSource,
	transcriber Transcriber,
	speaker Speaker,
	tutor Tutor,
	catalog TopicCatalog,
	opts Options,
	logger *slog.Logger,
) *Trainer {
	if opts.Out == nil {
		opts.Out = os.Stdout
	}
	if opts.QuestionsPerTopic <= 0 {
		opts.QuestionsPerTopic = 5
	}
	if len(opts.ExitPhrases) == 0 {
		opts.ExitPhrases = []string{"exit", "stop", "quit"}
	}
	return &Trainer{
		source:      source,
		transcriber: transcriber,
		speaker:     speaker,
		tutor:       tutor,
		catalog:     catalog,
		opts:        opts,
		logger:      logger.With("session", uuid.NewString()),
	}
}

// Transcript returns a copy of the turns completed so far, in order.
func (t *Trainer) Transcript() []domain.Turn {
	return t.transcript.Turns()
}

func (t *Trainer) Run(ctx context.Context) error {
	if err := t.catalog.Load(ctx); err != nil {
		return fmt.Errorf("loading topics: %w", err)
	}

	topics := t.catalog.Topics()
	if len(topics) == 0 {
		return errors.New("no topics found: run preprocessing first")
	}
	if t.opts.Shuffle {
		rand.Shuffle(len(topics), func(i, j int) {
			topics[i], topics[j] = topics[j], topics[i]
		})
	}

	if err := t.source.Start(ctx); err != nil {
		return fmt.Errorf("starting voice source: %w", err)
	}
	defer t.source.Stop()

	t.logger.Info("session starting", "topics", len(topics), "source", t.source.Name())
	t.say(ctx, welcomeMessage)

	for i, topic := range topics {
		if err := ctx.Err(); err != nil {
			return err
		}

		exited, err := t.runTopic(ctx, topic)
		if err != nil {
			return err
		}
		if exited {
			t.finish(ctx, goodbyeMessage)
			return nil
		}

		if i == len(topics)-1 {
			break
		}
		cont, exited, err := t.confirmContinue(ctx)
		if err != nil {
			return err
		}
		if exited || !cont {
			t.finish(ctx, goodbyeMessage)
			return nil
		}
	}

	t.finish(ctx, completedMessage)
	return nil
}

func (t *Trainer) runTopic(ctx context.Context, topic domain.Topic) (exited bool, err error) {
	t.say(ctx, fmt.Sprintf("New topic: %s", topic.Title))

	questions, err := t.tutor.GenerateQuestions(ctx, topic, t.opts.QuestionsPerTopic)
	if err != nil {
		if isCtxErr(err) {
			return false, err
		}
		t.logger.Error("generating questions", "topic", topic.Title, "error", err)
		t.say(ctx, fmt.Sprintf("I could not prepare questions for '%s'. Skipping this topic.", topic.Title))
		return false, nil
	}
	if len(questions) == 0 {
		t.logger.Warn("no questions generated", "topic", topic.Title)
		return false, nil
	}

	for i, q := range questions {
		exited, err := t.runTurn(ctx, i+1, q)
		if err != nil {
			return false, err
		}
		if exited {
			return true, nil
		}
	}
	return false, nil
}

// runTurn asks one question and completes one conversational turn. On success
// exactly one Turn is appended to the transcript; a recoverable failure
// (transcription or evaluation) appends nothing and moves on.
func (t *Trainer) runTurn(ctx context.Context, num int, q domain.Question) (exited bool, err error) {
	turn := domain.NewTurn(q.TopicTitle, q.Question)
	t.say(ctx, fmt.Sprintf("Question %d: %s", num, q.Question))

	answer, exited, err := t.listen(ctx)
	if err != nil {
		return false, fmt.Errorf("capturing answer: %w", err)
	}
	if exited {
		return true, nil
	}
	if answer == "" {
		t.say(ctx, "I didn't catch an answer, let's move on.")
		return false, nil
	}

	feedback, err := t.tutor.Evaluate(ctx, q, answer)
	if err != nil {
		if isCtxErr(err) {
			return false, err
		}
		t.logger.Error("evaluating answer", "error", err)
		t.say(ctx, "I couldn't properly evaluate your answer. Let's move to the next question.")
		return false, nil
	}

	turn.Answer = answer
	turn.Feedback = feedback.Summary
	turn.AnsweredAt = time.Now()
	t.transcript.Append(turn)
	t.logger.Info("turn completed", "turn", turn.ID, "topic", q.TopicTitle)

	t.say(ctx, "Feedback: "+feedback.Summary)
	if feedback.FollowUp != "" {
		t.say(ctx, "Something to think about: "+feedback.FollowUp)
	}

	t.say(ctx, "Any thoughts on this feedback? Say 'next' or stay silent to continue.")
	thought, exited, err := t.listen(ctx)
	if err != nil {
		return false, fmt.Errorf("capturing reply: %w", err)
	}
	if exited {
		return true, nil
	}
	if thought != "" {
		t.logger.Info("learner reflection", "chars", len(thought))
	}
	return false, nil
}

// listen blocks for the next utterance and resolves it to text. A capture
// error is fatal to the loop; a transcription error is surfaced to the
// learner and reported as an empty answer.
func (t *Trainer) listen(ctx context.Context) (text string, exited bool, err error) {
	utt, err := t.source.NextUtterance(ctx)
	if err != nil {
		return "", false, err
	}
	if utt == nil || utt.Empty() {
		return "", false, nil
	}

	if utt.IsText() {
		text = utt.Text
	} else {
		text, err = t.transcriber.Transcribe(ctx, utt)
		if err != nil {
			if isCtxErr(err) {
				return "", false, err
			}
			t.logger.Error("transcribing answer", "error", err)
			t.say(ctx, "Sorry, I could not understand that.")
			return "", false, nil
		}
		t.logger.Info("transcribed answer", "chars", len(text), "audio", utt.Duration())
	}

	if domain.IsExitPhrase(text, t.opts.ExitPhrases) {
		return "", true, nil
	}
	return strings.TrimSpace(text), false, nil
}

func (t *Trainer) confirmContinue(ctx context.Context) (cont, exited bool, err error) {
	t.say(ctx, "Would you like to continue to the next topic? (yes/no)")
	answer, exited, err := t.listen(ctx)
	if err != nil {
		return false, false, err
	}
	if exited {
		return false, true, nil
	}
	if answer == "" {
		// transient capture or transcription hiccup should not end the session
		return true, false, nil
	}
	switch strings.ToLower(strings.TrimRight(answer, ".!?")) {
	case "yes", "y", "yeah", "sure":
		return true, false, nil
	default:
		return false, false, nil
	}
}

func (t *Trainer) finish(ctx context.Context, msg string) {
	t.say(ctx, msg)
	t.logger.Info("session complete", "turns", t.transcript.Len())
}

// say prints the message and voices it. Playback failures are logged and the
// session continues.
func (t *Trainer) say(ctx context.Context, msg string) {
	fmt.Fprintln(t.opts.Out, msg)
	if err := t.speaker.Say(ctx, msg); err != nil {
		t.logger.Error("speaking message", "error", err)
	}
}

func isCtxErr(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
