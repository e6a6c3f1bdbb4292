package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"strings"
	"syscall"

	"github.com/joho/godotenv"

	"voiced-trainer/config"
	"voiced-trainer/internal/application"
	"voiced-trainer/internal/infra/audio"
	"voiced-trainer/internal/infra/openai"
	"voiced-trainer/internal/preprocess"
	"voiced-trainer/internal/store"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	topics := flag.Int("topics", 0, "override number of topics to extract")
	questions := flag.Int("questions", 0, "override questions per topic")
	voiceInput := flag.Bool("voice-input", false, "capture answers from the microphone")
	voiceOutput := flag.Bool("voice-output", false, "speak questions and feedback aloud")
	skipPreprocessing := flag.Bool("skip-preprocessing", false, "never run preprocessing, fail if no topics exist")
	forcePreprocessing := flag.Bool("force-preprocessing", false, "rerun preprocessing even if already done")
	flag.Parse()

	_ = godotenv.Load()

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("loading config", "error", err)
		os.Exit(1)
	}
	if *topics > 0 {
		cfg.Trainer.Topics = *topics
	}
	if *questions > 0 {
		cfg.Trainer.QuestionsPerTopic = *questions
	}
	if *voiceInput {
		cfg.Audio.Input = "microphone"
	}
	if *voiceOutput {
		cfg.Audio.Output = "voice"
	}

	logger := setupLogger(cfg.Log)

	if cfg.OpenAI.APIKey == "" {
		logger.Error("no OpenAI API key configured, set OPENAI_API_KEY")
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		logger.Info("shutting down")
		cancel()
	}()

	client := openai.NewClient(cfg.OpenAI.APIKey, cfg.OpenAI.Model, cfg.OpenAI.BaseURL, logger)
	tutor := openai.NewTutor(client, logger)
	topicStore := store.New(cfg.Trainer.ProcessedDir, logger)

	if !*skipPreprocessing {
		if err := runPreprocessing(ctx, cfg, client, tutor, topicStore, *forcePreprocessing, logger); err != nil {
			logger.Error("preprocessing failed", "error", err)
			os.Exit(1)
		}
	}

	source := createVoiceSource(cfg.Audio, logger)
	speaker := createSpeaker(cfg, client, logger)
	transcriber := openai.NewTranscriber(client, cfg.OpenAI.TranscribeModel, cfg.OpenAI.Language)

	trainer := application.NewTrainer(source, transcriber, speaker, tutor, topicStore, application.Options{
		QuestionsPerTopic: cfg.Trainer.QuestionsPerTopic,
		ExitPhrases:       cfg.Trainer.ExitPhrases,
		Shuffle:           true,
	}, logger)

	logger.Info("starting training session",
		"input", cfg.Audio.Input,
		"output", cfg.Audio.Output,
	)

	if err := trainer.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error("trainer error", "error", err)
		os.Exit(1)
	}
}

func runPreprocessing(ctx context.Context, cfg *config.Config, client *openai.Client, tutor *openai.Tutor, topicStore *store.TopicStore, force bool, logger *slog.Logger) error {
	if topicStore.Preprocessed() && !force {
		return nil
	}

	source, err := findSourceFile(cfg.Trainer.DataDir)
	if err != nil {
		return err
	}

	pre := preprocess.New(client, tutor, preprocess.NewChunker(cfg.Trainer.ChunkTokens), topicStore, cfg.Trainer.Topics, logger)
	_, err = pre.Run(ctx, source, force)
	return err
}

// findSourceFile picks the first .txt file (alphabetically) in the data dir.
func findSourceFile(dir string) (string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", err
	}

	var names []string
	for _, e := range entries {
		if !e.IsDir() && strings.HasSuffix(e.Name(), ".txt") {
			names = append(names, e.Name())
		}
	}
	if len(names) == 0 {
		return "", errors.New("no .txt source file found in " + dir)
	}
	sort.Strings(names)
	return filepath.Join(dir, names[0]), nil
}

func createVoiceSource(cfg config.AudioConfig, logger *slog.Logger) application.VoiceSource {
	switch cfg.Input {
	case "microphone":
		return audio.NewMicrophoneSource(cfg.SampleRate, cfg.SilenceThreshold, cfg.MaxRecordSeconds, logger)
	case "file":
		return audio.NewFileSource(cfg.FileDir)
	case "http":
		return audio.NewHTTPSource(cfg.HTTPAddr, cfg.AuthToken, logger)
	case "text":
		return audio.NewConsoleSource(os.Stdin, os.Stdout)
	default:
		logger.Warn("unknown input mode, using text", "input", cfg.Input)
		return audio.NewConsoleSource(os.Stdin, os.Stdout)
	}
}

func createSpeaker(cfg *config.Config, client *openai.Client, logger *slog.Logger) application.Speaker {
	if cfg.Audio.Output != "voice" {
		return &application.NoopSpeaker{}
	}
	player := audio.NewPortAudioPlayer(logger)
	return openai.NewSpeaker(client, cfg.OpenAI.TTSModel, cfg.OpenAI.Voice, player)
}

func setupLogger(cfg config.LogConfig) *slog.Logger {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		handler = slog.NewTextHandler(os.Stderr, opts)
	}

	return slog.New(handler)
}
