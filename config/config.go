package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type Config struct {
	OpenAI  OpenAIConfig  `yaml:"openai"`
	Audio   AudioConfig   `yaml:"audio"`
	Trainer TrainerConfig `yaml:"trainer"`
	Log     LogConfig     `yaml:"log"`
}

type OpenAIConfig struct {
	APIKey          string `yaml:"api_key"`
	Model           string `yaml:"model"`
	TranscribeModel string `yaml:"transcribe_model"`
	TTSModel        string `yaml:"tts_model"`
	Voice           string `yaml:"voice"`
	Language        string `yaml:"language"`
	BaseURL         string `yaml:"base_url"`
}

type AudioConfig struct {
	Input            string `yaml:"input"`
	Output           string `yaml:"output"`
	SampleRate       int    `yaml:"sample_rate"`
	MaxRecordSeconds int    `yaml:"max_record_seconds"`
	SilenceThreshold int    `yaml:"silence_threshold"`
	FileDir          string `yaml:"file_dir"`
	HTTPAddr         string `yaml:"http_addr"`
	AuthToken        string `yaml:"auth_token"`
}

type TrainerConfig struct {
	DataDir           string   `yaml:"data_dir"`
	ProcessedDir      string   `yaml:"processed_dir"`
	Topics            int      `yaml:"topics"`
	QuestionsPerTopic int      `yaml:"questions_per_topic"`
	ChunkTokens       int      `yaml:"chunk_tokens"`
	ExitPhrases       []string `yaml:"exit_phrases"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Load reads the YAML config at path, expanding ${VAR} references from the
// environment. A missing file is not an error: everything has a default and
// the API key can come from OPENAI_API_KEY alone.
func Load(path string) (*Config, error) {
	var cfg Config

	data, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
		// defaults only
	case err != nil:
		return nil, fmt.Errorf("reading config file: %w", err)
	default:
		expanded := os.ExpandEnv(string(data))
		if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
			return nil, fmt.Errorf("parsing config: %w", err)
		}
	}

	cfg.setDefaults()

	return &cfg, nil
}

func (c *Config) setDefaults() {
	if c.OpenAI.APIKey == "" {
		c.OpenAI.APIKey = os.Getenv("OPENAI_API_KEY")
	}
	if c.OpenAI.Model == "" {
		c.OpenAI.Model = "gpt-4o"
	}
	if c.OpenAI.TranscribeModel == "" {
		c.OpenAI.TranscribeModel = "whisper-1"
	}
	if c.OpenAI.TTSModel == "" {
		c.OpenAI.TTSModel = "tts-1"
	}
	if c.OpenAI.Voice == "" {
		c.OpenAI.Voice = "nova"
	}
	if c.OpenAI.Language == "" {
		c.OpenAI.Language = "en"
	}
	if c.Audio.Input == "" {
		c.Audio.Input = "text"
	}
	if c.Audio.Output == "" {
		c.Audio.Output = "text"
	}
	if c.Audio.SampleRate == 0 {
		c.Audio.SampleRate = 16000
	}
	if c.Audio.MaxRecordSeconds == 0 {
		c.Audio.MaxRecordSeconds = 30
	}
	if c.Audio.SilenceThreshold == 0 {
		c.Audio.SilenceThreshold = 500
	}
	if c.Audio.FileDir == "" {
		c.Audio.FileDir = "./answers"
	}
	if c.Audio.HTTPAddr == "" {
		c.Audio.HTTPAddr = ":8080"
	}
	if c.Trainer.DataDir == "" {
		c.Trainer.DataDir = "data"
	}
	if c.Trainer.ProcessedDir == "" {
		c.Trainer.ProcessedDir = "data/processed"
	}
	if c.Trainer.Topics == 0 {
		c.Trainer.Topics = 10
	}
	if c.Trainer.QuestionsPerTopic == 0 {
		c.Trainer.QuestionsPerTopic = 5
	}
	if c.Trainer.ChunkTokens == 0 {
		c.Trainer.ChunkTokens = 750
	}
	if len(c.Trainer.ExitPhrases) == 0 {
		c.Trainer.ExitPhrases = []string{"exit", "stop", "quit"}
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "text"
	}
}
