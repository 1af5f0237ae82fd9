package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/kelseyhightower/envconfig"
	"go.uber.org/fx"
)

// Config holds all configuration from environment variables.
type Config struct {
	APIKey      string        `envconfig:"PPLX_API_KEY" required:"true"`
	BaseURL     string        `envconfig:"PPLX_BASE_URL" default:"https://api.perplexity.ai"`
	Model       string        `envconfig:"PPLX_MODEL" default:"sonar"`
	Timeout     time.Duration `envconfig:"REQUEST_TIMEOUT" default:"30s"`
	Temperature float64       `envconfig:"TEMPERATURE" default:"0.7"`
	MaxTokens   int           `envconfig:"MAX_TOKENS" default:"400"`

	// Speech synthesis, disabled when SarvamAPIKey is empty
	SarvamAPIKey  string  `envconfig:"SARVAM_API_KEY"`
	SarvamURL     string  `envconfig:"SARVAM_URL" default:"https://api.sarvam.ai/text-to-speech"`
	Speaker       string  `envconfig:"TTS_SPEAKER" default:"arya"`
	Pitch         float64 `envconfig:"TTS_PITCH" default:"0"`
	Pace          float64 `envconfig:"TTS_PACE" default:"1.0"`
	Loudness      float64 `envconfig:"TTS_LOUDNESS" default:"1.0"`
	SampleRate    int     `envconfig:"TTS_SAMPLE_RATE" default:"22050"`
	MaxSpeechChar int     `envconfig:"TTS_MAX_CHARS" default:"1500"`
	AudioCache    int     `envconfig:"TTS_CACHE_SIZE" default:"128"`

	DefaultLocale    string   `envconfig:"DEFAULT_LOCALE" default:"en-IN"`
	EnabledLanguages []string `envconfig:"ENABLED_LANGUAGES" default:"ml,en,manglish"`
	SpeechReplies    bool     `envconfig:"SPEECH_REPLIES" default:"true"`

	// Transports
	Token        string   `envconfig:"TELEGRAM_API_TOKEN"`
	HTTPAddr     string   `envconfig:"HTTP_ADDR" default:":8080"`
	CORSOrigins  []string `envconfig:"CORS_ORIGINS" default:"*"`
	DatabaseURL  string   `envconfig:"DATABASE_URL"`
	HistoryLimit int      `envconfig:"HISTORY_LIMIT" default:"50"`

	// Path to config.toml file
	ConfigFile string `envconfig:"CONFIG_FILE" default:"config.toml"`

	// Path to context directory containing .md files with static college knowledge
	ContextDir string `envconfig:"CONTEXT_DIR" default:".context"`

	// Path to the FAQ knowledge base
	FAQFile string `envconfig:"FAQ_FILE" default:"faq_data.json"`

	// Prompts loaded from config.toml
	Prompts Prompts

	// Knowledge loaded from .context/*.md files
	Knowledge string
}

// Prompts holds the prompt template pieces loaded from config.toml.
type Prompts struct {
	Instruction string `toml:"instruction"`
	Malayalam   string `toml:"malayalam"`
	English     string `toml:"english"`
	Manglish    string `toml:"manglish"`
}

// FileConfig represents the structure of config.toml.
type FileConfig struct {
	Prompts Prompts `toml:"prompts"`
}

// DefaultPrompts provides fallback prompts if config.toml is not found.
var DefaultPrompts = Prompts{
	Instruction: `You are സർവജ്ഞ (Sarva-jña), an AI assistant for LBS College of Engineering, Kasaragod.

RULES:
1. Use ONLY the information provided in the college knowledge below when stating facts.
2. Do NOT invent new facts or details.
3. Structure your response naturally, not as a list.
4. If the knowledge does not fully answer the question, acknowledge this politely.
5. Keep responses under 300 words for better voice playback.`,
	Malayalam: "Answer in Malayalam script. Use a warm, natural tone.",
	English:   "Answer in simple, clear English. Use a friendly, helpful tone suitable for college students.",
	Manglish:  "Answer in Manglish (Malayalam written in English letters). Use a warm, natural, conversational tone.",
}

// LoadEnv loads the configuration from environment variables.
func (c Config) LoadEnv() (Config, error) {
	cfg := c

	if err := envconfig.Process("", &cfg); err != nil {
		return c, err
	}

	return cfg, nil
}

// LoadFile loads prompts from config.toml file.
func (c *Config) LoadFile() error {
	configPath := c.ConfigFile
	if !filepath.IsAbs(configPath) {
		// Try current directory first
		if _, err := os.Stat(configPath); os.IsNotExist(err) {
			// Try executable directory
			execPath, err := os.Executable()
			if err == nil {
				configPath = filepath.Join(filepath.Dir(execPath), c.ConfigFile)
			}
		}
	}

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		c.Prompts = DefaultPrompts
		return nil
	}

	var fileConfig FileConfig
	if _, err := toml.DecodeFile(configPath, &fileConfig); err != nil {
		return fmt.Errorf("failed to decode %s: %w", configPath, err)
	}

	c.Prompts = fileConfig.Prompts

	// Use defaults for empty prompts
	if c.Prompts.Instruction == "" {
		c.Prompts.Instruction = DefaultPrompts.Instruction
	}
	if c.Prompts.Malayalam == "" {
		c.Prompts.Malayalam = DefaultPrompts.Malayalam
	}
	if c.Prompts.English == "" {
		c.Prompts.English = DefaultPrompts.English
	}
	if c.Prompts.Manglish == "" {
		c.Prompts.Manglish = DefaultPrompts.Manglish
	}

	return nil
}

// LoadContext loads all .md files from the context directory and concatenates them.
func (c *Config) LoadContext() error {
	if _, err := os.Stat(c.ContextDir); os.IsNotExist(err) {
		return nil
	}

	files, err := filepath.Glob(filepath.Join(c.ContextDir, "*.md"))
	if err != nil {
		return fmt.Errorf("failed to glob context files: %w", err)
	}

	if len(files) == 0 {
		return nil
	}

	var parts []string
	for _, file := range files {
		content, err := os.ReadFile(file)
		if err != nil {
			return fmt.Errorf("failed to read context file %s: %w", file, err)
		}
		parts = append(parts, strings.TrimSpace(string(content)))
	}

	c.Knowledge = strings.Join(parts, "\n\n---\n\n")

	return nil
}

// Validate checks values envconfig cannot express with tags.
func (c *Config) Validate() error {
	if c.Timeout <= 0 {
		return fmt.Errorf("REQUEST_TIMEOUT must be positive, got %s", c.Timeout)
	}
	if c.DefaultLocale == "" {
		return fmt.Errorf("DEFAULT_LOCALE must not be empty")
	}
	if c.MaxSpeechChar <= 0 {
		return fmt.Errorf("TTS_MAX_CHARS must be positive, got %d", c.MaxSpeechChar)
	}
	if c.HistoryLimit < 0 {
		return fmt.Errorf("HISTORY_LIMIT must not be negative, got %d", c.HistoryLimit)
	}
	return nil
}

// SpeechEnabled reports whether a speech synthesis credential is configured.
func (c *Config) SpeechEnabled() bool {
	return c.SarvamAPIKey != ""
}

func NewConfig() (*Config, error) {
	var cfg Config
	loadedCfg, err := cfg.LoadEnv()
	if err != nil {
		return nil, err
	}

	// Load prompts from config.toml
	if err := loadedCfg.LoadFile(); err != nil {
		return nil, err
	}

	// Load knowledge from .context/*.md files
	if err := loadedCfg.LoadContext(); err != nil {
		return nil, err
	}

	if err := loadedCfg.Validate(); err != nil {
		return nil, err
	}

	return &loadedCfg, nil
}

func Module() fx.Option {
	return fx.Module(
		"config",
		fx.Provide(
			NewConfig,
		),
	)
}
