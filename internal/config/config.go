package config

import (
	"errors"
	"strings"
	"time"

	cenv "github.com/caarlos0/env/v11"
)

type Config struct {
	ListenAddr      string
	GoogleAPIKey    string
	GroqAPIKey      string
	GeminiBaseURL   string
	GroqBaseURL     string
	DefaultModel    string
	GroqModel       string
	DefaultTemplate string
	DefaultLanguage string
	DefaultContext  string
	TemplatesDir    string
	GroqTimeout     time.Duration
	MaxBodyBytes    int64
	LogLevel        string
}

type envConfig struct {
	ListenAddr         string `env:"LISTEN_ADDR" envDefault:":8080"`
	GoogleAPIKey       string `env:"GOOGLE_API_KEY"`
	GroqAPIKey         string `env:"GROQ_API_KEY"`
	GeminiBaseURL      string `env:"GEMINI_BASE_URL" envDefault:"https://generativelanguage.googleapis.com"`
	GroqBaseURL        string `env:"GROQ_BASE_URL" envDefault:"https://api.groq.com/openai/v1"`
	DefaultModel       string `env:"DEFAULT_MODEL" envDefault:"gemini-2.5-flash-preview-05-20"`
	GroqModel          string `env:"GROQ_MODEL" envDefault:"whisper-large-v3"`
	DefaultTemplate    string `env:"DEFAULT_TEMPLATE" envDefault:"transcription.tmpl"`
	DefaultLanguage    string `env:"DEFAULT_LANGUAGE"`
	DefaultContext     string `env:"DEFAULT_CONTEXT" envDefault:"General"`
	TemplatesDir       string `env:"TEMPLATES_DIR" envDefault:"prompts"`
	GroqTimeoutSeconds int    `env:"GROQ_TIMEOUT_SECONDS" envDefault:"30"`
	MaxBodyBytes       int64  `env:"MAX_BODY_BYTES" envDefault:"33554432"`
	LogLevel           string `env:"LOG_LEVEL" envDefault:"info"`
}

func Load() (Config, error) {
	var raw envConfig
	if err := cenv.Parse(&raw); err != nil {
		return Config{}, err
	}

	cfg := Config{
		ListenAddr:      strings.TrimSpace(raw.ListenAddr),
		GoogleAPIKey:    strings.TrimSpace(raw.GoogleAPIKey),
		GroqAPIKey:      strings.TrimSpace(raw.GroqAPIKey),
		GeminiBaseURL:   strings.TrimRight(strings.TrimSpace(raw.GeminiBaseURL), "/"),
		GroqBaseURL:     strings.TrimRight(strings.TrimSpace(raw.GroqBaseURL), "/"),
		DefaultModel:    strings.TrimSpace(raw.DefaultModel),
		GroqModel:       strings.TrimSpace(raw.GroqModel),
		DefaultTemplate: strings.TrimSpace(raw.DefaultTemplate),
		DefaultLanguage: strings.TrimSpace(raw.DefaultLanguage),
		DefaultContext:  strings.TrimSpace(raw.DefaultContext),
		TemplatesDir:    strings.TrimSpace(raw.TemplatesDir),
		GroqTimeout:     time.Duration(raw.GroqTimeoutSeconds) * time.Second,
		MaxBodyBytes:    raw.MaxBodyBytes,
		LogLevel:        strings.ToLower(strings.TrimSpace(raw.LogLevel)),
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if c.ListenAddr == "" {
		return errors.New("LISTEN_ADDR must not be empty")
	}
	if c.GoogleAPIKey == "" {
		return errors.New("GOOGLE_API_KEY must not be empty")
	}
	if c.GeminiBaseURL == "" {
		return errors.New("GEMINI_BASE_URL must not be empty")
	}
	if c.GroqBaseURL == "" {
		return errors.New("GROQ_BASE_URL must not be empty")
	}
	if c.DefaultModel == "" {
		return errors.New("DEFAULT_MODEL must not be empty")
	}
	if c.GroqModel == "" {
		return errors.New("GROQ_MODEL must not be empty")
	}
	if c.DefaultTemplate == "" {
		return errors.New("DEFAULT_TEMPLATE must not be empty")
	}
	if c.TemplatesDir == "" {
		return errors.New("TEMPLATES_DIR must not be empty")
	}
	if c.GroqTimeout <= 0 {
		return errors.New("GROQ_TIMEOUT_SECONDS must be > 0")
	}
	if c.MaxBodyBytes <= 0 {
		return errors.New("MAX_BODY_BYTES must be > 0")
	}
	return nil
}
