package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Planner backends accepted by NEVORA_PLANNER.
const (
	PlannerAuto      = "auto"
	PlannerHeuristic = "heuristic"
	PlannerGemini    = "gemini"
	PlannerOpenAI    = "openai"
)

// Config holds the application configuration.
type Config struct {
	// Credentials. All optional at load time; constructors that need them fail instead.
	GeminiAPIKey string `envconfig:"GEMINI_API_KEY"`
	OpenAIAPIKey string `envconfig:"OPENAI_API_KEY"`
	GitHubToken  string `envconfig:"GITHUB_TOKEN"`

	Planner        string        `envconfig:"NEVORA_PLANNER" default:"auto"`
	GeminiModel    string        `envconfig:"NEVORA_GEMINI_MODEL" default:"gemini-2.5-flash"`
	OpenAIModel    string        `envconfig:"NEVORA_OPENAI_MODEL" default:"gpt-4o-mini"`
	OpenAIBaseURL  string        `envconfig:"NEVORA_OPENAI_BASE_URL"`
	PlannerTimeout time.Duration `envconfig:"NEVORA_PLANNER_TIMEOUT" default:"20s"`

	// VocabularyPath replaces the embedded heuristic vocabulary when set.
	VocabularyPath string `envconfig:"NEVORA_VOCABULARY"`

	LogLevel string `envconfig:"NEVORA_LOG_LEVEL" default:"info"`
	LogJSON  bool   `envconfig:"NEVORA_LOG_JSON" default:"false"`
}

// LoadConfig loads the configuration from environment variables.
func LoadConfig() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks values envconfig cannot.
func (c *Config) Validate() error {
	switch c.Planner {
	case PlannerAuto, PlannerHeuristic, PlannerGemini, PlannerOpenAI:
	default:
		return fmt.Errorf("NEVORA_PLANNER %q is not supported (use auto, heuristic, gemini or openai)", c.Planner)
	}
	if c.PlannerTimeout < 0 {
		return fmt.Errorf("NEVORA_PLANNER_TIMEOUT must not be negative")
	}
	return nil
}

// HasSemanticCredentials reports whether any LLM backend could be constructed.
func (c *Config) HasSemanticCredentials() bool {
	return c.GeminiAPIKey != "" || c.OpenAIAPIKey != ""
}
