package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// EnvPrefix is the namespace prefix for all Screen Snark environment variables.
const EnvPrefix = "SCREEN_SNARK_"

// DefaultPath is the config file consulted when SCREEN_SNARK_CONFIG is unset.
const DefaultPath = "screen-snark.yaml"

// Config holds all application configuration. Secrets (API keys) are loaded
// exclusively from environment variables and never appear in the config file.
type Config struct {
	SampleInterval     string        `yaml:"sample_interval"`
	DispatchInterval   string        `yaml:"dispatch_interval"`
	StartupDelay       string        `yaml:"startup_delay"`
	SummarizeTimeout   string        `yaml:"summarize_timeout"`
	DeliverTimeout     string        `yaml:"deliver_timeout"`
	Display            int           `yaml:"display"`
	LogPath            string        `yaml:"log_path"`
	DBPath             string        `yaml:"db_path"`
	HTTPAddr           string        `yaml:"http_addr"`
	NotificationTitle  string        `yaml:"notification_title"`
	Speech             Speech        `yaml:"speech"`
	Summarization      Summarization `yaml:"summarization"`
	GDriveFolderID     string        `yaml:"gdrive_folder_id"`
	GoogleCredentials  string        `yaml:"google_credentials_file"`
	GDriveSyncInterval string        `yaml:"gdrive_sync_interval"`

	// Secrets: env vars only, never serialized to YAML.
	GeminiAPIKey    string `yaml:"-"`
	OpenAIAPIKey    string `yaml:"-"`
	AnthropicAPIKey string `yaml:"-"`
	DeepgramAPIKey  string `yaml:"-"`
}

// Speech selects and configures the text-to-speech channel.
type Speech struct {
	Provider      string `yaml:"provider"`
	URL           string `yaml:"url"`
	Voice         string `yaml:"voice"`
	DeepgramModel string `yaml:"deepgram_model"`
}

// Summarization configures the commentary model and persona presets.
type Summarization struct {
	Model           string            `yaml:"model"`
	MaxOutputTokens int               `yaml:"max_output_tokens"`
	Preset          string            `yaml:"preset"`
	Presets         map[string]Preset `yaml:"presets"`
}

// Preset is one persona. SystemPrompt may reference {{duration}} and {{schema}}.
type Preset struct {
	Description  string `yaml:"description"`
	SystemPrompt string `yaml:"system_prompt"`
	Model        string `yaml:"model"`
}

const (
	SpeechHTTP     = "http"
	SpeechDeepgram = "deepgram"
	SpeechNone     = "none"
)

// SnarkPrompt is the built-in persona.
const SnarkPrompt = `You are a sarcastic, witty commentator addressing the USER personally.
You just watched their screen for the last {{duration}} minutes through screenshots.
Your job: roast, tease, or make snide remarks about the USER as if you were observing their activity (or lack thereof).
Keep it short, at most a couple of lines.

IMPORTANT: Always respond in JSON that matches this schema:
{{schema}}`

func defaults() Config {
	return Config{
		SampleInterval:    "1m",
		DispatchInterval:  "10m",
		StartupDelay:      "2s",
		SummarizeTimeout:  "60s",
		DeliverTimeout:    "60s",
		Display:           0,
		LogPath:           "~/screensnark_log.txt",
		DBPath:            "data/screen-snark.db",
		HTTPAddr:          "127.0.0.1:8080",
		NotificationTitle: "ScreenSnark",
		Speech: Speech{
			Provider:      SpeechHTTP,
			URL:           "https://murf.ai/Prod/anonymous-tts/audio",
			Voice:         "en-UK-heidi",
			DeepgramModel: "aura-2-thalia-en",
		},
		Summarization: Summarization{
			Model:           "gemini/gemini-2.0-flash-lite",
			MaxOutputTokens: 120,
			Preset:          "snark",
			Presets: map[string]Preset{
				"snark": {
					Description:  "sarcastic roast of the user's recent screen activity",
					SystemPrompt: SnarkPrompt,
				},
			},
		},
		GoogleCredentials:  "./service-account.json",
		GDriveSyncInterval: "5m",
	}
}

// Load reads configuration from a YAML file (if it exists), applies
// environment variable overrides, loads secrets, and validates the result.
// It returns the config, any validation warnings, and an error if the file
// exists but cannot be read or parsed.
func Load(path string) (Config, []string, error) {
	cfg := defaults()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			if !os.IsNotExist(err) {
				return cfg, nil, fmt.Errorf("read config file: %w", err)
			}
		} else {
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return cfg, nil, fmt.Errorf("parse config file: %w", err)
			}
		}
	}

	// The built-in persona must survive a YAML "presets: null".
	if _, ok := cfg.Summarization.Presets["snark"]; !ok {
		if cfg.Summarization.Presets == nil {
			cfg.Summarization.Presets = map[string]Preset{}
		}
		cfg.Summarization.Presets["snark"] = defaults().Summarization.Presets["snark"]
	}

	applyEnvOverrides(&cfg)
	loadSecrets(&cfg)

	warnings := validate(&cfg)
	return cfg, warnings, nil
}

// PathFromEnv returns the config file path named by SCREEN_SNARK_CONFIG.
func PathFromEnv() string {
	if v := strings.TrimSpace(os.Getenv(EnvPrefix + "CONFIG")); v != "" {
		return v
	}
	return DefaultPath
}

func (c *Config) ParsedSampleInterval() time.Duration {
	return parseDuration(c.SampleInterval, time.Minute)
}

func (c *Config) ParsedDispatchInterval() time.Duration {
	return parseDuration(c.DispatchInterval, 10*time.Minute)
}

func (c *Config) ParsedStartupDelay() time.Duration {
	d, err := time.ParseDuration(c.StartupDelay)
	if err != nil || d < 0 {
		return 2 * time.Second
	}
	return d
}

func (c *Config) ParsedSummarizeTimeout() time.Duration {
	return parseDuration(c.SummarizeTimeout, time.Minute)
}

func (c *Config) ParsedDeliverTimeout() time.Duration {
	return parseDuration(c.DeliverTimeout, time.Minute)
}

func (c *Config) ParsedGDriveSyncInterval() time.Duration {
	return parseDuration(c.GDriveSyncInterval, 5*time.Minute)
}

// ExpandedLogPath resolves a leading "~" against the user's home directory.
func (c *Config) ExpandedLogPath() string {
	return expandHome(c.LogPath)
}

// APIKeyFor returns the secret for an LLM provider name.
func (c *Config) APIKeyFor(provider string) string {
	switch provider {
	case "gemini":
		return c.GeminiAPIKey
	case "openai":
		return c.OpenAIAPIKey
	case "anthropic":
		return c.AnthropicAPIKey
	default:
		return ""
	}
}

func parseDuration(raw string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}

func expandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv(EnvPrefix + "SAMPLE_INTERVAL"); v != "" {
		cfg.SampleInterval = v
	}
	if v := os.Getenv(EnvPrefix + "DISPATCH_INTERVAL"); v != "" {
		cfg.DispatchInterval = v
	}
	if v := os.Getenv(EnvPrefix + "STARTUP_DELAY"); v != "" {
		cfg.StartupDelay = v
	}
	if v := os.Getenv(EnvPrefix + "SUMMARIZE_TIMEOUT"); v != "" {
		cfg.SummarizeTimeout = v
	}
	if v := os.Getenv(EnvPrefix + "DELIVER_TIMEOUT"); v != "" {
		cfg.DeliverTimeout = v
	}
	if v := os.Getenv(EnvPrefix + "DISPLAY"); v != "" {
		if display, err := strconv.Atoi(strings.TrimSpace(v)); err == nil && display >= -1 {
			cfg.Display = display
		}
	}
	if v := os.Getenv(EnvPrefix + "LOG_PATH"); v != "" {
		cfg.LogPath = v
	}
	if v := os.Getenv(EnvPrefix + "DB_PATH"); v != "" {
		cfg.DBPath = v
	}
	if v := os.Getenv(EnvPrefix + "HTTP_ADDR"); v != "" {
		cfg.HTTPAddr = v
	}
	if v := os.Getenv(EnvPrefix + "NOTIFICATION_TITLE"); v != "" {
		cfg.NotificationTitle = v
	}
	if v := os.Getenv(EnvPrefix + "SPEECH_PROVIDER"); v != "" {
		cfg.Speech.Provider = strings.ToLower(strings.TrimSpace(v))
	}
	if v := os.Getenv(EnvPrefix + "SPEECH_URL"); v != "" {
		cfg.Speech.URL = v
	}
	if v := os.Getenv(EnvPrefix + "SPEECH_VOICE"); v != "" {
		cfg.Speech.Voice = v
	}
	if v := os.Getenv(EnvPrefix + "MODEL"); v != "" {
		cfg.Summarization.Model = v
	}
	if v := os.Getenv(EnvPrefix + "PRESET"); v != "" {
		cfg.Summarization.Preset = v
	}
	if v := os.Getenv(EnvPrefix + "GDRIVE_FOLDER_ID"); v != "" {
		cfg.GDriveFolderID = v
	}
	if v := os.Getenv(EnvPrefix + "GOOGLE_CREDENTIALS_FILE"); v != "" {
		cfg.GoogleCredentials = v
	}
}

func loadSecrets(cfg *Config) {
	cfg.GeminiAPIKey = os.Getenv(EnvPrefix + "GEMINI_API_KEY")
	cfg.OpenAIAPIKey = os.Getenv(EnvPrefix + "OPENAI_API_KEY")
	cfg.AnthropicAPIKey = os.Getenv(EnvPrefix + "ANTHROPIC_API_KEY")
	cfg.DeepgramAPIKey = os.Getenv(EnvPrefix + "DEEPGRAM_API_KEY")
}

func validate(cfg *Config) []string {
	var warnings []string

	durations := []struct {
		name     string
		value    string
		fallback string
	}{
		{"sample_interval", cfg.SampleInterval, "1m"},
		{"dispatch_interval", cfg.DispatchInterval, "10m"},
		{"summarize_timeout", cfg.SummarizeTimeout, "60s"},
		{"deliver_timeout", cfg.DeliverTimeout, "60s"},
		{"gdrive_sync_interval", cfg.GDriveSyncInterval, "5m"},
	}
	for _, d := range durations {
		if parsed, err := time.ParseDuration(d.value); err != nil || parsed <= 0 {
			warnings = append(warnings, fmt.Sprintf("Invalid %s %q, using default %s.", d.name, d.value, d.fallback))
		}
	}
	if parsed, err := time.ParseDuration(cfg.StartupDelay); err != nil || parsed < 0 {
		warnings = append(warnings, fmt.Sprintf("Invalid startup_delay %q, using default 2s.", cfg.StartupDelay))
	}

	if cfg.ParsedDispatchInterval() < cfg.ParsedSampleInterval() {
		warnings = append(warnings, fmt.Sprintf("dispatch_interval %s is shorter than sample_interval %s; every sample will be dispatched on its own.",
			cfg.ParsedDispatchInterval(), cfg.ParsedSampleInterval()))
	}

	if _, ok := cfg.Summarization.Presets[cfg.Summarization.Preset]; !ok {
		warnings = append(warnings, fmt.Sprintf("Unknown summarization preset %q, using \"snark\".", cfg.Summarization.Preset))
		cfg.Summarization.Preset = "snark"
	}
	if cfg.Summarization.MaxOutputTokens <= 0 {
		cfg.Summarization.MaxOutputTokens = 120
	}

	if provider, _, found := strings.Cut(cfg.Summarization.Model, "/"); found && cfg.APIKeyFor(provider) == "" {
		warnings = append(warnings, fmt.Sprintf("%s API key not configured, commentary requests will fail. Set %s%s_API_KEY.",
			provider, EnvPrefix, strings.ToUpper(provider)))
	}

	switch cfg.Speech.Provider {
	case SpeechHTTP, SpeechNone:
	case SpeechDeepgram:
		if cfg.DeepgramAPIKey == "" {
			warnings = append(warnings, "Deepgram API key not configured, speech is disabled. Set "+EnvPrefix+"DEEPGRAM_API_KEY.")
			cfg.Speech.Provider = SpeechNone
		}
	default:
		warnings = append(warnings, fmt.Sprintf("Unknown speech provider %q, speech is disabled.", cfg.Speech.Provider))
		cfg.Speech.Provider = SpeechNone
	}

	return warnings
}
