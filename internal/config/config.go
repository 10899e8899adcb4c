package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Mode string

const (
	ModeLocal Mode = "local"
	ModeCloud Mode = "cloud"
)

const (
	StorageMemory    = "memory"
	StorageSQLite    = "sqlite"
	StorageFirestore = "firestore"

	ProviderMock   = "mock"
	ProviderGemini = "gemini"
	ProviderVertex = "vertex"
)

// Config stores all configuration of the service.
// Values come from defaults, an optional liora.yaml and LIORA_* env vars.
type Config struct {
	Mode     Mode   `mapstructure:"mode"`
	Port     string `mapstructure:"port"`
	LogLevel string `mapstructure:"log_level"`

	Storage StorageConfig `mapstructure:"storage"`
	GCP     GCPConfig     `mapstructure:"gcp"`
	LLM     LLMConfig     `mapstructure:"llm"`
	Chat    ChatConfig    `mapstructure:"chat"`
	Persona PersonaConfig `mapstructure:"persona"`
	CORS    CORSConfig    `mapstructure:"cors"`
}

type StorageConfig struct {
	Backend    string `mapstructure:"backend"` // "memory", "sqlite" or "firestore"
	SQLitePath string `mapstructure:"sqlite_path"`
}

type GCPConfig struct {
	Project  string `mapstructure:"project"`
	Location string `mapstructure:"location"`
}

type LLMConfig struct {
	Provider        string        `mapstructure:"provider"` // "mock", "gemini" or "vertex"
	APIKey          string        `mapstructure:"api_key"`
	Model           string        `mapstructure:"model"`
	Temperature     float32       `mapstructure:"temperature"`
	TopP            float32       `mapstructure:"top_p"`
	MaxOutputTokens int32         `mapstructure:"max_output_tokens"`
	Timeout         time.Duration `mapstructure:"timeout"`
	Breaker         BreakerConfig `mapstructure:"breaker"`
}

// BreakerConfig tunes the circuit breaker in front of the model.
type BreakerConfig struct {
	MaxRequests      uint32        `mapstructure:"max_requests"`
	Interval         time.Duration `mapstructure:"interval"`
	Timeout          time.Duration `mapstructure:"timeout"`
	MinRequests      uint32        `mapstructure:"min_requests"`
	FailureThreshold float64       `mapstructure:"failure_threshold"`
}

type ChatConfig struct {
	WindowSize int `mapstructure:"window_size"`
}

type PersonaConfig struct {
	Name     string `mapstructure:"name"`
	Helpline string `mapstructure:"helpline"`
}

type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("mode", string(ModeLocal))
	v.SetDefault("port", "8080")
	v.SetDefault("log_level", "info")

	v.SetDefault("storage.backend", StorageMemory)
	v.SetDefault("storage.sqlite_path", "data/liora.db")

	v.SetDefault("gcp.project", "")
	v.SetDefault("gcp.location", "us-central1")

	v.SetDefault("llm.provider", "")
	v.SetDefault("llm.api_key", "")
	v.SetDefault("llm.model", "gemini-2.5-flash")
	v.SetDefault("llm.temperature", 0.7)
	v.SetDefault("llm.top_p", 0.9)
	v.SetDefault("llm.max_output_tokens", 1024)
	v.SetDefault("llm.timeout", 20*time.Second)
	v.SetDefault("llm.breaker.max_requests", 5)
	v.SetDefault("llm.breaker.interval", 30*time.Second)
	v.SetDefault("llm.breaker.timeout", 60*time.Second)
	v.SetDefault("llm.breaker.min_requests", 5)
	v.SetDefault("llm.breaker.failure_threshold", 0.8)

	v.SetDefault("chat.window_size", 8)

	v.SetDefault("persona.name", "Liora")
	v.SetDefault("persona.helpline", "1800-599-0019")

	v.SetDefault("cors.allowed_origins", []string{
		"http://localhost:3000",
		"http://127.0.0.1:3000",
		"http://localhost:5173",
		"http://127.0.0.1:5173",
	})
}

// Load reads the config file (if any) and env vars and builds the config.
// configPath may be empty, in which case ./liora.yaml is tried.
func Load(configPath string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("LIORA")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("liora")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configPath != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}

	// Local mode defaults to the mock model, cloud mode to Gemini.
	if cfg.LLM.Provider == "" {
		if cfg.Mode == ModeCloud {
			cfg.LLM.Provider = ProviderGemini
		} else {
			cfg.LLM.Provider = ProviderMock
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks combinations that cannot work at runtime.
func (c *Config) Validate() error {
	switch c.Mode {
	case ModeLocal, ModeCloud:
	default:
		return fmt.Errorf("unknown mode %q", c.Mode)
	}

	switch c.Storage.Backend {
	case StorageMemory:
	case StorageSQLite:
		if c.Storage.SQLitePath == "" {
			return errors.New("storage.sqlite_path is required for the sqlite backend")
		}
	case StorageFirestore:
		if c.GCP.Project == "" {
			return errors.New("gcp.project is required for the firestore backend")
		}
	default:
		return fmt.Errorf("unknown storage backend %q", c.Storage.Backend)
	}

	switch c.LLM.Provider {
	case ProviderMock:
	case ProviderGemini:
		if c.LLM.APIKey == "" {
			return errors.New("llm.api_key is required for the gemini provider")
		}
	case ProviderVertex:
		if c.GCP.Project == "" || c.GCP.Location == "" {
			return errors.New("gcp.project and gcp.location are required for the vertex provider")
		}
	default:
		return fmt.Errorf("unknown llm provider %q", c.LLM.Provider)
	}

	if c.LLM.Timeout <= 0 {
		return errors.New("llm.timeout must be positive")
	}
	if c.Chat.WindowSize < 0 {
		return errors.New("chat.window_size must not be negative")
	}
	return nil
}
