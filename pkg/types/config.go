package types

import "time"

// AIConfig holds shared settings for stages that call the Generative AI API.
type AIConfig struct {
	// Model is the AI model identifier (e.g. "gemini-2.5-flash").
	Model string `json:"model" yaml:"model" mapstructure:"model"`

	// APIKey is the authentication key for the AI API.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty" mapstructure:"api_key"`

	// Timeout bounds a single AI call. Zero leaves it to the transport.
	Timeout time.Duration `json:"timeout" yaml:"timeout" mapstructure:"timeout"`

	// BaseURL overrides the API endpoint (proxies, tests). Empty uses the
	// public Gemini endpoint.
	BaseURL string `json:"base_url,omitempty" yaml:"base_url,omitempty" mapstructure:"base_url"`
}

// SearchConfig holds settings for the grounded search stage.
type SearchConfig struct {
	// MinLeads and MaxLeads bound how many prospects the prompt asks for.
	MinLeads int `json:"min_leads" yaml:"min_leads" mapstructure:"min_leads"`
	MaxLeads int `json:"max_leads" yaml:"max_leads" mapstructure:"max_leads"`

	// Defaults pre-fill criteria fields the caller leaves empty.
	Defaults Criteria `json:"defaults" yaml:"defaults" mapstructure:"defaults"`
}

// StoreBackend selects the lead store implementation.
type StoreBackend string

const (
	StoreMemory StoreBackend = "memory"
	StoreSQLite StoreBackend = "sqlite"
)

// StoreConfig holds settings for the lead store. Both backends are volatile:
// the SQLite backend runs against an in-memory database.
type StoreConfig struct {
	Backend StoreBackend `json:"backend" yaml:"backend" mapstructure:"backend"`
}

// ServerConfig holds settings for the HTTP surface.
type ServerConfig struct {
	Addr           string        `json:"addr" yaml:"addr" mapstructure:"addr"`
	AllowedOrigins []string      `json:"allowed_origins" yaml:"allowed_origins" mapstructure:"allowed_origins"`
	ReadTimeout    time.Duration `json:"read_timeout" yaml:"read_timeout" mapstructure:"read_timeout"`
	WriteTimeout   time.Duration `json:"write_timeout" yaml:"write_timeout" mapstructure:"write_timeout"`
}

// MailConfig holds SMTP settings for direct dispatch. Host empty disables
// the smtp channel.
type MailConfig struct {
	Host     string `json:"host" yaml:"host" mapstructure:"host"`
	Port     int    `json:"port" yaml:"port" mapstructure:"port"`
	User     string `json:"user" yaml:"user" mapstructure:"user"`
	Password string `json:"password,omitempty" yaml:"password,omitempty" mapstructure:"password"`
	From     string `json:"from" yaml:"from" mapstructure:"from"`
}

// LogConfig holds logger settings.
type LogConfig struct {
	Level string `json:"level" yaml:"level" mapstructure:"level"`
	JSON  bool   `json:"json" yaml:"json" mapstructure:"json"`
}

// Config groups all settings for the outreach application.
type Config struct {
	AI      AIConfig     `json:"ai" yaml:"ai" mapstructure:"ai"`
	Search  SearchConfig `json:"search" yaml:"search" mapstructure:"search"`
	Store   StoreConfig  `json:"store" yaml:"store" mapstructure:"store"`
	Server  ServerConfig `json:"server" yaml:"server" mapstructure:"server"`
	Mail    MailConfig   `json:"mail" yaml:"mail" mapstructure:"mail"`
	Profile UserProfile  `json:"profile" yaml:"profile" mapstructure:"profile"`
	Log     LogConfig    `json:"log" yaml:"log" mapstructure:"log"`
}

// DefaultModel is the Gemini model used when none is configured.
const DefaultModel = "gemini-2.5-flash"

// DefaultConfig returns the configuration used when no file, env var or
// flag overrides a setting.
func DefaultConfig() Config {
	return Config{
		AI: AIConfig{
			Model:   DefaultModel,
			Timeout: 90 * time.Second,
		},
		Search: SearchConfig{
			MinLeads: 5,
			MaxLeads: 7,
			Defaults: Criteria{
				Role:     "Marketing Agencies",
				Niche:    "Real Estate",
				Location: "New York",
			},
		},
		Store: StoreConfig{Backend: StoreMemory},
		Server: ServerConfig{
			Addr:           ":8080",
			AllowedOrigins: []string{"*"},
			ReadTimeout:    15 * time.Second,
			WriteTimeout:   3 * time.Minute,
		},
		Mail: MailConfig{Port: 587},
		Profile: UserProfile{
			Name:  "Alex Johnson",
			Offer: "We help businesses scale their organic traffic by 300% in 90 days using AI-driven content strategies.",
		},
		Log: LogConfig{Level: "info"},
	}
}
