package internal

import (
	"fmt"
	"log/slog"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"

	"github.com/starford/leadsync/internal/leads"
	"github.com/starford/leadsync/internal/storage"
	"github.com/starford/leadsync/internal/summary"
)

// Auth modes.
const (
	AuthModeDisabled = "disabled"
	AuthModeToken    = "token"
)

// Config represents the application configuration.
type Config struct {
	App       ApplicationConfig `yaml:"app"`
	Auth      AuthConfig        `yaml:"auth"`
	Store     StoreConfig       `yaml:"store"`
	Generator GeneratorConfig   `yaml:"generator"`
	Leads     LeadsConfig       `yaml:"leads"`
	Events    EventsConfig      `yaml:"events"`
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if err := c.App.Validate(); err != nil {
		return err
	}
	if err := c.Auth.Validate(); err != nil {
		return err
	}
	if err := c.Store.Validate(); err != nil {
		return fmt.Errorf("store: %w", err)
	}
	if err := c.Generator.Validate(); err != nil {
		return fmt.Errorf("generator: %w", err)
	}
	if err := c.Leads.Validate(); err != nil {
		return fmt.Errorf("leads: %w", err)
	}
	return c.Events.Validate()
}

// ApplicationConfig holds application-level configuration.
type ApplicationConfig struct {
	LogLevel slog.Level `yaml:"log_level"`
	HTTP     HTTPConfig `yaml:"http"`
	CORS     CORSConfig `yaml:"cors"`
}

// Validate validates the application configuration.
func (c *ApplicationConfig) Validate() error {
	return c.HTTP.Validate()
}

// HTTPConfig holds HTTP server configuration.
type HTTPConfig struct {
	Port int `yaml:"port"`
}

// Address returns HTTP server address.
func (c *HTTPConfig) Address() string {
	return fmt.Sprintf(":%d", c.Port)
}

// Validate validates the HTTP configuration.
func (c *HTTPConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Port, validation.Required, validation.Min(1), validation.Max(65535)),
	)
}

// CORSConfig lists the browser origins allowed to call the API.
type CORSConfig struct {
	AllowedOrigins []string `yaml:"allowed_origins"`
}

// AuthConfig holds authentication configuration.
//
// Mode controls how authentication is enforced:
//   - "disabled" (default): no authentication required, suitable for local dev.
//   - "token": Bearer token authentication; Token must be non-empty.
type AuthConfig struct {
	Mode  string `yaml:"mode"`
	Token string `yaml:"token"`
}

// Validate validates the auth configuration.
func (c *AuthConfig) Validate() error {
	if c.Mode == "" {
		c.Mode = AuthModeDisabled
	}
	if err := validation.ValidateStruct(c,
		validation.Field(&c.Mode, validation.Required, validation.In(AuthModeDisabled, AuthModeToken)),
	); err != nil {
		return err
	}
	if c.Mode == AuthModeToken && c.Token == "" {
		return fmt.Errorf("auth: mode is %q but token is empty", AuthModeToken)
	}
	return nil
}

// AuthEnabled returns true when authentication is active.
func (c *AuthConfig) AuthEnabled() bool {
	return c.Mode == AuthModeToken
}

// StoreConfig selects the note record backend.
type StoreConfig struct {
	Driver     string      `yaml:"driver"`
	Path       string      `yaml:"path"`
	SQLitePath string      `yaml:"sqlite_path"`
	Redis      RedisConfig `yaml:"redis"`
}

// RedisConfig holds the Redis backend connection settings.
type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	Key      string `yaml:"key"`
}

// Validate validates the store configuration. Only the settings of the
// selected driver are required.
func (c *StoreConfig) Validate() error {
	if c.Driver == "" {
		c.Driver = storage.DriverJSON
	}
	return validation.ValidateStruct(c,
		validation.Field(&c.Driver, validation.In(storage.DriverJSON, storage.DriverSQLite, storage.DriverRedis)),
		validation.Field(&c.Path, validation.When(c.Driver == storage.DriverJSON, validation.Required)),
		validation.Field(&c.SQLitePath, validation.When(c.Driver == storage.DriverSQLite, validation.Required)),
		validation.Field(&c.Redis, validation.When(c.Driver == storage.DriverRedis, validation.By(func(any) error {
			return validation.ValidateStruct(&c.Redis,
				validation.Field(&c.Redis.Addr, validation.Required),
				validation.Field(&c.Redis.DB, validation.Min(0)),
			)
		}))),
	)
}

// StorageOptions maps the config onto storage.Options.
func (c *StoreConfig) StorageOptions() storage.Options {
	return storage.Options{
		Driver:     c.Driver,
		Path:       c.Path,
		SQLitePath: c.SQLitePath,
		Redis: storage.RedisOptions{
			Addr:     c.Redis.Addr,
			Password: c.Redis.Password,
			DB:       c.Redis.DB,
			Key:      c.Redis.Key,
		},
	}
}

// GeneratorConfig configures the Ollama text generator. An empty BaseURL
// disables generation so every summary uses the fallback.
type GeneratorConfig struct {
	BaseURL     string        `yaml:"base_url"`
	Model       string        `yaml:"model"`
	Timeout     time.Duration `yaml:"timeout"`
	Temperature float64       `yaml:"temperature"`
	NumPredict  int           `yaml:"num_predict"`
}

// Validate validates the generator configuration.
func (c *GeneratorConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.BaseURL, is.RequestURL),
		validation.Field(&c.Model, validation.When(c.BaseURL != "", validation.Required)),
		validation.Field(&c.Timeout, validation.Min(time.Duration(0))),
		validation.Field(&c.Temperature, validation.Min(0.0), validation.Max(2.0)),
		validation.Field(&c.NumPredict, validation.Min(0)),
	)
}

// Enabled reports whether a generator is configured.
func (c *GeneratorConfig) Enabled() bool {
	return c.BaseURL != ""
}

// OllamaConfig maps the config onto summary.OllamaConfig.
func (c *GeneratorConfig) OllamaConfig() summary.OllamaConfig {
	return summary.OllamaConfig{
		BaseURL:     c.BaseURL,
		Model:       c.Model,
		Temperature: c.Temperature,
		NumPredict:  c.NumPredict,
	}
}

// LeadsConfig configures the external contacts source.
type LeadsConfig struct {
	URL     string        `yaml:"url"`
	Timeout time.Duration `yaml:"timeout"`
}

// Validate validates the leads configuration.
func (c *LeadsConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.URL, validation.Required, is.RequestURL),
		validation.Field(&c.Timeout, validation.Required),
	)
}

// EventsConfig configures the SSE stream and the store file watcher.
type EventsConfig struct {
	Enabled    bool          `yaml:"enabled"`
	Throttle   time.Duration `yaml:"throttle"`
	WatchStore bool          `yaml:"watch_store"`
}

// Validate validates the events configuration.
func (c *EventsConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Throttle, validation.When(c.Enabled, validation.Required)),
	)
}

// NewDefaultConfig returns a new Config with sensible default values.
func NewDefaultConfig() *Config {
	return &Config{
		App: ApplicationConfig{
			LogLevel: slog.LevelInfo,
			HTTP: HTTPConfig{
				Port: 8000,
			},
			CORS: CORSConfig{
				AllowedOrigins: []string{"http://localhost:3000"},
			},
		},
		Auth: AuthConfig{
			Mode: AuthModeDisabled,
		},
		Store: StoreConfig{
			Driver:     storage.DriverJSON,
			Path:       "./notes_data.json",
			SQLitePath: "./leadsync.db",
			Redis: RedisConfig{
				Addr: "localhost:6379",
				Key:  "leadsync:notes",
			},
		},
		Generator: GeneratorConfig{
			BaseURL:     "http://localhost:11434",
			Model:       "phi3:mini",
			Timeout:     summary.DefaultTimeout,
			Temperature: 0.1,
			NumPredict:  30,
		},
		Leads: LeadsConfig{
			URL:     leads.DefaultURL,
			Timeout: 10 * time.Second,
		},
		Events: EventsConfig{
			Enabled:    true,
			Throttle:   2 * time.Second,
			WatchStore: true,
		},
	}
}
