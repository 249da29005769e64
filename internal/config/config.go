package config

import (
	"fmt"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"go.uber.org/zap"

	"alfredoptarigan/resumeai/internal/wizard"
)

type Config struct {
	Server   ServerConfig
	Log      LogConfig
	Database DatabaseConfig
	Storage  StorageConfig
	Session  SessionConfig
	Timing   TimingConfig
	Content  ContentConfig
	Auth     AuthConfig
}

type ServerConfig struct {
	Port string `envconfig:"PORT" default:"3000"`
	Env  string `envconfig:"ENV" default:"development"`
}

type LogConfig struct {
	Level  string `envconfig:"LOG_LEVEL" default:"info"`
	Format string `envconfig:"LOG_FORMAT" default:"console"`
}

type DatabaseConfig struct {
	Driver   string `envconfig:"DB_DRIVER" default:"sqlite"`
	Host     string `envconfig:"DB_HOST" default:"localhost"`
	Port     string `envconfig:"DB_PORT" default:"5432"`
	User     string `envconfig:"DB_USER" default:"postgres"`
	Password string `envconfig:"DB_PASSWORD" default:"postgres"`
	DBName   string `envconfig:"DB_NAME" default:"resumeai"`
	// Path is the sqlite database file.
	Path string `envconfig:"DB_PATH" default:"resumeai.db"`
}

type StorageConfig struct {
	MaxFileSize int64 `envconfig:"MAX_FILE_SIZE" default:"10485760"`
}

type SessionConfig struct {
	TTL           time.Duration `envconfig:"SESSION_TTL" default:"30m"`
	SweepInterval time.Duration `envconfig:"SESSION_SWEEP_INTERVAL" default:"1m"`
	MaxSessions   int           `envconfig:"MAX_SESSIONS" default:"1000"`
}

type TimingConfig struct {
	AcceptDelay     time.Duration `envconfig:"DEMO_ACCEPT_DELAY" default:"600ms"`
	TickInterval    time.Duration `envconfig:"DEMO_TICK_INTERVAL" default:"200ms"`
	MaxIncrement    float64       `envconfig:"DEMO_MAX_INCREMENT" default:"8"`
	TransformDelay  time.Duration `envconfig:"DEMO_TRANSFORM_DELAY" default:"800ms"`
	CompleteDelay   time.Duration `envconfig:"DEMO_COMPLETE_DELAY" default:"2s"`
	SuccessDuration time.Duration `envconfig:"DEMO_SUCCESS_DURATION" default:"3s"`
}

type ContentConfig struct {
	// Path of a YAML content file. Empty means the embedded default.
	Path string `envconfig:"CONTENT_PATH"`
}

type AuthConfig struct {
	APIURL  string        `envconfig:"AUTH_API_URL" default:"http://localhost:5000/api"`
	Timeout time.Duration `envconfig:"AUTH_TIMEOUT" default:"10s"`
	// StorePath is the client-local sqlite file holding the session token.
	StorePath string `envconfig:"AUTH_STORE_PATH" default:".resumeai/session.db"`
}

// ClientConfig is the part of the environment the command-line client reads.
// Server settings are left out so a bad DB_DRIVER does not hide them.
type ClientConfig struct {
	Timing TimingConfig
	Auth   AuthConfig
}

// Load reads an optional .env file and then the process environment.
func Load() (*Config, error) {
	loadDotEnv()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, errors.Wrap(err, "failed to process environment")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadClient is Load restricted to the auth and timing sections.
func LoadClient() (*ClientConfig, error) {
	loadDotEnv()

	var cfg ClientConfig
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, errors.Wrap(err, "failed to process environment")
	}
	if err := cfg.Timing.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func loadDotEnv() {
	if err := godotenv.Load(); err != nil {
		zap.S().Debug("No .env file found. Using environment and defaults.")
	}
}

func (c *Config) Validate() error {
	switch c.Database.Driver {
	case "postgres", "sqlite":
	default:
		return errors.Newf("unsupported DB_DRIVER %q", c.Database.Driver)
	}
	if c.Storage.MaxFileSize <= 0 {
		return errors.New("MAX_FILE_SIZE must be positive")
	}
	if c.Session.TTL <= 0 || c.Session.SweepInterval <= 0 {
		return errors.New("SESSION_TTL and SESSION_SWEEP_INTERVAL must be positive")
	}
	return c.Timing.Validate()
}

func (t TimingConfig) Validate() error {
	if t.MaxIncrement <= 0 {
		return errors.New("DEMO_MAX_INCREMENT must be positive")
	}
	return nil
}

func (c *Config) GetDatabaseDSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		c.Database.Host,
		c.Database.Port,
		c.Database.User,
		c.Database.Password,
		c.Database.DBName,
	)
}

// WizardTiming converts the demo pacing settings.
func (c *Config) WizardTiming() wizard.Timing {
	return c.Timing.Wizard()
}

func (t TimingConfig) Wizard() wizard.Timing {
	return wizard.Timing{
		AcceptDelay:     t.AcceptDelay,
		TickInterval:    t.TickInterval,
		MaxIncrement:    t.MaxIncrement,
		TransformDelay:  t.TransformDelay,
		CompleteDelay:   t.CompleteDelay,
		SuccessDuration: t.SuccessDuration,
	}
}
