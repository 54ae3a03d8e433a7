// Package config assembles the runtime configuration from built-in defaults,
// an optional YAML file, and environment overrides, in that precedence order.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// DefaultFile is the config file probed when no --config flag is given.
const DefaultFile = "domainwatch.yaml"

// Duration lets YAML scalars like "10s" decode into a time.Duration.
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("parse duration %q: %w", s, err)
	}
	*d = Duration(parsed)
	return nil
}

// Config is the explicit configuration passed into the run; nothing reads
// the environment after Load returns.
type Config struct {
	Watchlist string `yaml:"watchlist"`
	Available string `yaml:"available_file"`
	Metrics   string `yaml:"metrics_file"`
	LogFile   string `yaml:"log_file"`
	SMTP      SMTP   `yaml:"smtp"`
	Check     Check  `yaml:"check"`

	// GithubOutput is the step-output file GitHub Actions injects via
	// GITHUB_OUTPUT; it never comes from the YAML file.
	GithubOutput string `yaml:"-"`
}

// SMTP is the mail delivery section.
type SMTP struct {
	Server   string   `yaml:"server"`
	Port     int      `yaml:"port"`
	Username string   `yaml:"username"`
	Password string   `yaml:"password"`
	From     string   `yaml:"from"`
	To       string   `yaml:"to"`
	Timeout  Duration `yaml:"timeout"`
}

// Check is the WHOIS lookup section.
type Check struct {
	Timeout     Duration `yaml:"timeout"`
	Concurrency int      `yaml:"concurrency"`
	QPS         float64  `yaml:"qps"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Watchlist: "watchlist.txt",
		Available: "available_domains.txt",
		SMTP: SMTP{
			Server:  "smtp.gmail.com",
			Port:    587,
			Timeout: Duration(15 * time.Second),
		},
		Check: Check{
			Timeout:     Duration(10 * time.Second),
			Concurrency: 5,
			QPS:         1,
		},
	}
}

// Load builds the configuration. A .env file in the working directory is
// folded into the environment first. An explicitly named config file must
// exist; the default location is probed and skipped when absent.
func Load(path string) (Config, error) {
	_ = godotenv.Load()

	cfg := Default()

	explicit := path != ""
	if !explicit {
		path = DefaultFile
	}
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config %s: %w", path, err)
		}
	case explicit || !errors.Is(err, os.ErrNotExist):
		return Config{}, fmt.Errorf("read config %s: %w", path, err)
	}

	if err := applyEnv(&cfg); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config) error {
	if v := os.Getenv("WATCHLIST_FILE"); v != "" {
		cfg.Watchlist = v
	}
	if v := os.Getenv("AVAILABLE_FILE"); v != "" {
		cfg.Available = v
	}
	if v := os.Getenv("METRICS_FILE"); v != "" {
		cfg.Metrics = v
	}
	if v := os.Getenv("LOG_FILE"); v != "" {
		cfg.LogFile = v
	}
	if v := os.Getenv("SMTP_SERVER"); v != "" {
		cfg.SMTP.Server = v
	}
	if v := os.Getenv("SMTP_PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("parse SMTP_PORT: %w", err)
		}
		cfg.SMTP.Port = port
	}
	if v := os.Getenv("SMTP_USER"); v != "" {
		cfg.SMTP.Username = v
	}
	if v := os.Getenv("SMTP_PASSWORD"); v != "" {
		cfg.SMTP.Password = v
	}
	if v := os.Getenv("SMTP_FROM"); v != "" {
		cfg.SMTP.From = v
	}
	if v := os.Getenv("NOTIFY_EMAIL"); v != "" {
		cfg.SMTP.To = v
	}
	if v := os.Getenv("SMTP_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("parse SMTP_TIMEOUT: %w", err)
		}
		cfg.SMTP.Timeout = Duration(d)
	}
	if v := os.Getenv("WHOIS_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("parse WHOIS_TIMEOUT: %w", err)
		}
		cfg.Check.Timeout = Duration(d)
	}
	if v := os.Getenv("CHECK_CONCURRENCY"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("parse CHECK_CONCURRENCY: %w", err)
		}
		cfg.Check.Concurrency = n
	}
	if v := os.Getenv("WHOIS_QPS"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("parse WHOIS_QPS: %w", err)
		}
		cfg.Check.QPS = f
	}
	if v := os.Getenv("GITHUB_OUTPUT"); v != "" {
		cfg.GithubOutput = v
	}
	return nil
}

// Validate checks structural constraints. SMTP credential completeness is
// not checked here: a run with nothing to report must succeed without
// credentials, so the notifier validates them at send time.
func (c Config) Validate() error {
	if c.Watchlist == "" {
		return errors.New("watchlist path must not be empty")
	}
	if c.SMTP.Port < 0 || c.SMTP.Port > 65535 {
		return fmt.Errorf("smtp port %d out of range", c.SMTP.Port)
	}
	if c.Check.Concurrency < 1 {
		return fmt.Errorf("check concurrency must be at least 1, got %d", c.Check.Concurrency)
	}
	if c.Check.Timeout <= 0 {
		return errors.New("whois timeout must be positive")
	}
	return nil
}
