package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds every application setting.
type Config struct {
	HTTP     HTTPConfig     `yaml:"http"`
	Store    StoreConfig    `yaml:"store"`
	Database DatabaseConfig `yaml:"database"`
	RabbitMQ RabbitMQConfig `yaml:"rabbitmq"`
	Discord  DiscordConfig  `yaml:"discord"`
	Notify   NotifyConfig   `yaml:"notify"`
}

type HTTPConfig struct {
	Port      int    `yaml:"port"`
	StaticDir string `yaml:"static_dir"`
}

type StoreConfig struct {
	// Driver is "postgres" or "memory".
	Driver string `yaml:"driver"`
}

type DatabaseConfig struct {
	URL      string `yaml:"url"`
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Database string `yaml:"database"`
	SSLMode  string `yaml:"sslmode"`
	MaxConns int32  `yaml:"max_conns"`
}

type RabbitMQConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	VHost    string `yaml:"vhost"`
	Exchange string `yaml:"exchange"`
}

// Enabled reports whether the order event feed should be published.
func (r RabbitMQConfig) Enabled() bool { return r.Host != "" }

type DiscordConfig struct {
	Token          string `yaml:"token"`
	ClientID       string `yaml:"client_id"`
	GuildID        string `yaml:"guild_id"`
	StaffChannelID string `yaml:"staff_channel_id"`
	ThumbnailURL   string `yaml:"thumbnail_url"`
}

func (d DiscordConfig) Enabled() bool { return d.Token != "" }

type NotifyConfig struct {
	Timeout time.Duration `yaml:"timeout"`
	// Timezone names the IANA zone dates are shown in; empty means local time.
	Timezone string `yaml:"timezone"`
}

// Location resolves Timezone, falling back to time.Local.
func (n NotifyConfig) Location() (*time.Location, error) {
	if n.Timezone == "" {
		return time.Local, nil
	}
	return time.LoadLocation(n.Timezone)
}

func defaults() Config {
	return Config{
		HTTP:     HTTPConfig{Port: 3000},
		Store:    StoreConfig{Driver: "postgres"},
		Database: DatabaseConfig{Port: 5432, SSLMode: "disable", MaxConns: 10},
		RabbitMQ: RabbitMQConfig{Port: 5672, VHost: "/", Exchange: "orders_events"},
		Notify:   NotifyConfig{Timeout: 5 * time.Second},
	}
}

// LoadConfig reads the YAML file at path (optional when empty), applies
// environment overrides and validates the result.
func LoadConfig(path string) (*Config, error) {
	cfg := defaults()
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("couldn't open the configuration file: %w", err)
		}
		if err := yaml.Unmarshal(b, &cfg); err != nil {
			return nil, fmt.Errorf("error reading %s: %w", path, err)
		}
	}
	applyEnv(&cfg, os.Getenv)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func applyEnv(cfg *Config, getenv func(string) string) {
	set := func(dst *string, key string) {
		if v := strings.TrimSpace(getenv(key)); v != "" {
			*dst = v
		}
	}
	set(&cfg.Discord.Token, "DISCORD_TOKEN")
	set(&cfg.Discord.ClientID, "DISCORD_CLIENT_ID")
	set(&cfg.Discord.GuildID, "DISCORD_GUILD_ID")
	set(&cfg.Discord.StaffChannelID, "CHANNEL_ID_FERMIERS")
	set(&cfg.Database.URL, "DATABASE_URL")
	set(&cfg.Database.Password, "DATABASE_PASSWORD")
	set(&cfg.RabbitMQ.Password, "RABBITMQ_PASSWORD")
	set(&cfg.Store.Driver, "STORE_DRIVER")
	if v := getenv("PORT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.HTTP.Port = n
		}
	}
}

// Validate checks the combination of settings.
func (c *Config) Validate() error {
	var errs []error
	switch c.Store.Driver {
	case "memory":
	case "postgres":
		if c.Database.URL == "" && (c.Database.Host == "" || c.Database.User == "" || c.Database.Database == "") {
			errs = append(errs, errors.New("database config incomplete"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown store driver %q", c.Store.Driver))
	}
	if c.RabbitMQ.Enabled() && c.RabbitMQ.User == "" {
		errs = append(errs, errors.New("rabbitmq config incomplete"))
	}
	if c.Discord.Enabled() && c.Discord.StaffChannelID == "" {
		errs = append(errs, errors.New("discord staff_channel_id is required when a token is set"))
	}
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		errs = append(errs, fmt.Errorf("invalid http port %d", c.HTTP.Port))
	}
	if c.Notify.Timeout <= 0 {
		errs = append(errs, errors.New("notify timeout must be positive"))
	}
	if _, err := c.Notify.Location(); err != nil {
		errs = append(errs, fmt.Errorf("notify timezone: %w", err))
	}
	return errors.Join(errs...)
}

// DSN returns the Postgres connection string.
func (d DatabaseConfig) DSN() string {
	if d.URL != "" {
		return d.URL
	}
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.Database, d.SSLMode)
}
