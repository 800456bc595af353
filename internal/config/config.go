// Package config loads gmpplanner settings from defaults, an optional
// gmpplanner.yaml and GMPPLANNER_* environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/Afinucci/Design-Copilot-sub000/internal/relstore"
	"github.com/Afinucci/Design-Copilot-sub000/pkg/compliance"
	"github.com/Afinucci/Design-Copilot-sub000/pkg/engine"
	"github.com/Afinucci/Design-Copilot-sub000/pkg/layout"
	"github.com/Afinucci/Design-Copilot-sub000/pkg/relations"
	"github.com/Afinucci/Design-Copilot-sub000/pkg/scene2d"
	"github.com/Afinucci/Design-Copilot-sub000/pkg/textgen"
)

// EnvPrefix prefixes every environment override, e.g.
// GMPPLANNER_RELATIONS_BACKEND for relations.backend.
const EnvPrefix = "GMPPLANNER"

// Config is the complete gmpplanner configuration.
type Config struct {
	Log        LogConfig         `mapstructure:"log"`
	Server     ServerConfig      `mapstructure:"server"`
	Reference  ReferenceConfig   `mapstructure:"reference"`
	Relations  RelationsConfig   `mapstructure:"relations"`
	TextGen    TextGenConfig     `mapstructure:"textgen"`
	MQTT       MQTTConfig        `mapstructure:"mqtt"`
	Layout     layout.Config     `mapstructure:"layout"`
	Scene      scene2d.Config    `mapstructure:"scene"`
	Compliance compliance.Config `mapstructure:"compliance"`
}

// LogConfig controls the zap logger.
type LogConfig struct {
	// Level is one of "debug", "info", "warn", "error".
	Level string `mapstructure:"level"`
	// Format is "json" or "console".
	Format string `mapstructure:"format"`
}

// ServerConfig controls `gmpplanner serve`.
type ServerConfig struct {
	Addr string `mapstructure:"addr"`
	// MaxBodyBytes caps request bodies.
	MaxBodyBytes int64 `mapstructure:"max_body_bytes"`
}

// ReferenceConfig points at an alternative room reference table. Empty
// uses the built-in table.
type ReferenceConfig struct {
	File string `mapstructure:"file"`
}

// RelationsConfig selects the relationship store and retrieval policy.
type RelationsConfig struct {
	// Backend is "static", "sqlite" or "postgres".
	Backend   string `mapstructure:"backend"`
	RulesFile string `mapstructure:"rules_file"`

	SQLite   SQLiteConfig   `mapstructure:"sqlite"`
	Postgres PostgresConfig `mapstructure:"postgres"`
	Redis    RedisConfig    `mapstructure:"redis"`

	Concurrency    int  `mapstructure:"concurrency"`
	DegradeOnError bool `mapstructure:"degrade_on_error"`
}

// SQLiteConfig locates the SQLite rule database.
type SQLiteConfig struct {
	Path string `mapstructure:"path"`
}

// PostgresConfig locates the Postgres rule database.
type PostgresConfig struct {
	DSN      string `mapstructure:"dsn"`
	MaxConns int    `mapstructure:"max_conns"`
}

// RedisConfig enables the relationship cache when Addr is set.
type RedisConfig struct {
	Addr     string        `mapstructure:"addr"`
	Password string        `mapstructure:"password"`
	DB       int           `mapstructure:"db"`
	TTL      time.Duration `mapstructure:"ttl"`
}

// TextGenConfig selects the text generator.
type TextGenConfig struct {
	// Provider is "rulebased" or "http".
	Provider   string        `mapstructure:"provider"`
	BaseURL    string        `mapstructure:"base_url"`
	APIKey     string        `mapstructure:"api_key"`
	Model      string        `mapstructure:"model"`
	Timeout    time.Duration `mapstructure:"timeout"`
	RetryCount int           `mapstructure:"retry_count"`
}

// MQTTConfig enables layout notifications when Enabled is set.
type MQTTConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Broker   string `mapstructure:"broker"`
	ClientID string `mapstructure:"client_id"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	Topic    string `mapstructure:"topic"`
	QoS      int    `mapstructure:"qos"`
}

// Default returns a Config with the built-in defaults.
func Default() *Config {
	rel := relations.DefaultConfig()
	return &Config{
		Log: LogConfig{
			Level:  "info",
			Format: "json",
		},
		Server: ServerConfig{
			Addr:         ":8080",
			MaxBodyBytes: 1 << 20,
		},
		Relations: RelationsConfig{
			Backend: relstore.BackendStatic,
			SQLite: SQLiteConfig{
				Path: "gmpplanner.db",
			},
			Postgres: PostgresConfig{
				MaxConns: 10,
			},
			Redis: RedisConfig{
				TTL: time.Hour,
			},
			Concurrency:    rel.Concurrency,
			DegradeOnError: rel.DegradeOnError,
		},
		TextGen: TextGenConfig{
			Provider:   "rulebased",
			Model:      "gpt-4o-mini",
			Timeout:    30 * time.Second,
			RetryCount: 2,
		},
		MQTT: MQTTConfig{
			ClientID: "gmpplanner",
			Topic:    "gmpplanner/layouts",
			QoS:      1,
		},
		Layout:     layout.DefaultConfig(),
		Scene:      scene2d.DefaultConfig(),
		Compliance: compliance.DefaultConfig(),
	}
}

// SetDefaults registers default values with viper so every key can be
// overridden from the environment.
func SetDefaults() {
	d := Default()

	viper.SetDefault("log.level", d.Log.Level)
	viper.SetDefault("log.format", d.Log.Format)

	viper.SetDefault("server.addr", d.Server.Addr)
	viper.SetDefault("server.max_body_bytes", d.Server.MaxBodyBytes)

	viper.SetDefault("reference.file", d.Reference.File)

	viper.SetDefault("relations.backend", d.Relations.Backend)
	viper.SetDefault("relations.rules_file", d.Relations.RulesFile)
	viper.SetDefault("relations.sqlite.path", d.Relations.SQLite.Path)
	viper.SetDefault("relations.postgres.dsn", d.Relations.Postgres.DSN)
	viper.SetDefault("relations.postgres.max_conns", d.Relations.Postgres.MaxConns)
	viper.SetDefault("relations.redis.addr", d.Relations.Redis.Addr)
	viper.SetDefault("relations.redis.password", d.Relations.Redis.Password)
	viper.SetDefault("relations.redis.db", d.Relations.Redis.DB)
	viper.SetDefault("relations.redis.ttl", d.Relations.Redis.TTL)
	viper.SetDefault("relations.concurrency", d.Relations.Concurrency)
	viper.SetDefault("relations.degrade_on_error", d.Relations.DegradeOnError)

	viper.SetDefault("textgen.provider", d.TextGen.Provider)
	viper.SetDefault("textgen.base_url", d.TextGen.BaseURL)
	viper.SetDefault("textgen.api_key", d.TextGen.APIKey)
	viper.SetDefault("textgen.model", d.TextGen.Model)
	viper.SetDefault("textgen.timeout", d.TextGen.Timeout)
	viper.SetDefault("textgen.retry_count", d.TextGen.RetryCount)

	viper.SetDefault("mqtt.enabled", d.MQTT.Enabled)
	viper.SetDefault("mqtt.broker", d.MQTT.Broker)
	viper.SetDefault("mqtt.client_id", d.MQTT.ClientID)
	viper.SetDefault("mqtt.username", d.MQTT.Username)
	viper.SetDefault("mqtt.password", d.MQTT.Password)
	viper.SetDefault("mqtt.topic", d.MQTT.Topic)
	viper.SetDefault("mqtt.qos", d.MQTT.QoS)

	viper.SetDefault("layout.iterations", d.Layout.Iterations)
	viper.SetDefault("layout.damping", d.Layout.Damping)
	viper.SetDefault("layout.repulsion", d.Layout.Repulsion)
	viper.SetDefault("layout.attraction", d.Layout.Attraction)
	viper.SetDefault("layout.clustering", d.Layout.Clustering)
	viper.SetDefault("layout.repulsion_radius", d.Layout.RepulsionRadius)
	viper.SetDefault("layout.prohibited_multiplier", d.Layout.ProhibitedMultiplier)
	viper.SetDefault("layout.max_speed", d.Layout.MaxSpeed)
	viper.SetDefault("layout.min_distance", d.Layout.MinDistance)
	viper.SetDefault("layout.overlap_rounds", d.Layout.OverlapRounds)
	viper.SetDefault("layout.settle_rounds", d.Layout.SettleRounds)
	viper.SetDefault("layout.canvas_min", d.Layout.CanvasMin)
	viper.SetDefault("layout.canvas_factor", d.Layout.CanvasFactor)
	viper.SetDefault("layout.flow_boost", d.Layout.FlowBoost)
	viper.SetDefault("layout.linear_pull", d.Layout.LinearPull)
	viper.SetDefault("layout.airlock_gap", d.Layout.AirlockGap)
	viper.SetDefault("layout.seed", d.Layout.Seed)

	viper.SetDefault("scene.scale", d.Scene.Scale)
	viper.SetDefault("scene.margin", d.Scene.Margin)
	viper.SetDefault("scene.door_proximity", d.Scene.DoorProximity)

	viper.SetDefault("compliance.prohibited_penalty", d.Compliance.ProhibitedPenalty)
	viper.SetDefault("compliance.no_relationship_penalty", d.Compliance.NoRelationshipPenalty)
}

// Init prepares viper: defaults, the config file and environment
// overrides. An explicit cfgFile must exist; the default search path may
// come up empty.
func Init(cfgFile string) error {
	SetDefaults()

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("gmpplanner")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(Dir())
		viper.AddConfigPath(".")
	}

	viper.SetEnvPrefix(EnvPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile == "" && errors.As(err, &notFound) {
			return nil
		}
		return fmt.Errorf("reading config: %w", err)
	}
	return nil
}

// Load reads the configuration from viper and validates it.
func Load() (*Config, error) {
	// Start from the defaults so fields viper leaves alone (the ones
	// tagged "-") keep their values.
	cfg := Default()
	if err := viper.Unmarshal(cfg); err != nil {
		return nil, err
	}
	if errs := cfg.Validate(); len(errs) > 0 {
		return nil, ValidationErrors(errs)
	}
	return cfg, nil
}

// Engine returns the engine tunables.
func (c *Config) Engine() engine.Config {
	return engine.Config{
		Layout:     c.Layout,
		Scene:      c.Scene,
		Compliance: c.Compliance,
		Relations: relations.Config{
			Concurrency:    c.Relations.Concurrency,
			DegradeOnError: c.Relations.DegradeOnError,
		},
	}
}

// StoreOptions returns the relationship store options.
func (c *Config) StoreOptions() relstore.Options {
	r := c.Relations
	return relstore.Options{
		Backend:       r.Backend,
		RulesFile:     r.RulesFile,
		SQLitePath:    r.SQLite.Path,
		PostgresDSN:   r.Postgres.DSN,
		MaxConns:      r.Postgres.MaxConns,
		RedisAddr:     r.Redis.Addr,
		RedisPassword: r.Redis.Password,
		RedisDB:       r.Redis.DB,
		CacheTTL:      r.Redis.TTL,
	}
}

// HTTPGenerator returns the chat-completions client settings.
func (c *Config) HTTPGenerator() textgen.HTTPConfig {
	t := c.TextGen
	return textgen.HTTPConfig{
		BaseURL:    t.BaseURL,
		APIKey:     t.APIKey,
		Model:      t.Model,
		Timeout:    t.Timeout,
		RetryCount: t.RetryCount,
	}
}

// Dir returns the user's gmpplanner config directory.
func Dir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "gmpplanner")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ".gmpplanner"
	}
	return filepath.Join(home, ".config", "gmpplanner")
}
