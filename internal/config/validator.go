package config

import (
	"fmt"
	"slices"
	"strings"

	"github.com/Afinucci/Design-Copilot-sub000/internal/relstore"
)

// ValidationError is a single invalid setting.
type ValidationError struct {
	Field   string
	Value   any
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s (got: %v)", e.Field, e.Message, e.Value)
}

// ValidationErrors collects every invalid setting.
type ValidationErrors []ValidationError

func (e ValidationErrors) Error() string {
	if len(e) == 0 {
		return ""
	}
	if len(e) == 1 {
		return e[0].Error()
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "%d validation errors:\n", len(e))
	for i, err := range e {
		fmt.Fprintf(&sb, "  %d. %s\n", i+1, err.Error())
	}
	return sb.String()
}

// ValidLogLevels returns the accepted log levels.
func ValidLogLevels() []string {
	return []string{"debug", "info", "warn", "error"}
}

// ValidBackends returns the accepted relationship store backends.
func ValidBackends() []string {
	return []string{relstore.BackendStatic, relstore.BackendSQLite, relstore.BackendPostgres}
}

// ValidProviders returns the accepted text generator providers.
func ValidProviders() []string {
	return []string{"rulebased", "http"}
}

// Validate returns every invalid setting in c.
func (c *Config) Validate() []ValidationError {
	var errs []ValidationError
	errs = append(errs, c.validateLog()...)
	errs = append(errs, c.validateRelations()...)
	errs = append(errs, c.validateTextGen()...)
	errs = append(errs, c.validateMQTT()...)
	errs = append(errs, c.validateEngine()...)
	return errs
}

func oneOf(field, value string, valid []string) []ValidationError {
	if slices.Contains(valid, value) {
		return nil
	}
	return []ValidationError{{
		Field:   field,
		Value:   value,
		Message: fmt.Sprintf("must be one of: %s", strings.Join(valid, ", ")),
	}}
}

func (c *Config) validateLog() []ValidationError {
	errs := oneOf("log.level", c.Log.Level, ValidLogLevels())
	return append(errs, oneOf("log.format", c.Log.Format, []string{"json", "console"})...)
}

func (c *Config) validateRelations() []ValidationError {
	r := c.Relations
	errs := oneOf("relations.backend", r.Backend, ValidBackends())
	switch r.Backend {
	case relstore.BackendSQLite:
		if r.SQLite.Path == "" {
			errs = append(errs, ValidationError{Field: "relations.sqlite.path", Value: r.SQLite.Path, Message: "required for the sqlite backend"})
		}
	case relstore.BackendPostgres:
		if r.Postgres.DSN == "" {
			errs = append(errs, ValidationError{Field: "relations.postgres.dsn", Value: r.Postgres.DSN, Message: "required for the postgres backend"})
		}
	}
	if r.Concurrency < 1 {
		errs = append(errs, ValidationError{Field: "relations.concurrency", Value: r.Concurrency, Message: "must be at least 1"})
	}
	if r.Redis.Addr != "" && r.Redis.TTL <= 0 {
		errs = append(errs, ValidationError{Field: "relations.redis.ttl", Value: r.Redis.TTL, Message: "must be positive when the cache is enabled"})
	}
	return errs
}

func (c *Config) validateTextGen() []ValidationError {
	t := c.TextGen
	errs := oneOf("textgen.provider", t.Provider, ValidProviders())
	if t.Provider == "http" {
		if t.BaseURL == "" {
			errs = append(errs, ValidationError{Field: "textgen.base_url", Value: t.BaseURL, Message: "required for the http provider"})
		}
		if t.Model == "" {
			errs = append(errs, ValidationError{Field: "textgen.model", Value: t.Model, Message: "required for the http provider"})
		}
	}
	if t.RetryCount < 0 {
		errs = append(errs, ValidationError{Field: "textgen.retry_count", Value: t.RetryCount, Message: "must be non-negative"})
	}
	return errs
}

func (c *Config) validateMQTT() []ValidationError {
	m := c.MQTT
	if !m.Enabled {
		return nil
	}
	var errs []ValidationError
	if m.Broker == "" {
		errs = append(errs, ValidationError{Field: "mqtt.broker", Value: m.Broker, Message: "required when mqtt is enabled"})
	}
	if m.Topic == "" {
		errs = append(errs, ValidationError{Field: "mqtt.topic", Value: m.Topic, Message: "required when mqtt is enabled"})
	}
	if m.QoS < 0 || m.QoS > 2 {
		errs = append(errs, ValidationError{Field: "mqtt.qos", Value: m.QoS, Message: "must be 0, 1 or 2"})
	}
	return errs
}

func (c *Config) validateEngine() []ValidationError {
	var errs []ValidationError
	if err := c.Layout.Validate(); err != nil {
		errs = append(errs, ValidationError{Field: "layout", Value: "", Message: err.Error()})
	}
	if c.Scene.Scale <= 0 {
		errs = append(errs, ValidationError{Field: "scene.scale", Value: c.Scene.Scale, Message: "must be positive"})
	}
	if c.Scene.DoorProximity <= 0 {
		errs = append(errs, ValidationError{Field: "scene.door_proximity", Value: c.Scene.DoorProximity, Message: "must be positive"})
	}
	if c.Compliance.ProhibitedPenalty < 0 || c.Compliance.NoRelationshipPenalty < 0 {
		errs = append(errs, ValidationError{Field: "compliance", Value: c.Compliance, Message: "penalties must be non-negative"})
	}
	return errs
}
