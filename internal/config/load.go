package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	yaml "go.yaml.in/yaml/v3"
)

const (
	DefaultMaxPerRun = 50
	DefaultStatePath = "./xtf_state.json"
	DefaultSchedule  = "15m"
)

// Env variable names honored by ApplyEnv. Environment values win over the
// file so secrets can stay out of it entirely.
const (
	EnvBearerToken = "XTF_BEARER_TOKEN"
	EnvBotToken    = "XTF_BOT_TOKEN"
	EnvChatID      = "XTF_CHAT_ID"
)

// Load reads, strictly decodes, env-overrides and normalizes the config file.
func Load(path string) (*Config, error) {
	cfg, err := Parse(path)
	if err != nil {
		return nil, err
	}
	cfg.ApplyEnv()
	cfg.Normalize()
	return cfg, nil
}

// Parse decodes the file without applying env overrides or defaults.
//
// YAML configs are decoded and re-encoded to JSON first so that both
// formats go through the same strict decode: unknown keys are rejected
// either way.
func Parse(path string) (*Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	jb, err := configJSON(path, raw)
	if err != nil {
		return nil, err
	}

	var cfg Config
	dec := json.NewDecoder(bytes.NewReader(jb))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&cfg); err != nil {
		return nil, err
	}
	// reject trailing tokens (e.g. concatenated JSON)
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		if err == nil {
			return nil, fmt.Errorf("invalid config: trailing data")
		}
		return nil, err
	}
	return &cfg, nil
}

// configJSON returns the file's contents as JSON bytes, converting YAML
// when the extension says so.
func configJSON(path string, raw []byte) ([]byte, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
	default:
		return raw, nil
	}

	var doc any
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("parse yaml config: %w", err)
	}
	return json.Marshal(stringifyKeys(doc))
}

// stringifyKeys rewrites the map[any]any nodes a YAML decode produces into
// map[string]any so the document can pass through encoding/json.
func stringifyKeys(v any) any {
	switch n := v.(type) {
	case map[any]any:
		out := make(map[string]any, len(n))
		for k, item := range n {
			out[fmt.Sprint(k)] = stringifyKeys(item)
		}
		return out
	case map[string]any:
		for k, item := range n {
			n[k] = stringifyKeys(item)
		}
		return n
	case []any:
		for i, item := range n {
			n[i] = stringifyKeys(item)
		}
		return n
	}
	return v
}

// ParseDurationField parses an optional Go duration string from the config.
// Empty means zero (use the driver default); negative values are rejected.
func ParseDurationField(field, raw string) (time.Duration, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", field, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("%s: negative duration %q", field, raw)
	}
	return d, nil
}

// ApplyEnv overrides secret-bearing fields from the environment.
func (c *Config) ApplyEnv() {
	if v := strings.TrimSpace(os.Getenv(EnvBearerToken)); v != "" {
		c.Source.BearerToken = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvBotToken)); v != "" {
		c.Telegram.Token = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvChatID)); v != "" {
		c.Telegram.ChatID = v
	}
}

// Normalize fills defaults for omitted fields.
func (c *Config) Normalize() {
	if c.Source.MaxPerRun <= 0 {
		c.Source.MaxPerRun = DefaultMaxPerRun
	}
	if strings.TrimSpace(c.State.Driver) == "" {
		c.State.Driver = "file"
	}
	if strings.TrimSpace(c.State.Path) == "" {
		c.State.Path = DefaultStatePath
	}
	if strings.TrimSpace(c.Logging.Level) == "" {
		c.Logging.Level = "info"
	}
	if !c.Logging.Console && !c.Logging.File.Enabled {
		c.Logging.Console = true
	}
	if strings.TrimSpace(c.Schedule.Spec) == "" {
		c.Schedule.Spec = DefaultSchedule
	}
}

// Validate checks fields every mode needs. Delivery credentials are checked
// separately by the caller because dry-run works without them.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Source.Handle) == "" {
		return errors.New("source.handle is required")
	}
	if strings.TrimSpace(c.Source.BearerToken) == "" {
		return fmt.Errorf("source.bearer_token is required (or set %s)", EnvBearerToken)
	}
	switch strings.ToLower(strings.TrimSpace(c.State.Driver)) {
	case "file", "sqlite", "sqlite3":
	default:
		return fmt.Errorf("unknown state.driver %q", c.State.Driver)
	}
	if _, err := ParseDurationField("state.busy_timeout", c.State.BusyTimeout); err != nil {
		return err
	}
	return nil
}

// ValidateDelivery checks the fields needed for real (non-dry-run) sends.
func (c *Config) ValidateDelivery() error {
	if strings.TrimSpace(c.Telegram.Token) == "" {
		return fmt.Errorf("telegram.token is required (or set %s)", EnvBotToken)
	}
	if strings.TrimSpace(c.Telegram.ChatID) == "" {
		return fmt.Errorf("telegram.chat_id is required (or set %s)", EnvChatID)
	}
	return nil
}
