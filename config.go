package signpost

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"
)

// Config is the data-only configuration surface, loaded once at process
// startup, that shapes the ambient stack (logging). DefaultBodyLimit is
// carried as data only: Pipeline does not read it and applies the
// package-level DefaultBodyLimit instead. It intentionally carries no
// socket, TLS or listener configuration: wiring a Tree to a concrete
// network listener is the embedding application's job.
type Config struct {
	AppName string `mapstructure:"app_name" toml:"app_name" yaml:"app_name"`

	LogFormat string `mapstructure:"log_format" toml:"log_format" yaml:"log_format"`
	LogOutput string `mapstructure:"log_output" toml:"log_output" yaml:"log_output"`

	DefaultBodyLimit int64 `mapstructure:"default_body_limit" toml:"default_body_limit" yaml:"default_body_limit"`

	Channels []ChannelConfig `mapstructure:"channels" toml:"channels" yaml:"channels"`
}

// ChannelConfig names one (host, subdomain, alias) registration group read
// from configuration, so that deployment-specific host sets (staging
// aliases, canonical production hosts) need not be compiled into the
// binary. It is consumed by application code building a Builder, via
// Builder.AddHostAlias and the Hosts/HostAliases/Subdomains fields of a
// DispatchSpec; it is not consulted by the Tree or Builder themselves.
type ChannelConfig struct {
	Name        string   `mapstructure:"name" toml:"name" yaml:"name"`
	Hosts       []string `mapstructure:"hosts" toml:"hosts" yaml:"hosts"`
	HostAliases []string `mapstructure:"host_aliases" toml:"host_aliases" yaml:"host_aliases"`
	Subdomains  []string `mapstructure:"subdomains" toml:"subdomains" yaml:"subdomains"`
}

// DefaultConfig returns a Config with the same defaults NewLogger and the
// pipeline apply when no configuration file is present.
func DefaultConfig() Config {
	return Config{
		AppName:          "signpost",
		LogFormat:        DefaultLogFormat,
		LogOutput:        "stdout",
		DefaultBodyLimit: DefaultBodyLimit,
	}
}

// LoadConfig reads a TOML (".toml") or YAML (".yaml", ".yml") file, selected
// by its extension, into a Config, starting from DefaultConfig. Any other
// extension is an error.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("signpost: reading config %q: %w", path, err)
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		if _, err := toml.Decode(string(data), &cfg); err != nil {
			return cfg, fmt.Errorf("signpost: decoding TOML config %q: %w", path, err)
		}
	case ".yaml", ".yml":
		var raw map[string]interface{}
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return cfg, fmt.Errorf("signpost: decoding YAML config %q: %w", path, err)
		}
		if err := mapstructure.Decode(raw, &cfg); err != nil {
			return cfg, fmt.Errorf("signpost: mapping YAML config %q: %w", path, err)
		}
	default:
		return cfg, fmt.Errorf("signpost: unrecognised config extension for %q", path)
	}

	return cfg, nil
}

// NewLoggerFromConfig builds a Logger honouring cfg's AppName, LogFormat and
// LogOutput ("stdout", "stderr", or a file path).
func NewLoggerFromConfig(cfg Config) (*Logger, error) {
	l := NewLogger(cfg.AppName)
	if cfg.LogFormat != "" {
		l.Format = cfg.LogFormat
	}

	switch cfg.LogOutput {
	case "", "stdout":
		l.Output = os.Stdout
	case "stderr":
		l.Output = os.Stderr
	default:
		f, err := os.OpenFile(cfg.LogOutput, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
		if err != nil {
			return nil, fmt.Errorf("signpost: opening log output %q: %w", cfg.LogOutput, err)
		}
		l.Output = f
	}

	return l, nil
}
