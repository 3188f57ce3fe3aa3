// Copyright 2026 Blink Labs Software
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package config

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"

	"github.com/blinklabs-io/leapfrog/database/plugin"
	"github.com/blinklabs-io/leapfrog/tokenledger"
)

type ctxKey string

const configContextKey ctxKey = "leapfrog.config"

func WithContext(ctx context.Context, cfg *Config) context.Context {
	return context.WithValue(ctx, configContextKey, cfg)
}

func FromContext(ctx context.Context) *Config {
	cfg, ok := ctx.Value(configContextKey).(*Config)
	if !ok {
		return nil
	}
	return cfg
}

const (
	DefaultBlobPlugin     = "badger"
	DefaultMetadataPlugin = "sqlite"

	TracingExporterOtlp   = "otlp"
	TracingExporterStdout = "stdout"

	envPrefix = "leapfrog"
)

// ErrPluginListRequested is returned when the user requests to list available plugins
// This is not an error condition but a successful operation that displays plugin information
var ErrPluginListRequested = errors.New("plugin list requested")

type tempConfig struct {
	Config   *Config         `yaml:"config,omitempty"`
	Database *databaseConfig `yaml:"database,omitempty"`
}

type databaseConfig struct {
	Blob     map[string]any `yaml:"blob,omitempty"`
	Metadata map[string]any `yaml:"metadata,omitempty"`
}

type Config struct {
	DatabasePath         string        `yaml:"databasePath"         split_words:"true"`
	BlobPlugin           string        `yaml:"blobPlugin"           envconfig:"DATABASE_BLOB_PLUGIN"`
	MetadataPlugin       string        `yaml:"metadataPlugin"       envconfig:"DATABASE_METADATA_PLUGIN"`
	BindAddr             string        `yaml:"bindAddr"             split_words:"true"`
	ApiPort              uint          `yaml:"apiPort"              split_words:"true"`
	MetricsPort          uint          `yaml:"metricsPort"          split_words:"true"`
	CorsOrigins          []string      `yaml:"corsOrigins"          split_words:"true"`
	CooldownPeriod       time.Duration `yaml:"cooldownPeriod"       split_words:"true"`
	DefaultQuorumPercent uint8         `yaml:"defaultQuorumPercent" split_words:"true"`
	AutoActivate         bool          `yaml:"autoActivate"         split_words:"true"`
	FinalizeInterval     time.Duration `yaml:"finalizeInterval"     split_words:"true"`
	FinalizeBatchSize    int           `yaml:"finalizeBatchSize"    split_words:"true"`
	ShutdownTimeout      time.Duration `yaml:"shutdownTimeout"      split_words:"true"`
	RedisUrl             string        `yaml:"redisUrl"             split_words:"true"`
	RedisStream          string        `yaml:"redisStream"          split_words:"true"`
	Tracing              bool          `yaml:"tracing"`
	TracingExporter      string        `yaml:"tracingExporter"      split_words:"true"`
	// Genesis balances credited to the local token ledger for mints that
	// hold no supply yet
	Genesis []tokenledger.Allocation `yaml:"genesis" ignored:"true"`
}

func defaultConfig() *Config {
	return &Config{
		DatabasePath:         ".leapfrog",
		BlobPlugin:           DefaultBlobPlugin,
		MetadataPlugin:       DefaultMetadataPlugin,
		BindAddr:             "0.0.0.0",
		ApiPort:              8080,
		MetricsPort:          12799,
		CooldownPeriod:       24 * time.Hour,
		DefaultQuorumPercent: 10,
		AutoActivate:         true,
		FinalizeInterval:     30 * time.Second,
		FinalizeBatchSize:    100,
		ShutdownTimeout:      30 * time.Second,
		RedisStream:          "leapfrog:events",
		TracingExporter:      TracingExporterOtlp,
	}
}

var globalConfig = defaultConfig()

// LoadConfig builds the config from defaults, the YAML config file and the
// environment, in that order. With no config file given, the user and
// system locations are tried.
func LoadConfig(configFile string) (*Config, error) {
	cfg := defaultConfig()
	if configFile == "" {
		// Check for config file in this path: ~/.leapfrog/leapfrog.yaml
		if homeDir, err := os.UserHomeDir(); err == nil {
			userPath := filepath.Join(homeDir, ".leapfrog", "leapfrog.yaml")
			if _, err := os.Stat(userPath); err == nil {
				configFile = userPath
			}
		}
		if configFile == "" {
			systemPath := "/etc/leapfrog/leapfrog.yaml"
			if _, err := os.Stat(systemPath); err == nil {
				configFile = systemPath
			}
		}
	}
	if configFile != "" {
		if err := loadFile(cfg, configFile); err != nil {
			return nil, err
		}
	}
	if err := envconfig.Process(envPrefix, cfg); err != nil {
		return nil, fmt.Errorf("error processing environment: %w", err)
	}
	if err := plugin.ProcessEnvVars(); err != nil {
		return nil, fmt.Errorf(
			"error processing plugin environment variables: %w",
			err,
		)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	globalConfig = cfg
	return cfg, nil
}

func loadFile(cfg *Config, configFile string) error {
	buf, err := os.ReadFile(configFile)
	if err != nil {
		return fmt.Errorf("error reading config file: %w", err)
	}
	// Values in the file overlay the defaults already in cfg
	tempCfg := tempConfig{Config: cfg}
	if err := yaml.Unmarshal(buf, &tempCfg); err != nil {
		return fmt.Errorf("error parsing config file: %w", err)
	}
	var probe map[string]any
	if err := yaml.Unmarshal(buf, &probe); err != nil {
		return fmt.Errorf("error parsing config file: %w", err)
	}
	if _, ok := probe["config"]; !ok {
		// No config section, the whole file is the main config
		if err := yaml.Unmarshal(buf, cfg); err != nil {
			return fmt.Errorf("error parsing config file: %w", err)
		}
	}
	if tempCfg.Database == nil {
		return nil
	}
	pluginConfig := make(map[string]map[string]map[string]any)
	if tempCfg.Database.Blob != nil {
		name, opts, err := pluginSection("blob", tempCfg.Database.Blob)
		if err != nil {
			return err
		}
		if name != "" {
			cfg.BlobPlugin = name
		}
		pluginConfig["blob"] = opts
	}
	if tempCfg.Database.Metadata != nil {
		name, opts, err := pluginSection("metadata", tempCfg.Database.Metadata)
		if err != nil {
			return err
		}
		if name != "" {
			cfg.MetadataPlugin = name
		}
		pluginConfig["metadata"] = opts
	}
	if err := plugin.ProcessConfig(pluginConfig); err != nil {
		return fmt.Errorf("error processing plugin config: %w", err)
	}
	return nil
}

// pluginSection splits a database section into the selected plugin name and
// the per-plugin option maps
func pluginSection(
	section string,
	raw map[string]any,
) (string, map[string]map[string]any, error) {
	var name string
	opts := make(map[string]map[string]any)
	for k, v := range raw {
		if k == "plugin" {
			pluginName, ok := v.(string)
			if !ok {
				return "", nil, fmt.Errorf(
					"database.%s.plugin: expected string, got %T",
					section,
					v,
				)
			}
			name = pluginName
			continue
		}
		val, ok := v.(map[string]any)
		if !ok {
			return "", nil, fmt.Errorf(
				"database.%s.%s: expected map, got %T",
				section,
				k,
				v,
			)
		}
		opts[k] = val
	}
	return name, opts, nil
}

// Validate checks values the loaders cannot
func (c *Config) Validate() error {
	if c.DefaultQuorumPercent == 0 || c.DefaultQuorumPercent > 100 {
		return fmt.Errorf(
			"invalid defaultQuorumPercent: %d (must be 1..100)",
			c.DefaultQuorumPercent,
		)
	}
	if c.CooldownPeriod < 0 {
		return fmt.Errorf("invalid cooldownPeriod: %s", c.CooldownPeriod)
	}
	if c.FinalizeInterval < 0 {
		return fmt.Errorf("invalid finalizeInterval: %s", c.FinalizeInterval)
	}
	switch c.TracingExporter {
	case TracingExporterOtlp, TracingExporterStdout:
	default:
		return fmt.Errorf(
			"invalid tracingExporter: %q (must be '%s' or '%s')",
			c.TracingExporter,
			TracingExporterOtlp,
			TracingExporterStdout,
		)
	}
	return nil
}

func GetConfig() *Config {
	return globalConfig
}
