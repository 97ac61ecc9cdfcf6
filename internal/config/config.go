// Copyright 2025 Blink Labs Software
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
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/blinklabs-io/boarding/address"
	"github.com/blinklabs-io/boarding/registry"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

type ctxKey string

const configContextKey ctxKey = "boarding.config"

const (
	DefaultShutdownTimeout = "30s"
	DefaultDatabasePath    = ".boarding"
	envPrefix              = "boarding"
)

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

// RunMode represents the operational mode of the node
type RunMode string

const (
	RunModeServe RunMode = "serve" // Normal operation (default)
	RunModeDev   RunMode = "dev"   // Development mode, airdrops enabled
)

// Valid returns true if the RunMode is a known valid mode
func (m RunMode) Valid() bool {
	switch m {
	case RunModeServe, RunModeDev, "":
		return true
	default:
		return false
	}
}

// IsDevMode returns true if the mode enables development behaviors
func (m RunMode) IsDevMode() bool {
	return m == RunModeDev
}

type tempConfig struct {
	Config yaml.Node `yaml:"config,omitempty"`
}

type Config struct {
	DatabasePath    string  `yaml:"databasePath"    split_words:"true"`
	BindAddr        string  `yaml:"bindAddr"        split_words:"true"`
	ProgramID       string  `yaml:"programId"       envconfig:"PROGRAM_ID"`
	FeeMode         string  `yaml:"feeMode"         split_words:"true"`
	ShutdownTimeout string  `yaml:"shutdownTimeout" split_words:"true"`
	RunMode         RunMode `yaml:"runMode"         split_words:"true"`
	BlobCacheSize   uint64  `yaml:"blobCacheSize"   split_words:"true"`
	AirdropLimit    uint64  `yaml:"airdropLimit"    split_words:"true"`
	ApiPort         uint    `yaml:"apiPort"         split_words:"true"`
	MetricsPort     uint    `yaml:"metricsPort"     split_words:"true"`
	StrictDecisions bool    `yaml:"strictDecisions" split_words:"true"`
	EventStream     bool    `yaml:"eventStream"     split_words:"true"`
	Tracing         bool    `yaml:"tracing"`
	TracingStdout   bool    `yaml:"tracingStdout"   split_words:"true"`
}

func defaultConfig() *Config {
	return &Config{
		DatabasePath:    DefaultDatabasePath,
		BindAddr:        "0.0.0.0",
		ProgramID:       registry.DefaultProgramID.String(),
		FeeMode:         string(registry.FeeModeLive),
		ShutdownTimeout: DefaultShutdownTimeout,
		RunMode:         RunModeServe,
		BlobCacheSize:   256 << 20,
		ApiPort:         8080,
		MetricsPort:     12799,
		EventStream:     true,
	}
}

var globalConfig = defaultConfig()

func LoadConfig(configFile string) (*Config, error) {
	// Load config file as YAML if provided
	if configFile == "" {
		// Check for config file in this path: ~/.boarding/boarding.yaml
		if homeDir, err := os.UserHomeDir(); err == nil {
			userPath := filepath.Join(homeDir, ".boarding", "boarding.yaml")
			if _, err := os.Stat(userPath); err == nil {
				configFile = userPath
			}
		}

		// Try to check for /etc/boarding/boarding.yaml if still not found
		if configFile == "" {
			systemPath := "/etc/boarding/boarding.yaml"
			if _, err := os.Stat(systemPath); err == nil {
				configFile = systemPath
			}
		}
	}

	if configFile != "" {
		buf, err := os.ReadFile(configFile)
		if err != nil {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		var tempCfg tempConfig
		if err := yaml.Unmarshal(buf, &tempCfg); err != nil {
			return nil, fmt.Errorf("error parsing config file: %w", err)
		}
		// If config section exists, use it for main config
		if !tempCfg.Config.IsZero() {
			// Decode in place so defaults not named in the section survive
			if err := tempCfg.Config.Decode(globalConfig); err != nil {
				return nil, fmt.Errorf("error parsing config section: %w", err)
			}
		} else {
			if err := yaml.Unmarshal(buf, globalConfig); err != nil {
				return nil, fmt.Errorf("error parsing config file: %w", err)
			}
		}
	}
	// Process environment variables
	if err := envconfig.Process(envPrefix, globalConfig); err != nil {
		return nil, fmt.Errorf("error processing environment: %+w", err)
	}
	if err := globalConfig.validate(); err != nil {
		return nil, err
	}
	if globalConfig.RunMode == "" {
		globalConfig.RunMode = RunModeServe
	}
	return globalConfig, nil
}

func (c *Config) validate() error {
	if !c.RunMode.Valid() {
		return fmt.Errorf(
			"invalid runMode: %q (must be 'serve' or 'dev')",
			c.RunMode,
		)
	}
	if _, err := registry.ParseFeeMode(c.FeeMode); err != nil {
		return fmt.Errorf("invalid feeMode: %w", err)
	}
	if _, err := address.Parse(c.ProgramID); err != nil {
		return fmt.Errorf("invalid programId: %w", err)
	}
	if c.ShutdownTimeout != "" {
		if _, err := time.ParseDuration(c.ShutdownTimeout); err != nil {
			return fmt.Errorf("invalid shutdownTimeout: %w", err)
		}
	}
	return nil
}

func GetConfig() *Config {
	return globalConfig
}
