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
	"fmt"
	"os"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

type ctxKey string

const configContextKey ctxKey = "quill.config"

const DefaultShutdownTimeout = "30s"

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

type Config struct {
	ProgramID       string `yaml:"programId"       envconfig:"QUILL_PROGRAM_ID"`
	DataDir         string `yaml:"dataDir"                                       split_words:"true"`
	ApiListenAddr   string `yaml:"apiListenAddr"                                 split_words:"true"`
	ShutdownTimeout string `yaml:"shutdownTimeout"                               split_words:"true"`
	MetricsPort     uint   `yaml:"metricsPort"                                   split_words:"true"`
	SlotCapacity    uint32 `yaml:"slotCapacity"                                  split_words:"true"`
	Tracing         bool   `yaml:"tracing"`
	TracingStdout   bool   `yaml:"tracingStdout"                                 split_words:"true"`
}

var globalConfig = &Config{
	DataDir:         ".quill",
	ApiListenAddr:   ":8322",
	MetricsPort:     12822,
	SlotCapacity:    65536,
	ShutdownTimeout: DefaultShutdownTimeout,
}

// LoadConfig loads the config from an optional YAML file and then
// applies environment variable overrides
func LoadConfig(configFile string) (*Config, error) {
	if configFile != "" {
		buf, err := os.ReadFile(configFile)
		if err != nil {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		if err := yaml.Unmarshal(buf, globalConfig); err != nil {
			return nil, fmt.Errorf("error parsing config file: %w", err)
		}
	}
	if err := envconfig.Process("quill", globalConfig); err != nil {
		return nil, fmt.Errorf("error processing environment: %w", err)
	}
	return globalConfig, nil
}

// GetConfig returns the global config instance
func GetConfig() *Config {
	return globalConfig
}
