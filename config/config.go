// Copyright 2026 The Launchman Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use file except in compliance with the License.
// You may obtain a copy of the license at
//
//    http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package config loads the launchman daemon configuration.  Values are
// layered: built in defaults, then an optional YAML file, then environment
// variables named LAUNCHMAN_<KEY>, e.g. LAUNCHMAN_GRACE_PERIOD=3s.
package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"

	"github.com/launchman/launchman"
)

const (
	EnvPrefix = "LAUNCHMAN_"

	// PathEnvVar names a config file, when none is given explicitly.
	PathEnvVar = "LAUNCHMAN_CONFIG"
)

// DefaultPaths are tried in order when no config file is named.
var DefaultPaths = []string{
	"launchman.yaml",
	"launchman.yml",
}

type Config struct {
	Name          string        `koanf:"name"`
	Addr          string        `koanf:"addr"`
	AppsFile      string        `koanf:"apps_file"`
	StaticDir     string        `koanf:"static_dir"`
	Shell         string        `koanf:"shell"`
	GracePeriod   time.Duration `koanf:"grace_period"`
	SettleDelay   time.Duration `koanf:"settle_delay"`
	ProbeTimeout  time.Duration `koanf:"probe_timeout"`
	LookupTimeout time.Duration `koanf:"lookup_timeout"`
	Metrics       bool          `koanf:"metrics"`
}

func Default() *Config {
	return &Config{
		Name:          "launchman",
		Addr:          net.JoinHostPort("127.0.0.1", strconv.Itoa(launchman.DashboardPort)),
		AppsFile:      "apps.json",
		StaticDir:     "static",
		Shell:         launchman.DefaultShell,
		GracePeriod:   launchman.DefaultGracePeriod,
		SettleDelay:   launchman.DefaultSettleDelay,
		ProbeTimeout:  launchman.DefaultProbeTimeout,
		LookupTimeout: launchman.DefaultLookupTimeout,
		Metrics:       true,
	}
}

// Load builds the configuration.  If path is empty, the file named by
// LAUNCHMAN_CONFIG or the first of DefaultPaths that exists is used, and
// having none is fine.  A path that is given must exist.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(Default(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if path == "" {
		path = findConfigFile()
	} else if _, err := os.Stat(path); err != nil {
		return nil, err
	}
	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

func findConfigFile() string {
	if p := os.Getenv(PathEnvVar); p != "" {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	for _, p := range DefaultPaths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

// envTransformFunc maps LAUNCHMAN_GRACE_PERIOD to grace_period.
func envTransformFunc(key string) string {
	return strings.ToLower(strings.TrimPrefix(key, EnvPrefix))
}

func (c *Config) Validate() error {
	var errs []error
	if c.Addr == "" {
		errs = append(errs, errors.New("addr is required"))
	} else if _, err := c.DashboardPort(); err != nil {
		errs = append(errs, fmt.Errorf("addr %q: %w", c.Addr, err))
	}
	if c.AppsFile == "" {
		errs = append(errs, errors.New("apps_file is required"))
	}
	if c.Shell == "" {
		errs = append(errs, errors.New("shell is required"))
	}
	for _, d := range []struct {
		name  string
		value time.Duration
	}{
		{"grace_period", c.GracePeriod},
		{"settle_delay", c.SettleDelay},
		{"probe_timeout", c.ProbeTimeout},
		{"lookup_timeout", c.LookupTimeout},
	} {
		if d.value <= 0 {
			errs = append(errs, fmt.Errorf("%s must be positive, got %v", d.name, d.value))
		}
	}
	return errors.Join(errs...)
}

// DashboardPort returns the port the daemon listens on, which is kept
// from being assigned to apps.
func (c *Config) DashboardPort() (int, error) {
	_, port, err := net.SplitHostPort(c.Addr)
	if err != nil {
		return 0, err
	}
	p, err := strconv.Atoi(port)
	if err != nil || p < 0 {
		return 0, fmt.Errorf("bad port %q", port)
	}
	return p, nil
}

// Apply sets the supervision parameters on s.
func (c *Config) Apply(s *launchman.Supervisor) {
	s.SetShell(c.Shell)
	s.SetGracePeriod(c.GracePeriod)
	s.SetSettleDelay(c.SettleDelay)
	s.SetProbeTimeout(c.ProbeTimeout)
	s.SetLookupTimeout(c.LookupTimeout)
}
