package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Environment variables that override the config file.
const (
	EnvMake         = "MAKEVARGRAPH_MAKE"
	EnvInternalVars = "MAKEVARGRAPH_INTERNAL_VARS"
	EnvFormat       = "MAKEVARGRAPH_FORMAT"
	EnvView         = "MAKEVARGRAPH_VIEW"
	EnvDot          = "MAKEVARGRAPH_DOT"
)

// ProjectConfig holds settings loaded from makevargraph.yml.
type ProjectConfig struct {
	GraphName       string `yaml:"graphName,omitempty"`
	Format          string `yaml:"format,omitempty"`
	View            *bool  `yaml:"view,omitempty"`
	IncludeInternal bool   `yaml:"includeInternal,omitempty"`
	IncludeIsolated bool   `yaml:"includeIsolated,omitempty"`
	InternalVars    string `yaml:"internalVars,omitempty"`
	Make            string `yaml:"make,omitempty"`
	Dot             string `yaml:"dot,omitempty"`
	Ratio           string `yaml:"ratio,omitempty"`
	Clusters        bool   `yaml:"clusters,omitempty"`
}

// Default returns the built-in settings.
func Default() *ProjectConfig {
	view := true
	return &ProjectConfig{
		GraphName: "graph",
		Format:    "pdf",
		View:      &view,
		Make:      "make",
		Dot:       "dot",
	}
}

// ShouldView reports whether rendered graphs are opened after rendering.
func (c *ProjectConfig) ShouldView() bool {
	return c.View == nil || *c.View
}

// Load reads makevargraph.yml or makevargraph.yaml from dir over the
// defaults, then applies a .env file in dir (if any) and environment
// overrides. A missing config file is not an error.
func Load(dir string) (*ProjectConfig, error) {
	cfg := Default()
	for _, name := range []string{"makevargraph.yml", "makevargraph.yaml"} {
		path := filepath.Join(dir, name)
		data, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
		break
	}

	// Variables already set in the process environment win over .env.
	_ = godotenv.Load(filepath.Join(dir, ".env"))

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *ProjectConfig) applyEnv() error {
	if v := strings.TrimSpace(os.Getenv(EnvMake)); v != "" {
		c.Make = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvInternalVars)); v != "" {
		c.InternalVars = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvDot)); v != "" {
		c.Dot = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvFormat)); v != "" {
		c.Format = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvView)); v != "" {
		view, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvView, err)
		}
		c.View = &view
	}
	return nil
}
