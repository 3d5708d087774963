package main

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// PassCriterion selects which score variants must be perfect for a case to pass.
type PassCriterion string

const (
	PassBoth           PassCriterion = "both"
	PassWithoutNatives PassCriterion = "without-natives"
)

// Extensions pair files of one case by their shared base name.
type Extensions struct {
	Source    string `yaml:"source"`
	Candidate string `yaml:"candidate"`
	Truth     string `yaml:"truth"`
}

// Neo4jConfig holds the optional export target.
type Neo4jConfig struct {
	URI      string `yaml:"uri"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Clean    bool   `yaml:"clean"`
}

// Enabled reports whether results should be exported.
func (c Neo4jConfig) Enabled() bool { return c.Password != "" }

// Config describes a regression suite.
type Config struct {
	Directories      []string      `yaml:"directories"`
	Extensions       Extensions    `yaml:"extensions"`
	Generator        []string      `yaml:"generator"`
	GeneratorTimeout time.Duration `yaml:"generator_timeout"`
	PassOn           PassCriterion `yaml:"pass_on"`
	Neo4j            Neo4jConfig   `yaml:"neo4j"`
}

// DefaultConfig returns the layout of the stock JavaScript regression suite.
func DefaultConfig() *Config {
	return &Config{
		Directories: []string{
			"basics",
			"unexpected",
			"classes",
			"import-export/define",
			"import-export/es6",
			"import-export/module.exports",
		},
		Extensions: Extensions{
			Source:    ".js",
			Candidate: ".out",
			Truth:     ".truth",
		},
		GeneratorTimeout: 30 * time.Second,
		PassOn:           PassBoth,
		Neo4j: Neo4jConfig{
			URI:  "bolt://localhost:7687",
			User: "neo4j",
		},
	}
}

// LoadConfig reads the suite file at path on top of the defaults, then
// applies environment overrides. An empty path yields the defaults.
func LoadConfig(path string) (*Config, error) {
	_ = godotenv.Load()

	cfg := DefaultConfig()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	if v := strings.TrimSpace(os.Getenv("CGEVAL_NEO4J_URI")); v != "" {
		cfg.Neo4j.URI = v
	}
	if v := strings.TrimSpace(os.Getenv("CGEVAL_NEO4J_USER")); v != "" {
		cfg.Neo4j.User = v
	}
	if v := os.Getenv("CGEVAL_NEO4J_PASS"); v != "" {
		cfg.Neo4j.Password = v
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the configuration for values the suite cannot run with.
func (c *Config) Validate() error {
	var errs []error
	if len(c.Directories) == 0 {
		errs = append(errs, errors.New("no suite directories configured"))
	}
	for name, ext := range map[string]string{
		"source":    c.Extensions.Source,
		"candidate": c.Extensions.Candidate,
		"truth":     c.Extensions.Truth,
	} {
		if !strings.HasPrefix(ext, ".") || len(ext) < 2 {
			errs = append(errs, fmt.Errorf("%s extension %q must start with a dot", name, ext))
		}
	}
	if c.Extensions.Candidate == c.Extensions.Truth {
		errs = append(errs, errors.New("candidate and truth extensions must differ"))
	}
	switch c.PassOn {
	case PassBoth, PassWithoutNatives:
	default:
		errs = append(errs, fmt.Errorf("unknown pass_on %q (want %q or %q)", c.PassOn, PassBoth, PassWithoutNatives))
	}
	if len(c.Generator) > 0 && c.GeneratorTimeout <= 0 {
		errs = append(errs, errors.New("generator_timeout must be positive"))
	}
	return errors.Join(errs...)
}
