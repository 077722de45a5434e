package config

import (
	"os"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"arch4u/internal/core/errors"
	"arch4u/internal/engine/rules"
)

type Config struct {
	ScanPaths []string    `toml:"scan_paths"`
	Exclude   Exclude     `toml:"exclude"`
	Rules     []Rule      `toml:"rule"`
	Hierarchy []Hierarchy `toml:"hierarchy"`
	Output    Output      `toml:"output"`
	History   History     `toml:"history"`
	Watch     Watch       `toml:"watch"`
	Metrics   Metrics     `toml:"metrics"`
}

type Exclude struct {
	Dirs  []string `toml:"dirs"`
	Files []string `toml:"files"`
}

// Rule mirrors the rule options: the target class, the prohibited methods
// and whether subtypes of the class also count.
type Rule struct {
	Name          string   `toml:"name"`
	Class         string   `toml:"class"`
	Methods       []string `toml:"methods"`
	CheckSubtypes bool     `toml:"check_subtypes"`
}

// Hierarchy declares supertype edges for types whose sources are not part
// of the scan (external jars). They feed the in-memory type graph.
type Hierarchy struct {
	Type    string   `toml:"type"`
	Extends []string `toml:"extends"`
}

type Output struct {
	SARIF string `toml:"sarif"`
	TSV   string `toml:"tsv"`
}

type History struct {
	Path string `toml:"path"`
}

type Watch struct {
	Debounce time.Duration `toml:"debounce"`
}

type Metrics struct {
	Listen string `toml:"listen"`
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if _, err := toml.Decode(string(data), &cfg); err != nil {
		return nil, errors.Wrap(err, errors.CodeValidationError, "decode config")
	}

	cfg.applyDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if len(c.ScanPaths) == 0 {
		c.ScanPaths = []string{"."}
	}
	if c.Watch.Debounce == 0 {
		c.Watch.Debounce = 500 * time.Millisecond
	}
	if len(c.Exclude.Dirs) == 0 {
		c.Exclude.Dirs = []string{".git", "target", "build"}
	}
	for i := range c.Rules {
		if c.Rules[i].Name == "" {
			c.Rules[i].Name = "avoid-prohibited-method-invocation"
		}
	}
}

// validate rejects only structural problems. A rule with an empty class or
// empty method list stays in the set: it never fires, which is policy, not
// a failure.
func (c *Config) validate() error {
	for _, h := range c.Hierarchy {
		if strings.TrimSpace(h.Type) == "" {
			return errors.New(errors.CodeValidationError, "hierarchy entry missing type")
		}
		for _, super := range h.Extends {
			if strings.TrimSpace(super) == "" {
				return errors.New(errors.CodeValidationError, "hierarchy entry with empty supertype")
			}
		}
	}
	return nil
}

// RuleConfigs converts the declarative rules into engine configurations.
func (c *Config) RuleConfigs() []rules.RuleConfig {
	out := make([]rules.RuleConfig, 0, len(c.Rules))
	for _, r := range c.Rules {
		out = append(out, rules.RuleConfig{
			Name:          r.Name,
			TargetType:    strings.TrimSpace(r.Class),
			Methods:       r.Methods,
			CheckSubtypes: r.CheckSubtypes,
		})
	}
	return out
}
