// Package config loads lifeboat settings from a TOML file.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/papercomputeco/lifeboat/pkg/dispatch"
	"github.com/papercomputeco/lifeboat/pkg/reveal"
)

// Config is the full lifeboat configuration.
type Config struct {
	// Address the dashboard listens on (e.g., ":8080")
	ListenAddr string `toml:"listen"`

	// DatasetPath is the passenger CSV loaded at startup.
	DatasetPath string `toml:"dataset"`

	Debug bool `toml:"debug"`

	// SessionTTL is how long an idle dashboard session is kept.
	SessionTTL time.Duration `toml:"session_ttl"`

	Answer AnswerConfig `toml:"answer"`
	Reveal RevealConfig `toml:"reveal"`
}

// AnswerConfig configures the remote answer service.
type AnswerConfig struct {
	URL      string        `toml:"url"`
	Timeout  time.Duration `toml:"timeout"`
	Fallback string        `toml:"fallback"`
}

// RevealConfig configures the typing animation.
type RevealConfig struct {
	Placeholder  string        `toml:"placeholder"`
	InitialDelay time.Duration `toml:"initial_delay"`
	StepDelay    time.Duration `toml:"step_delay"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		ListenAddr:  ":8080",
		DatasetPath: "Titanic-Dataset.csv",
		SessionTTL:  30 * time.Minute,
		Answer: AnswerConfig{
			URL:      "http://localhost:8000/ask",
			Timeout:  dispatch.DefaultTimeout,
			Fallback: dispatch.DefaultFallback,
		},
		Reveal: RevealConfig{
			Placeholder:  reveal.DefaultPlaceholder,
			InitialDelay: reveal.DefaultInitialDelay,
			StepDelay:    reveal.DefaultStepDelay,
		},
	}
}

// Load reads path over the defaults. An empty path returns the defaults.
// Unknown keys are rejected so that typos do not silently fall back.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config file: %w", err)
	}

	md, err := toml.Decode(string(data), &cfg)
	if err != nil {
		return Config{}, fmt.Errorf("parse config file %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return Config{}, fmt.Errorf("unknown config keys in %s: %s", path, strings.Join(keys, ", "))
	}

	return cfg, nil
}

// Validate reports the first setting that cannot work.
func (c Config) Validate() error {
	switch {
	case strings.TrimSpace(c.DatasetPath) == "":
		return errors.New("config: dataset path must not be empty")
	case strings.TrimSpace(c.Answer.URL) == "":
		return errors.New("config: answer.url must not be empty")
	case c.Answer.Timeout <= 0:
		return errors.New("config: answer.timeout must be positive")
	case c.Reveal.InitialDelay < 0 || c.Reveal.StepDelay < 0:
		return errors.New("config: reveal delays must not be negative")
	case c.SessionTTL < 0:
		return errors.New("config: session_ttl must not be negative")
	}
	return nil
}

// Dispatch returns the dispatcher settings.
func (c Config) Dispatch() dispatch.Config {
	return dispatch.Config{
		URL:      c.Answer.URL,
		Timeout:  c.Answer.Timeout,
		Fallback: c.Answer.Fallback,
	}
}

// Pacer returns the reveal pacing.
func (c Config) Pacer() reveal.Pacer {
	return reveal.Pacer{Initial: c.Reveal.InitialDelay, Step: c.Reveal.StepDelay}
}
