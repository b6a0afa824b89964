// Package cliconfig resolves the lifeboat configuration for a command from
// its config file and flag overrides.
package cliconfig

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/spf13/cobra"

	"github.com/papercomputeco/lifeboat/pkg/config"
)

// DefaultPath is read when it exists and no --config flag is given.
const DefaultPath = "lifeboat.toml"

// Flags are the settings every command accepts.
type Flags struct {
	ConfigPath string
	Dataset    string
	AnswerURL  string
	Debug      bool
}

// Bind registers the shared flags on cmd.
func (f *Flags) Bind(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.ConfigPath, "config", "c", "", "Path to a TOML config file (default: ./"+DefaultPath+" if present)")
	cmd.Flags().StringVarP(&f.Dataset, "dataset", "d", "", "Path to the passenger CSV")
	cmd.Flags().StringVar(&f.AnswerURL, "answer-url", "", "URL of the answer service")
	cmd.Flags().BoolVar(&f.Debug, "debug", false, "Enable debug logging")
}

// Load reads the config file and applies flag overrides on top of it.
func (f *Flags) Load() (config.Config, error) {
	path, err := resolvePath(f.ConfigPath)
	if err != nil {
		return config.Config{}, err
	}

	cfg, err := config.Load(path)
	if err != nil {
		return config.Config{}, err
	}

	if f.Dataset != "" {
		cfg.DatasetPath = f.Dataset
	}
	if f.AnswerURL != "" {
		cfg.Answer.URL = f.AnswerURL
	}
	if f.Debug {
		cfg.Debug = true
	}

	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}

func resolvePath(path string) (string, error) {
	if path != "" {
		return path, nil
	}

	_, err := os.Stat(DefaultPath)
	switch {
	case err == nil:
		return DefaultPath, nil
	case errors.Is(err, fs.ErrNotExist):
		return "", nil
	default:
		return "", fmt.Errorf("could not check for %s: %w", DefaultPath, err)
	}
}
