package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jonathan/resume-builder/internal/config"
	"github.com/jonathan/resume-builder/internal/engine"
	"github.com/jonathan/resume-builder/internal/rendering"
)

// renderFlags are shared by the commands that estimate or render a record.
type renderFlags struct {
	configPath   string
	template     string
	engine       string
	chromePath   string
	profilesPath string
	timeout      int
	verbose      bool
}

func (f *renderFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.configPath, "config", "", "Path to config.json file (values can be overridden by other flags)")
	cmd.Flags().StringVarP(&f.template, "template", "t", "", fmt.Sprintf("Template id (%s)", strings.Join(rendering.Templates(), ", ")))
	cmd.Flags().StringVar(&f.engine, "engine", "", fmt.Sprintf("PDF engine (%s)", strings.Join(engine.Kinds(), ", ")))
	cmd.Flags().StringVar(&f.chromePath, "chrome-path", "", "Chrome/Chromium executable for the chrome engine")
	cmd.Flags().StringVar(&f.profilesPath, "profiles", "", "JSON file with extra or overriding layout profiles")
	cmd.Flags().IntVar(&f.timeout, "timeout", 0, "Engine timeout in seconds")
	cmd.Flags().BoolVarP(&f.verbose, "verbose", "v", false, "Print detailed debug information")
}

// resolve loads the config file, applies flags that were explicitly set and fills defaults.
func (f *renderFlags) resolve(cmd *cobra.Command, out io.Writer) (config.Config, error) {
	var cfg config.Config
	if f.configPath != "" {
		loaded, err := config.LoadConfig(f.configPath)
		if err != nil {
			return cfg, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = *loaded
		if f.verbose {
			_, _ = fmt.Fprintf(out, "Loaded config from: %s\n", f.configPath)
		}
	}

	flags := cmd.Flags()
	if flags.Changed("template") {
		cfg.Template = f.template
	}
	if flags.Changed("engine") {
		cfg.Engine = f.engine
	}
	if flags.Changed("chrome-path") {
		cfg.ChromePath = f.chromePath
	}
	if flags.Changed("profiles") {
		cfg.ProfilesPath = f.profilesPath
	}
	if flags.Changed("timeout") {
		cfg.TimeoutSeconds = f.timeout
	}
	if flags.Changed("verbose") {
		cfg.Verbose = f.verbose
	}

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg.MergeWithDefaults(config.Config{}), nil
}
