// Package config loads the optional ".jcc.yaml" project configuration:
// the #include search path, the lib440 runtime class name, and the
// default output directory. Absence of the file is not an error; built-in
// defaults apply.
package config

import (
	"os"

	"github.com/goccy/go-yaml"
)

// Config is the resolved compiler configuration for one invocation.
type Config struct {
	// IncludePath lists additional directories searched for #include
	// targets after the current working directory.
	IncludePath []string `yaml:"includePath"`

	// RuntimeClass names the runtime class the emitter calls for the
	// preloaded I/O functions and java2c. Defaults to "lib440".
	RuntimeClass string `yaml:"runtimeClass"`

	// OutputDir, if set, overrides the directory each stage's output file
	// is written to; empty means alongside the input file.
	OutputDir string `yaml:"outputDir"`
}

// Default returns the built-in configuration used when no config file is
// present.
func Default() Config {
	return Config{RuntimeClass: "lib440"}
}

// Load reads path (typically ".jcc.yaml" in the working directory) and
// merges it over Default(). A missing file is not an error and yields the
// defaults unchanged.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, err
	}
	if cfg.RuntimeClass == "" {
		cfg.RuntimeClass = "lib440"
	}
	return cfg, nil
}
