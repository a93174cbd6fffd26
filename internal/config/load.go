package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// Load reads a YAML configuration file and overlays it on Default.
//
// Fields missing from the file keep their default values. A `bands` list in
// the file replaces the default band table entirely. Unknown keys are
// rejected so a typo cannot silently fall back to a default. The result is
// validated before it is returned.
//
// Example file:
//
//	min_area: 150
//	bands:
//	  - name: red
//	    ranges:
//	      - {lower: {h: 0, s: 120, v: 70}, upper: {h: 10, s: 255, v: 255}}
//	      - {lower: {h: 170, s: 120, v: 70}, upper: {h: 180, s: 255, v: 255}}
func Load(path string) (PipelineConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return PipelineConfig{}, fmt.Errorf("failed to read config: %w", err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return PipelineConfig{}, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes YAML configuration data the same way Load does.
func Parse(data []byte) (PipelineConfig, error) {
	cfg := Default()

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return PipelineConfig{}, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return PipelineConfig{}, err
	}
	return cfg, nil
}
