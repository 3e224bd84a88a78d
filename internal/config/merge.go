package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Top-level YAML config key names used for shallow merge.
const (
	keySource  = "source"
	keyLogging = "logging"
	keyUI      = "ui"
	keyServer  = "server"
)

// ShallowMergeYAML loads a YAML file and merges its top-level keys onto
// target. A section present in the overlay replaces the whole section in
// target; fields the overlay leaves out take their default values, not the
// target's. Sections absent from the overlay and unknown keys are left alone.
func ShallowMergeYAML(target *Config, overlayPath string) error {
	if target == nil {
		return errors.New("nil target *Config in ShallowMergeYAML")
	}

	data, err := os.ReadFile(overlayPath)
	if err != nil {
		return fmt.Errorf("reading overlay file %s: %w", overlayPath, err)
	}

	var overlay map[string]yaml.Node
	if err = yaml.Unmarshal(data, &overlay); err != nil {
		return fmt.Errorf("parsing overlay YAML from %s: %w", overlayPath, err)
	}

	for key, node := range overlay {
		if err = mergeSection(target, key, &node); err != nil {
			return fmt.Errorf("applying overlay section %q: %w", key, err)
		}
	}
	return nil
}

// mergeSection decodes node into a fresh default section and stores it.
func mergeSection(target *Config, key string, node *yaml.Node) error {
	defaults := New()
	switch key {
	case keySource:
		v := defaults.Source
		if err := node.Decode(&v); err != nil {
			return err
		}
		target.Source = v
	case keyLogging:
		v := defaults.Logging
		if err := node.Decode(&v); err != nil {
			return err
		}
		target.Logging = v
	case keyUI:
		v := defaults.UI
		if err := node.Decode(&v); err != nil {
			return err
		}
		target.UI = v
	case keyServer:
		v := defaults.Server
		if err := node.Decode(&v); err != nil {
			return err
		}
		target.Server = v
	}
	return nil
}
