// Package presets loads named story configurations from YAML files so a
// player can start a story without retyping characters and genres.
package presets

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/Ahmed-Ayman11/Rawi-Story-Generator-Model/internal/story"
)

// Preset is a reusable story configuration.
type Preset struct {
	Name          string            `yaml:"name"`
	Length        story.Length      `yaml:"length"`
	PrimaryType   story.Genre       `yaml:"primary_type"`
	SecondaryType story.Genre       `yaml:"secondary_type"`
	Characters    []story.Character `yaml:"characters"`
}

// Config converts the preset into a story configuration.
func (p *Preset) Config() story.Config {
	return story.Config{
		Length:        p.Length,
		PrimaryType:   p.PrimaryType,
		SecondaryType: p.SecondaryType,
		Characters:    p.Characters,
	}
}

// Load reads a preset from a YAML file.
func Load(path string) (*Preset, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading preset %s: %w", path, err)
	}

	var p Preset
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("parsing preset %s: %w", path, err)
	}
	if p.Name == "" {
		p.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}

	return &p, nil
}

// LoadDir reads every .yaml preset in a directory, keyed by name.
// A missing directory is not an error; there are simply no presets.
func LoadDir(dir string) (map[string]*Preset, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]*Preset{}, nil
		}
		return nil, fmt.Errorf("reading presets dir %s: %w", dir, err)
	}

	out := make(map[string]*Preset)
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".yaml") {
			continue
		}
		p, err := Load(filepath.Join(dir, e.Name()))
		if err != nil {
			return nil, err
		}
		out[p.Name] = p
	}
	return out, nil
}
