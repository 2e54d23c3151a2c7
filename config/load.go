package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// fileConfig mirrors the global sections; absent sections keep their
// defaults.
type fileConfig struct {
	Chain  *ChainConfig  `yaml:"chain"`
	Wobble *WobbleConfig `yaml:"wobble"`
	Carry  *CarryConfig  `yaml:"carry"`
	Break  *BreakConfig  `yaml:"break"`
	Magnet *MagnetConfig `yaml:"magnet"`
	Sim    *SimConfig    `yaml:"sim"`
}

// LoadFile overlays tuning values from a YAML file onto the package defaults.
func LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}
	return Load(data)
}

// Load overlays tuning values from YAML bytes onto the package defaults.
// Sections and fields absent from the document keep their current values.
func Load(data []byte) error {
	fc := fileConfig{
		Chain:  &Chain,
		Wobble: &Wobble,
		Carry:  &Carry,
		Break:  &Break,
		Magnet: &Magnet,
		Sim:    &Sim,
	}
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return fmt.Errorf("parse config: %w", err)
	}
	return nil
}
