package cmd

import (
	"bytes"
	"fmt"
	"os"
	"sort"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/inference-sim/barbershop-sim/sim"
)

// PresetsFile represents the full defaults.yaml structure.
// All top-level sections must be listed to satisfy KnownFields(true) strict parsing.
type PresetsFile struct {
	Version string                      `yaml:"version"`
	Presets map[string]sim.ConfigUpdate `yaml:"presets"`
}

// decodeStrict parses YAML rejecting unknown fields, so typos fail loudly.
func decodeStrict(data []byte, out any) error {
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	return decoder.Decode(out)
}

// loadPresetsFile parses defaults.yaml.
func loadPresetsFile(path string) (PresetsFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return PresetsFile{}, fmt.Errorf("read defaults file: %w", err)
	}
	var f PresetsFile
	if err := decodeStrict(data, &f); err != nil {
		return PresetsFile{}, fmt.Errorf("parse defaults file %s: %w", path, err)
	}
	return f, nil
}

// PresetNames returns the preset names in the file, sorted.
func (f PresetsFile) PresetNames() []string {
	names := make([]string, 0, len(f.Presets))
	for name := range f.Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// lookupPreset returns the named preset from the defaults file at path.
func lookupPreset(path, name string) (sim.ConfigUpdate, error) {
	f, err := loadPresetsFile(path)
	if err != nil {
		return sim.ConfigUpdate{}, err
	}
	p, ok := f.Presets[name]
	if !ok {
		return sim.ConfigUpdate{}, fmt.Errorf("unknown preset %q (available: %v)", name, f.PresetNames())
	}
	return p, nil
}

// loadShopFile parses a YAML file holding a single, possibly partial, shop configuration.
func loadShopFile(path string) (sim.ConfigUpdate, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return sim.ConfigUpdate{}, fmt.Errorf("read config file: %w", err)
	}
	var u sim.ConfigUpdate
	if err := decodeStrict(data, &u); err != nil {
		return sim.ConfigUpdate{}, fmt.Errorf("parse config file %s: %w", path, err)
	}
	return u, nil
}

// resolveShopUpdate layers the shop configuration sources in precedence order:
// preset < config file < explicitly set flags. Engine defaults sit beneath all
// of them. The result still has to pass through the engine's validator.
func resolveShopUpdate(cmd *cobra.Command) (sim.ConfigUpdate, error) {
	var u sim.ConfigUpdate
	if presetName != "" {
		p, err := lookupPreset(defaultsPath, presetName)
		if err != nil {
			return sim.ConfigUpdate{}, err
		}
		u = u.Merge(p)
	}
	if configPath != "" {
		f, err := loadShopFile(configPath)
		if err != nil {
			return sim.ConfigUpdate{}, err
		}
		u = u.Merge(f)
	}
	return u.Merge(flagUpdate(cmd)), nil
}

// flagUpdate collects only the shop flags the user set. Flag defaults must not
// overwrite preset or file values.
func flagUpdate(cmd *cobra.Command) sim.ConfigUpdate {
	var u sim.ConfigUpdate
	if cmd.Flags().Changed("chairs") {
		u.NumWaitingChairs = sim.IntPtr(numChairs)
	}
	if cmd.Flags().Changed("arrival-ms") {
		u.CustomerArrivalRateMs = sim.IntPtr(arrivalRateMs)
	}
	if cmd.Flags().Changed("haircut-ms") {
		u.HaircutDurationMs = sim.IntPtr(haircutMs)
	}
	if cmd.Flags().Changed("barbers") {
		u.NumBarbers = sim.IntPtr(numBarbers)
	}
	if cmd.Flags().Changed("limit-s") {
		u.SimulationTimeLimitS = sim.IntPtr(timeLimitS)
	}
	return u
}
