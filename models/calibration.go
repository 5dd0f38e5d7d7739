package models

import (
	"fmt"
	"os"

	yaml "gopkg.in/yaml.v2"
)

// ApplyCalibrationFile overlays engine weights, thresholds and enable
// flags from a YAML calibration file onto the current config. Keys
// absent from the file keep their existing (environment or default)
// values. Validation still happens once, at engine construction.
func (cfg *Config) ApplyCalibrationFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open calibration file %s: %w", path, err)
	}
	defer f.Close()

	decoder := yaml.NewDecoder(f)
	if err := decoder.Decode(&cfg.Engine); err != nil {
		return fmt.Errorf("failed to decode calibration file %s: %w", path, err)
	}

	return nil
}
