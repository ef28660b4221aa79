package export

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/nivedita/drishti/internal/screen"
)

// SaveScreenInfo writes a candidate's screen-info record as JSON.
func SaveScreenInfo(path string, info screen.Info) error {
	data, err := json.MarshalIndent(info, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// LoadScreenInfo reads a screen-info record back and validates its geometry.
func LoadScreenInfo(path string) (screen.Info, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return screen.Info{}, err
	}

	var info screen.Info
	if err := json.Unmarshal(data, &info); err != nil {
		return screen.Info{}, fmt.Errorf("export: parse screen info: %w", err)
	}
	if err := info.Validate(); err != nil {
		return screen.Info{}, err
	}
	return info, nil
}
