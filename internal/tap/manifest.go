package tap

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/rig-run/rig/pkg/types"
	"gopkg.in/yaml.v3"
)

const manifestFile = "tap.yaml"

// ReadManifest reads the optional tap.yaml at the root of a tap repository.
// A missing manifest returns (nil, nil).
func ReadManifest(tapRootPath string) (*types.TapManifest, error) {
	data, err := os.ReadFile(filepath.Join(tapRootPath, manifestFile))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read %s: %w", manifestFile, err)
	}

	var manifest types.TapManifest
	if err := yaml.Unmarshal(data, &manifest); err != nil {
		return nil, fmt.Errorf("parse %s: %w", manifestFile, err)
	}
	return &manifest, nil
}
