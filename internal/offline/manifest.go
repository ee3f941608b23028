package offline

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Manifest is the list of assets that must be cached at install time.
// Changing the list requires bumping the cache version, or stale entries
// linger until the next activation prunes the old cache.
type Manifest struct {
	Assets []string `yaml:"assets"`
}

func LoadManifest(path string) (*Manifest, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read cache manifest: %w", err)
	}

	var manifest Manifest
	if err := yaml.Unmarshal(raw, &manifest); err != nil {
		return nil, fmt.Errorf("parse cache manifest: %w", err)
	}
	if len(manifest.Assets) == 0 {
		return nil, fmt.Errorf("cache manifest %s lists no assets", path)
	}
	return &manifest, nil
}
