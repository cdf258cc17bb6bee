package classifier

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed iris_centroids.yaml
var defaultArtifact []byte

type artifact struct {
	Name     string          `yaml:"name"`
	Features []string        `yaml:"features"`
	Classes  []artifactClass `yaml:"classes"`
}

type artifactClass struct {
	Code     int       `yaml:"code"`
	Centroid []float64 `yaml:"centroid"`
}

// Default returns the embedded model fitted on the iris dataset.
func Default() (*CentroidModel, error) {
	m, err := Parse(defaultArtifact)
	if err != nil {
		return nil, fmt.Errorf("embedded model: %w", err)
	}
	return m, nil
}

// Load reads a model artifact from path.
func Load(path string) (*CentroidModel, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read model artifact: %w", err)
	}
	m, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("model artifact %s: %w", path, err)
	}
	return m, nil
}

// Parse decodes and validates a YAML model artifact.
func Parse(data []byte) (*CentroidModel, error) {
	var a artifact
	if err := yaml.Unmarshal(data, &a); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	if len(a.Features) == 0 {
		return nil, fmt.Errorf("no features declared")
	}
	if len(a.Classes) == 0 {
		return nil, fmt.Errorf("no classes declared")
	}

	m := &CentroidModel{
		name:     a.Name,
		features: a.Features,
	}
	seen := make(map[int]bool, len(a.Classes))
	for _, c := range a.Classes {
		if seen[c.Code] {
			return nil, fmt.Errorf("duplicate class code %d", c.Code)
		}
		seen[c.Code] = true
		if len(c.Centroid) != len(a.Features) {
			return nil, fmt.Errorf("class %d: centroid has %d values, want %d", c.Code, len(c.Centroid), len(a.Features))
		}
		m.codes = append(m.codes, c.Code)
		m.centroids = append(m.centroids, c.Centroid)
	}
	return m, nil
}
