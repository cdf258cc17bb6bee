package classifier

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
)

// CentroidModel is a fitted nearest-centroid classifier.
type CentroidModel struct {
	name      string
	features  []string
	codes     []int
	centroids [][]float64
}

// Name returns the model name declared in the artifact.
func (m *CentroidModel) Name() string { return m.name }

// Features returns the expected feature order.
func (m *CentroidModel) Features() []string {
	return append([]string(nil), m.features...)
}

// Predict returns the code of the centroid closest to features in euclidean
// distance. Ties go to the class listed first in the artifact.
func (m *CentroidModel) Predict(features []float64) (int, error) {
	if len(features) != len(m.features) {
		return 0, fmt.Errorf("expected %d features, got %d", len(m.features), len(features))
	}
	for i, v := range features {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return 0, fmt.Errorf("feature %s is not finite", m.features[i])
		}
	}

	best, bestDist := 0, math.Inf(1)
	for i, c := range m.centroids {
		if d := floats.Distance(features, c, 2); d < bestDist {
			best, bestDist = i, d
		}
	}
	return m.codes[best], nil
}
