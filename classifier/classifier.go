// Package classifier holds the iris classifier used by the prediction
// front-end. A model is loaded once at startup and is read-only afterwards,
// so a single instance is shared by all request goroutines.
package classifier

import "strconv"

// Classifier maps a feature vector to a class code.
type Classifier interface {
	Predict(features []float64) (int, error)
}

var labels = map[int]string{
	0: "Setosa",
	1: "Versicolor",
	2: "Virginica",
}

// Label returns the flower name for a class code. Unknown codes fall back to
// their decimal form so a prediction never fails on labelling.
func Label(code int) string {
	if name, ok := labels[code]; ok {
		return name
	}
	return strconv.Itoa(code)
}
