// Package classifier holds the binary classifiers the trainer chooses from and their scoring.
//
// Labels are 0 (legitimate) or 1 (phishing).
package classifier

import (
	"encoding/gob"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

var (
	ErrNotFitted = errors.New("classifier is not fitted")
	ErrLabel     = errors.New("labels must be 0 or 1")
	ErrShape     = errors.New("inconsistent data shape")
)

// Classifier is a binary classifier. Implementations are gob-registered so that a fitted value
// can be persisted behind this interface.
type Classifier interface {
	Name() string
	Fit(x mat.Matrix, y []float64) error
	Predict(x mat.Matrix) ([]float64, error)
}

func init() {
	gob.Register(&LogisticRegression{})
	gob.Register(&KNN{})
}

func checkTrainingData(x mat.Matrix, y []float64) error {
	r, c := x.Dims()
	if r == 0 || c == 0 {
		return errors.Wrap(ErrShape, "no training data")
	}
	if r != len(y) {
		return errors.Wrapf(ErrShape, "%d rows but %d labels", r, len(y))
	}
	for i, v := range y {
		if v != 0 && v != 1 {
			return errors.Wrapf(ErrLabel, "label %v at row %d", v, i)
		}
	}

	return nil
}
