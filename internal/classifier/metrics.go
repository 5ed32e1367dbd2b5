package classifier

import "github.com/pkg/errors"

// Scores are the binary classification scores for label 1. A ratio with a zero denominator
// scores 0.
type Scores struct {
	F1        float64
	Precision float64
	Recall    float64
}

// Score compares predicted labels against true labels.
func Score(yTrue, yPred []float64) (Scores, error) {
	if len(yTrue) != len(yPred) {
		return Scores{}, errors.Wrapf(ErrShape, "%d true labels but %d predictions", len(yTrue), len(yPred))
	}
	if len(yTrue) == 0 {
		return Scores{}, errors.Wrap(ErrShape, "no labels to score")
	}

	var tp, fp, fn float64
	for i := range yTrue {
		switch {
		case yPred[i] == 1 && yTrue[i] == 1:
			tp++
		case yPred[i] == 1:
			fp++
		case yTrue[i] == 1:
			fn++
		}
	}

	s := Scores{
		Precision: ratio(tp, tp+fp),
		Recall:    ratio(tp, tp+fn),
	}
	s.F1 = ratio(2*tp, 2*tp+fp+fn)

	return s, nil
}

func ratio(num, den float64) float64 {
	if den == 0 {
		return 0
	}

	return num / den
}
