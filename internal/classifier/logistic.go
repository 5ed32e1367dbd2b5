package classifier

import (
	"math"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// LogisticRegression is fitted with full-batch gradient descent on the L2-regularised log loss,
// starting from zero weights so that fitting is deterministic.
type LogisticRegression struct {
	LearningRate float64
	Epochs       int
	L2           float64

	Weights []float64
	Bias    float64
}

// NewLogisticRegression returns an unfitted model.
func NewLogisticRegression(learningRate float64, epochs int, l2 float64) *LogisticRegression {
	return &LogisticRegression{LearningRate: learningRate, Epochs: epochs, L2: l2}
}

func (m *LogisticRegression) Name() string { return "logistic_regression" }

func (m *LogisticRegression) Fit(x mat.Matrix, y []float64) error {
	err := checkTrainingData(x, y)
	if err != nil {
		return err
	}
	if m.LearningRate <= 0 || m.Epochs < 1 {
		return errors.Errorf("invalid hyper-parameters: learning rate %v, epochs %d", m.LearningRate, m.Epochs)
	}

	r, c := x.Dims()
	n := float64(r)
	w := mat.NewVecDense(c, nil)
	residual := mat.NewVecDense(r, nil)
	grad := mat.NewVecDense(c, nil)
	var b float64

	for ep := 0; ep < m.Epochs; ep++ {
		residual.MulVec(x, w)
		for i := 0; i < r; i++ {
			residual.SetVec(i, sigmoid(residual.AtVec(i)+b)-y[i])
		}
		grad.MulVec(x.T(), residual)
		if m.L2 > 0 {
			grad.AddScaledVec(grad, m.L2, w)
		}
		w.AddScaledVec(w, -m.LearningRate/n, grad)
		b -= m.LearningRate * mat.Sum(residual) / n
	}

	m.Weights = append([]float64(nil), w.RawVector().Data...)
	m.Bias = b

	return nil
}

// PredictProba returns the probability of label 1 for every row.
func (m *LogisticRegression) PredictProba(x mat.Matrix) ([]float64, error) {
	if len(m.Weights) == 0 {
		return nil, ErrNotFitted
	}
	r, c := x.Dims()
	if c != len(m.Weights) {
		return nil, errors.Wrapf(ErrShape, "got %d features, fitted on %d", c, len(m.Weights))
	}

	row := make([]float64, c)
	out := make([]float64, r)
	for i := range out {
		mat.Row(row, i, x)
		out[i] = sigmoid(floats.Dot(row, m.Weights) + m.Bias)
	}

	return out, nil
}

func (m *LogisticRegression) Predict(x mat.Matrix) ([]float64, error) {
	proba, err := m.PredictProba(x)
	if err != nil {
		return nil, err
	}
	for i, p := range proba {
		if p >= 0.5 {
			proba[i] = 1
		} else {
			proba[i] = 0
		}
	}

	return proba, nil
}

func sigmoid(z float64) float64 {
	if z >= 0 {
		return 1 / (1 + math.Exp(-z))
	}
	e := math.Exp(z)

	return e / (1 + e)
}
