// Package estimator bundles the fitted preprocessing with the fitted classifier so inference
// always applies the same feature handling as training.
package estimator

import (
	"context"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"

	"github.com/askiada/netsec-pipeline/internal/classifier"
	"github.com/askiada/netsec-pipeline/internal/frame"
	"github.com/askiada/netsec-pipeline/internal/impute"
	"github.com/askiada/netsec-pipeline/internal/store"
)

// PredictionColumn is the column appended to prediction outputs.
const PredictionColumn = "predicted_column"

var ErrNotReady = errors.New("model is not fitted")

// Preprocessor selects the training feature columns, in training order, and imputes their missing
// values.
type Preprocessor struct {
	FeatureColumns []string
	Imputer        *impute.KNNImputer
}

// NewPreprocessor fits the imputer on the feature columns of train.
func NewPreprocessor(train *frame.Table, featureColumns []string, imputer *impute.KNNImputer) (*Preprocessor, error) {
	p := &Preprocessor{FeatureColumns: append([]string(nil), featureColumns...), Imputer: imputer}
	x, err := p.features(train)
	if err != nil {
		return nil, err
	}
	err = imputer.Fit(x)
	if err != nil {
		return nil, errors.Wrap(err, "unable to fit imputer")
	}

	return p, nil
}

// Transform returns the imputed feature matrix of t. Columns of t which are not features, such as
// the target, are ignored.
func (p *Preprocessor) Transform(t *frame.Table) (*mat.Dense, error) {
	if p == nil || p.Imputer == nil || !p.Imputer.IsFitted() {
		return nil, ErrNotReady
	}
	x, err := p.features(t)
	if err != nil {
		return nil, err
	}

	out, err := p.Imputer.Transform(x)
	if err != nil {
		return nil, errors.Wrap(err, "unable to impute features")
	}

	return out, nil
}

func (p *Preprocessor) features(t *frame.Table) (*mat.Dense, error) {
	sel, err := t.Select(p.FeatureColumns...)
	if err != nil {
		return nil, errors.Wrap(err, "missing feature column")
	}
	x, err := sel.Matrix()
	if err != nil {
		return nil, errors.Wrap(err, "unable to build feature matrix")
	}

	return x, nil
}

func (p *Preprocessor) Save(path string) error {
	return errors.Wrap(store.SaveObject(path, p), "unable to save preprocessor")
}

// LoadPreprocessor reads a preprocessor written by Save.
func LoadPreprocessor(path string) (*Preprocessor, error) {
	var p Preprocessor
	err := store.LoadObject(path, &p)
	if err != nil {
		return nil, errors.Wrap(err, "unable to load preprocessor")
	}

	return &p, nil
}

// NetworkModel is the persisted inference object.
type NetworkModel struct {
	Preprocessor *Preprocessor
	Model        classifier.Classifier
}

func New(preprocessor *Preprocessor, model classifier.Classifier) (*NetworkModel, error) {
	if preprocessor == nil || model == nil {
		return nil, errors.New("preprocessor and model must be set")
	}

	return &NetworkModel{Preprocessor: preprocessor, Model: model}, nil
}

// Predict returns one label per row of t.
func (m *NetworkModel) Predict(ctx context.Context, t *frame.Table) ([]float64, error) {
	err := ctx.Err()
	if err != nil {
		return nil, err
	}
	if m.Model == nil {
		return nil, ErrNotReady
	}

	x, err := m.Preprocessor.Transform(t)
	if err != nil {
		return nil, err
	}

	y, err := m.Model.Predict(x)
	if err != nil {
		return nil, errors.Wrapf(err, "%s prediction failed", m.Model.Name())
	}

	return y, nil
}

// PredictTable returns t with the predictions appended as PredictionColumn.
func (m *NetworkModel) PredictTable(ctx context.Context, t *frame.Table) (*frame.Table, error) {
	y, err := m.Predict(ctx, t)
	if err != nil {
		return nil, err
	}

	return t.WithColumn(PredictionColumn, y)
}

func (m *NetworkModel) Save(path string) error {
	return errors.Wrap(store.SaveObject(path, m), "unable to save model")
}

// LoadNetworkModel reads a model saved with Save.
func LoadNetworkModel(path string) (*NetworkModel, error) {
	var m NetworkModel
	err := store.LoadObject(path, &m)
	if err != nil {
		return nil, errors.Wrap(err, "unable to load model")
	}
	if m.Preprocessor == nil || m.Model == nil {
		return nil, errors.Wrapf(ErrNotReady, "incomplete model in %s", path)
	}

	return &m, nil
}
