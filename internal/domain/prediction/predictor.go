package prediction

import (
	"errors"
	"fmt"
	"math"
	"slices"
	"strconv"
)

// Classifier is the trained model capability. Implementations must be safe for
// concurrent use.
type Classifier interface {
	Predict(features []float64) (int, error)
	PredictProba(features []float64) ([]float64, error)
	ExpectedFeatureNames() []string
}

// ErrSchemaMismatch is returned when a vector does not follow the classifier schema.
var ErrSchemaMismatch = errors.New("feature vector does not match classifier schema")

// Predictor converts classifier output into a PredictionResult.
type Predictor struct {
	classifier Classifier
	schema     []string
}

// NewPredictor wraps classifier.
func NewPredictor(classifier Classifier) *Predictor {
	return &Predictor{
		classifier: classifier,
		schema:     append([]string(nil), classifier.ExpectedFeatureNames()...),
	}
}

// Schema returns the classifier's expected feature names.
func (p *Predictor) Schema() []string {
	return append([]string(nil), p.schema...)
}

// Predict runs the classifier once for the label and once for probabilities.
func (p *Predictor) Predict(features FeatureVector) (Result, error) {
	if !slices.Equal(features.Names(), p.schema) {
		return Result{}, ErrSchemaMismatch
	}
	values := features.Values()

	label, err := p.classifier.Predict(values)
	if err != nil {
		return Result{}, fmt.Errorf("classifier predict: %w", err)
	}
	if label != int(NotCancelled) && label != int(Cancelled) {
		return Result{}, fmt.Errorf("classifier returned unknown label %d", label)
	}

	proba, err := p.classifier.PredictProba(values)
	if err != nil {
		return Result{}, fmt.Errorf("classifier predict_proba: %w", err)
	}
	if len(proba) < 2 {
		return Result{}, fmt.Errorf("classifier returned %d class probabilities, want 2", len(proba))
	}
	cancelled := proba[int(Cancelled)]
	if math.IsNaN(cancelled) || cancelled < 0 || cancelled > 1 {
		return Result{}, fmt.Errorf("classifier returned invalid probability %v", cancelled)
	}

	return Result{Label: Label(label), Confidence: RoundConfidence(cancelled)}, nil
}

// RoundConfidence rounds p to two decimals. Rounding works on the exact decimal
// expansion of p with ties going to even, so 0.455 gives 0.46 and 0.125 gives 0.12.
func RoundConfidence(p float64) float64 {
	rounded, err := strconv.ParseFloat(strconv.FormatFloat(p, 'f', 2, 64), 64)
	if err != nil {
		return p
	}
	return rounded
}
