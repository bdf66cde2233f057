package classifier

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"

	"github.com/yanqian/flightpulse/internal/domain/prediction"
)

const defaultThreshold = 0.5

// Artifact is the serialized form of a binary logistic regression model.
type Artifact struct {
	Version      string    `json:"version"`
	FeatureNames []string  `json:"feature_names"`
	Coefficients []float64 `json:"coefficients"`
	Intercept    float64   `json:"intercept"`
	Threshold    float64   `json:"threshold"`
}

// LogisticModel evaluates an Artifact. It is immutable and safe for concurrent use.
type LogisticModel struct {
	version      string
	names        []string
	coefficients []float64
	intercept    float64
	threshold    float64
}

// NewLogisticModel validates artifact and builds a model from it.
func NewLogisticModel(artifact Artifact) (*LogisticModel, error) {
	if len(artifact.FeatureNames) == 0 {
		return nil, errors.New("model artifact has no feature names")
	}
	if len(artifact.FeatureNames) != len(artifact.Coefficients) {
		return nil, fmt.Errorf("model artifact has %d feature names but %d coefficients", len(artifact.FeatureNames), len(artifact.Coefficients))
	}
	seen := make(map[string]struct{}, len(artifact.FeatureNames))
	for _, name := range artifact.FeatureNames {
		if _, dup := seen[name]; dup {
			return nil, fmt.Errorf("model artifact repeats feature %q", name)
		}
		seen[name] = struct{}{}
	}
	threshold := artifact.Threshold
	if threshold == 0 {
		threshold = defaultThreshold
	}
	if threshold <= 0 || threshold >= 1 {
		return nil, fmt.Errorf("model threshold %v outside (0,1)", threshold)
	}
	return &LogisticModel{
		version:      artifact.Version,
		names:        append([]string(nil), artifact.FeatureNames...),
		coefficients: append([]float64(nil), artifact.Coefficients...),
		intercept:    artifact.Intercept,
		threshold:    threshold,
	}, nil
}

// Decode parses a JSON artifact.
func Decode(data []byte) (*LogisticModel, error) {
	var artifact Artifact
	if err := json.Unmarshal(data, &artifact); err != nil {
		return nil, fmt.Errorf("decode model artifact: %w", err)
	}
	return NewLogisticModel(artifact)
}

// Version reports the artifact version string.
func (m *LogisticModel) Version() string {
	return m.version
}

// ExpectedFeatureNames implements prediction.Classifier.
func (m *LogisticModel) ExpectedFeatureNames() []string {
	return append([]string(nil), m.names...)
}

// PredictProba returns [P(not cancelled), P(cancelled)].
func (m *LogisticModel) PredictProba(features []float64) ([]float64, error) {
	p, err := m.probability(features)
	if err != nil {
		return nil, err
	}
	return []float64{1 - p, p}, nil
}

// Predict returns 1 when P(cancelled) exceeds the threshold.
func (m *LogisticModel) Predict(features []float64) (int, error) {
	p, err := m.probability(features)
	if err != nil {
		return 0, err
	}
	if p > m.threshold {
		return int(prediction.Cancelled), nil
	}
	return int(prediction.NotCancelled), nil
}

func (m *LogisticModel) probability(features []float64) (float64, error) {
	if len(features) != len(m.coefficients) {
		return 0, fmt.Errorf("got %d features, model expects %d", len(features), len(m.coefficients))
	}
	z := m.intercept
	for i, x := range features {
		z += m.coefficients[i] * x
	}
	return 1 / (1 + math.Exp(-z)), nil
}

var _ prediction.Classifier = (*LogisticModel)(nil)
