package prediction

import (
	"time"

	"github.com/google/uuid"
)

// DefaultPressureHPA is used when the weather source has no station pressure.
const DefaultPressureHPA = 1013.0

// WeatherSnapshot is the weather observed for one city at query time.
type WeatherSnapshot struct {
	WindSpeed       float64 `json:"windSpeed"`
	VisibilityKM    float64 `json:"visibilityKm"`
	PrecipitationMM float64 `json:"precipitationMm"`
	TemperatureC    float64 `json:"temperatureC"`
	PressureHPA     float64 `json:"pressureHpa"`
}

// TripInput carries caller supplied trip attributes, numeric or categorical.
type TripInput map[string]any

// Feature is a single named classifier input.
type Feature struct {
	Name  string  `json:"name"`
	Value float64 `json:"value"`
}

// FeatureVector is ordered exactly as the classifier's expected schema.
type FeatureVector []Feature

// Names lists the feature names in order.
func (v FeatureVector) Names() []string {
	names := make([]string, len(v))
	for i, f := range v {
		names[i] = f.Name
	}
	return names
}

// Values lists the feature values in order.
func (v FeatureVector) Values() []float64 {
	values := make([]float64, len(v))
	for i, f := range v {
		values[i] = f.Value
	}
	return values
}

// Get returns the value for name.
func (v FeatureVector) Get(name string) (float64, bool) {
	for _, f := range v {
		if f.Name == name {
			return f.Value, true
		}
	}
	return 0, false
}

// Label is the binary classifier outcome.
type Label int

const (
	NotCancelled Label = 0
	Cancelled    Label = 1
)

func (l Label) String() string {
	if l == Cancelled {
		return "CANCELLED"
	}
	return "NOT_CANCELLED"
}

// Result is the predictor output for one feature vector.
type Result struct {
	Label      Label
	Confidence float64
}

// Request captures the payload accepted by the prediction endpoint.
type Request struct {
	CityName   string    `json:"city_name"`
	ModelInput TripInput `json:"model_input"`
}

// Response is serialized back to API consumers.
type Response struct {
	Prediction      int     `json:"prediction"`
	ConfidenceScore float64 `json:"confidence_score"`
}

// AuditEntry records one served prediction.
type AuditEntry struct {
	ID         uuid.UUID
	CityName   string
	Weather    WeatherSnapshot
	Features   FeatureVector
	Label      Label
	Confidence float64
	CreatedAt  time.Time
}

// Config wires runtime dependencies for the prediction domain.
type Config struct {
	CategoricalColumns []string
}
