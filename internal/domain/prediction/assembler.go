package prediction

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// DefaultCategoricalColumns are expanded into one indicator per observed value.
var DefaultCategoricalColumns = []string{"carrier_code", "origin_airport", "destination_airport"}

// Weather feature names. The trained schema carries an origin-side (_x) and a
// destination-side (_y) copy of each.
const (
	featureWindSpeed     = "Feature_HourlyWindSpeed"
	featureVisibility    = "Feature_HourlyVisibility"
	featurePrecipitation = "Feature_HourlyPrecipitation"
	featureTemperature   = "Feature_HourlyDryBulbTemperature"
	featurePressure      = "Feature_HourlyStationPressure"

	originSuffix      = "_x"
	destinationSuffix = "_y"
)

// Features renders the snapshot under both weather feature groups.
func (w WeatherSnapshot) Features() map[string]float64 {
	base := map[string]float64{
		featureWindSpeed:     w.WindSpeed,
		featureVisibility:    w.VisibilityKM,
		featurePrecipitation: w.PrecipitationMM,
		featureTemperature:   w.TemperatureC,
		featurePressure:      w.PressureHPA,
	}
	out := make(map[string]float64, len(base)*2)
	for name, value := range base {
		out[name+originSuffix] = value
		out[name+destinationSuffix] = value
	}
	return out
}

// Assembler turns trip attributes and weather into a schema aligned vector.
type Assembler struct {
	schema      []string
	categorical map[string]struct{}
}

// NewAssembler copies schema and categorical so later caller mutation is harmless.
func NewAssembler(schema, categorical []string) *Assembler {
	if len(categorical) == 0 {
		categorical = DefaultCategoricalColumns
	}
	cats := make(map[string]struct{}, len(categorical))
	for _, c := range categorical {
		cats[c] = struct{}{}
	}
	return &Assembler{
		schema:      append([]string(nil), schema...),
		categorical: cats,
	}
}

// Schema returns a copy of the expected feature names.
func (a *Assembler) Schema() []string {
	return append([]string(nil), a.schema...)
}

// Assemble merges trip and weather attributes, expands categoricals and
// reindexes against the expected schema.
func (a *Assembler) Assemble(trip TripInput, weather WeatherSnapshot) FeatureVector {
	merged := a.expand(trip)
	for name, value := range weather.Features() {
		merged[name] = value
	}
	return Reindex(merged, a.schema)
}

func (a *Assembler) expand(trip TripInput) map[string]float64 {
	out := make(map[string]float64, len(trip))
	for key, raw := range trip {
		if _, ok := a.categorical[key]; ok {
			if category, ok := categoryValue(raw); ok {
				out[key+"_"+category] = 1
			}
			continue
		}
		if value, ok := toFloat(raw); ok {
			out[key] = value
		}
	}
	return out
}

// Reindex aligns values to schema: names missing from values become 0 and
// names outside schema are dropped. Output order is schema order.
func Reindex(values map[string]float64, schema []string) FeatureVector {
	vec := make(FeatureVector, len(schema))
	for i, name := range schema {
		vec[i] = Feature{Name: name, Value: values[name]}
	}
	return vec
}

func categoryValue(raw any) (string, bool) {
	switch v := raw.(type) {
	case nil:
		return "", false
	case string:
		if strings.TrimSpace(v) == "" {
			return "", false
		}
		return v, true
	default:
		return fmt.Sprint(v), true
	}
}

func toFloat(raw any) (float64, bool) {
	switch v := raw.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int32:
		return float64(v), true
	case int64:
		return float64(v), true
	case json.Number:
		f, err := v.Float64()
		return f, err == nil
	case bool:
		if v {
			return 1, true
		}
		return 0, true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		return f, err == nil
	default:
		return 0, false
	}
}
