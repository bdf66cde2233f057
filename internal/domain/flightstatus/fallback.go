package flightstatus

import (
	"embed"
	"encoding/json"
	"fmt"

	"github.com/yanqian/flightpulse/internal/domain/upstream"
)

// FallbackVersion names the fixture set served in degraded mode.
const FallbackVersion = "v1"

//go:embed fixtures/*.json
var fixtureFS embed.FS

// Fallback holds the canned payloads served while the provider rate limits us.
type Fallback struct {
	detail    FlightDetail
	dashboard DashboardResponse
}

// LoadFallback decodes the embedded fixtures for FallbackVersion.
func LoadFallback() (*Fallback, error) {
	var fb Fallback
	if err := decodeFixture("check_flight", &fb.detail); err != nil {
		return nil, err
	}
	if err := decodeFixture("dashboard", &fb.dashboard); err != nil {
		return nil, err
	}
	return &fb, nil
}

// MustLoadFallback panics if the embedded fixtures are broken.
func MustLoadFallback() *Fallback {
	fb, err := LoadFallback()
	if err != nil {
		panic(err)
	}
	return fb
}

func decodeFixture(name string, dst any) error {
	path := fmt.Sprintf("fixtures/%s.%s.json", name, FallbackVersion)
	data, err := fixtureFS.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read fallback fixture %s: %w", path, err)
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return fmt.Errorf("decode fallback fixture %s: %w", path, err)
	}
	return nil
}

// Detail returns the canned single flight payload.
func (f *Fallback) Detail() FlightDetail {
	return f.detail
}

// Dashboard returns a copy of the canned dashboard payload.
func (f *Fallback) Dashboard() DashboardResponse {
	out := f.dashboard
	out.Flights = append([]FlightRow(nil), f.dashboard.Flights...)
	return out
}

// DetailFor absorbs a rate-limit failure into the canned detail. Any other
// error is left for the caller to surface.
func (f *Fallback) DetailFor(err error) (FlightDetail, bool) {
	if !upstream.IsRateLimited(err) {
		return FlightDetail{}, false
	}
	return f.Detail(), true
}

// DashboardFor absorbs a rate-limit failure into the canned dashboard.
func (f *Fallback) DashboardFor(err error) (DashboardResponse, bool) {
	if !upstream.IsRateLimited(err) {
		return DashboardResponse{}, false
	}
	return f.Dashboard(), true
}
