package unit

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/yanqian/flightpulse/internal/domain/flightstatus"
	"github.com/yanqian/flightpulse/internal/infra/flightdata/aerodatabox"
	apperrors "github.com/yanqian/flightpulse/pkg/errors"
	"github.com/yanqian/flightpulse/pkg/metrics"
)

func newFlightService(t *testing.T, handler http.HandlerFunc, cfg flightstatus.Config) (flightstatus.Service, *metrics.UpstreamUsage) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	client := aerodatabox.NewClient(aerodatabox.Options{BaseURL: server.URL, APIKey: "key", Timeout: time.Second})
	usage := &metrics.UpstreamUsage{}
	return flightstatus.NewService(cfg, client, flightstatus.MustLoadFallback(), usage, newTestLogger()), usage
}

func TestCheckFlightQuotaExceededServesFixture(t *testing.T) {
	svc, usage := newFlightService(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"message":"You have exceeded the MONTHLY quota"}`))
	}, flightstatus.Config{})

	detail, err := svc.CheckFlight(context.Background(), flightstatus.CheckRequest{FlightNumber: "DL345", Date: "2025-07-11"})
	require.NoError(t, err)
	require.Equal(t, flightstatus.MustLoadFallback().Detail(), detail)
	require.Equal(t, "DL345", detail.FlightNumber)
	require.EqualValues(t, 1, usage.Snapshot().FallbacksServed)
}

func TestCheckFlightEmptyResultIsNotFound(t *testing.T) {
	svc, _ := newFlightService(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}, flightstatus.Config{})

	_, err := svc.CheckFlight(context.Background(), flightstatus.CheckRequest{FlightNumber: "ZZ999", Date: "2025-07-11"})
	require.Error(t, err)
	require.True(t, apperrors.IsCode(err, apperrors.CodeNotFound))
}

func TestCheckFlightServerErrorIsNotAbsorbed(t *testing.T) {
	svc, usage := newFlightService(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}, flightstatus.Config{})

	_, err := svc.CheckFlight(context.Background(), flightstatus.CheckRequest{FlightNumber: "DL345", Date: "2025-07-11"})
	require.Error(t, err)
	require.True(t, apperrors.IsCode(err, apperrors.CodeUpstreamError))
	require.Zero(t, usage.Snapshot().FallbacksServed)
}

func TestDashboardCapsAndClassifies(t *testing.T) {
	svc, _ := newFlightService(t, func(w http.ResponseWriter, r *http.Request) {
		require.True(t, strings.HasPrefix(r.URL.Path, "/flights/airports/icao/KATL/"))
		flights := make([]string, 0, 35)
		for i := 0; i < 35; i++ {
			status := "Departed"
			switch {
			case i < 4:
				status = "Canceled"
			case i < 10:
				status = "Delayed"
			}
			flights = append(flights, fmt.Sprintf(`{"number":"DL%d","status":%q}`, i, status))
		}
		_, _ = w.Write([]byte(`{"departures":[` + strings.Join(flights, ",") + `]}`))
	}, flightstatus.Config{DefaultAirport: "KATL", RecordCap: 30, IncludeFlights: true})

	resp, err := svc.DashboardFlights(context.Background(), flightstatus.DashboardRequest{})
	require.NoError(t, err)
	require.Equal(t, flightstatus.StatusSummary{OnTime: 20, Delayed: 6, Cancelled: 4}, resp.Summary)
	require.Equal(t, 30, resp.Summary.Total())
	require.Len(t, resp.Flights, 30)
	require.Equal(t, "DL0", resp.Flights[0].FlightNumber)
}

func TestDashboardQuotaExceededServesFixture(t *testing.T) {
	svc, _ := newFlightService(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}, flightstatus.Config{})

	resp, err := svc.DashboardFlights(context.Background(), flightstatus.DashboardRequest{Airport: "ATL"})
	require.NoError(t, err)
	require.Equal(t, flightstatus.StatusSummary{OnTime: 18, Delayed: 7, Cancelled: 5}, resp.Summary)
	require.Len(t, resp.Flights, 3)
}
