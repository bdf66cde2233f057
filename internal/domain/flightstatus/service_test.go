package flightstatus

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/yanqian/flightpulse/internal/domain/upstream"
	apperrors "github.com/yanqian/flightpulse/pkg/errors"
	"github.com/yanqian/flightpulse/pkg/metrics"
)

var fixedNow = time.Date(2025, 7, 11, 15, 0, 0, 0, time.UTC)

func TestCheckFlightSuccess(t *testing.T) {
	client := &stubFlightClient{records: []FlightRecord{
		{Number: "DL 345", Status: "Expected", AirlineName: "Delta Air Lines"},
	}}
	svc, _ := newTestService(client, Config{})

	detail, err := svc.CheckFlight(context.Background(), CheckRequest{FlightNumber: " dl345 ", Date: "2025-07-11"})
	require.NoError(t, err)
	require.Equal(t, "DL 345", detail.FlightNumber)
	require.Equal(t, "Expected", detail.Status)
	require.Equal(t, NotAvailable, detail.Aircraft)
	require.Equal(t, "DL345", client.lastNumber)
	require.Equal(t, "2025-07-11", client.lastDate)
}

func TestCheckFlightValidation(t *testing.T) {
	client := &stubFlightClient{}
	svc, _ := newTestService(client, Config{})

	for _, req := range []CheckRequest{
		{Date: "2025-07-11"},
		{FlightNumber: "DL345"},
		{FlightNumber: "DL345", Date: "11/07/2025"},
		{FlightNumber: "DL-345", Date: "2025-07-11"},
	} {
		_, err := svc.CheckFlight(context.Background(), req)
		require.True(t, apperrors.IsCode(err, apperrors.CodeInvalidInput), "%+v", req)
	}
	require.Zero(t, client.calls)
}

func TestCheckFlightRateLimitedServesFallback(t *testing.T) {
	client := &stubFlightClient{err: upstream.NewFailure("aerodatabox", upstream.KindRateLimited, 429, []byte("quota"), nil)}
	svc, usage := newTestService(client, Config{})

	detail, err := svc.CheckFlight(context.Background(), CheckRequest{FlightNumber: "DL345", Date: "2025-07-11"})
	require.NoError(t, err)
	require.Equal(t, MustLoadFallback().Detail(), detail)
	require.Equal(t, int64(1), usage.FallbacksServed.Load())
}

func TestCheckFlightNotFound(t *testing.T) {
	svc, usage := newTestService(&stubFlightClient{}, Config{})

	_, err := svc.CheckFlight(context.Background(), CheckRequest{FlightNumber: "DL345", Date: "2025-07-11"})
	require.True(t, apperrors.IsCode(err, apperrors.CodeNotFound))
	require.Zero(t, usage.FallbacksServed.Load())
}

func TestCheckFlightUpstreamFailures(t *testing.T) {
	tests := []struct {
		kind upstream.Kind
		code string
	}{
		{upstream.KindTransportError, apperrors.CodeUpstreamError},
		{upstream.KindMalformedResponse, apperrors.CodeUpstreamError},
		{upstream.KindNotFound, apperrors.CodeNotFound},
	}
	for _, tc := range tests {
		failure := upstream.NewFailure("aerodatabox", tc.kind, 500, []byte("detail"), nil)
		svc, usage := newTestService(&stubFlightClient{err: failure}, Config{})

		_, err := svc.CheckFlight(context.Background(), CheckRequest{FlightNumber: "DL345", Date: "2025-07-11"})
		require.True(t, apperrors.IsCode(err, tc.code), string(tc.kind))
		require.Equal(t, tc.kind, upstream.KindOf(err))
		require.Equal(t, int64(1), usage.Failures.Load())
	}
}

func TestDashboardFlightsSummarizesWindow(t *testing.T) {
	records := make([]FlightRecord, 0, 35)
	for i := 0; i < 35; i++ {
		status := "Expected"
		switch i % 5 {
		case 3:
			status = "Delayed"
		case 4:
			status = "Cancelled"
		}
		records = append(records, FlightRecord{Number: "DL1", Status: status})
	}
	client := &stubFlightClient{records: records}
	svc, _ := newTestService(client, Config{RecordCap: 30, IncludeFlights: true, Window: SlidingWindow{Duration: 12 * time.Hour}})

	resp, err := svc.DashboardFlights(context.Background(), DashboardRequest{})
	require.NoError(t, err)
	require.Equal(t, StatusSummary{OnTime: 18, Delayed: 6, Cancelled: 6}, resp.Summary)
	require.Len(t, resp.Flights, 30)
	require.Equal(t, DefaultAirport, client.lastAirport)
	require.Equal(t, fixedNow.Add(-12*time.Hour), client.lastStart)
	require.Equal(t, fixedNow, client.lastEnd)
}

func TestDashboardFlightsSameDayWindowWithoutRows(t *testing.T) {
	client := &stubFlightClient{records: []FlightRecord{{Status: "Delayed"}}}
	svc, _ := newTestService(client, Config{Window: SameDayWindow{}})

	resp, err := svc.DashboardFlights(context.Background(), DashboardRequest{Airport: "kjfk"})
	require.NoError(t, err)
	require.Equal(t, StatusSummary{Delayed: 1}, resp.Summary)
	require.Nil(t, resp.Flights)
	require.Equal(t, "KJFK", client.lastAirport)
	require.Equal(t, time.Date(2025, 7, 11, 0, 0, 0, 0, time.UTC), client.lastStart)
	require.Equal(t, time.Date(2025, 7, 11, 23, 59, 0, 0, time.UTC), client.lastEnd)
}

func TestDashboardFlightsEmptyBoardKeepsFlightsKey(t *testing.T) {
	svc, _ := newTestService(&stubFlightClient{}, Config{IncludeFlights: true})

	resp, err := svc.DashboardFlights(context.Background(), DashboardRequest{Airport: "ATL"})
	require.NoError(t, err)
	require.NotNil(t, resp.Flights)
	require.Empty(t, resp.Flights)

	payload, err := json.Marshal(resp)
	require.NoError(t, err)
	require.JSONEq(t, `{"summary":{"on_time":0,"delayed":0,"cancelled":0},"flights":[]}`, string(payload))

	payload, err = json.Marshal(DashboardResponse{Summary: StatusSummary{OnTime: 1}})
	require.NoError(t, err)
	require.JSONEq(t, `{"summary":{"on_time":1,"delayed":0,"cancelled":0}}`, string(payload))
}

func TestNewServiceDefaultsFallback(t *testing.T) {
	client := &stubFlightClient{err: upstream.NewFailure("aerodatabox", upstream.KindRateLimited, 429, nil, nil)}
	svc := NewService(Config{}, client, nil, nil, slog.New(slog.NewTextHandler(io.Discard, nil)))

	detail, err := svc.CheckFlight(context.Background(), CheckRequest{FlightNumber: "DL345", Date: "2025-07-11"})
	require.NoError(t, err)
	require.Equal(t, MustLoadFallback().Detail(), detail)
}

func TestDashboardFlightsRateLimitedServesFallback(t *testing.T) {
	client := &stubFlightClient{err: upstream.NewFailure("aerodatabox", upstream.KindRateLimited, 429, nil, nil)}
	svc, _ := newTestService(client, Config{})

	resp, err := svc.DashboardFlights(context.Background(), DashboardRequest{Airport: "ATL"})
	require.NoError(t, err)
	require.Equal(t, MustLoadFallback().Dashboard(), resp)
}

func TestDashboardFlightsInvalidAirport(t *testing.T) {
	svc, _ := newTestService(&stubFlightClient{}, Config{})
	_, err := svc.DashboardFlights(context.Background(), DashboardRequest{Airport: "ATLANTA"})
	require.True(t, apperrors.IsCode(err, apperrors.CodeInvalidInput))
}

func newTestService(client FlightDataClient, cfg Config) (*service, *metrics.UpstreamUsage) {
	usage := &metrics.UpstreamUsage{}
	svc := NewService(cfg, client, MustLoadFallback(), usage, slog.New(slog.NewTextHandler(io.Discard, nil))).(*service)
	svc.now = func() time.Time { return fixedNow }
	return svc, usage
}

type stubFlightClient struct {
	records     []FlightRecord
	err         error
	calls       int
	lastNumber  string
	lastDate    string
	lastAirport string
	lastStart   time.Time
	lastEnd     time.Time
}

func (s *stubFlightClient) FetchFlightByNumber(ctx context.Context, number, date string) ([]FlightRecord, error) {
	s.calls++
	s.lastNumber, s.lastDate = number, date
	if s.err != nil {
		return nil, s.err
	}
	return s.records, nil
}

func (s *stubFlightClient) FetchFlightsForAirport(ctx context.Context, airport string, start, end time.Time) ([]FlightRecord, error) {
	s.calls++
	s.lastAirport, s.lastStart, s.lastEnd = airport, start, end
	if s.err != nil {
		return nil, s.err
	}
	return s.records, nil
}
