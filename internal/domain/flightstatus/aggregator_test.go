package flightstatus

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/yanqian/flightpulse/internal/domain/upstream"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		status string
		want   Bucket
	}{
		{"Flight Cancelled", BucketCancelled},
		{"Delayed - Cancelled", BucketCancelled},
		{"CANCELED", BucketCancelled},
		{"Delayed", BucketDelayed},
		{"delay expected", BucketDelayed},
		{"EnRoute", BucketOnTime},
		{"Arrived", BucketOnTime},
		{"", BucketOnTime},
		{NotAvailable, BucketOnTime},
	}
	for _, tc := range tests {
		require.Equal(t, tc.want, Classify(tc.status), "status %q", tc.status)
	}
}

func TestSummarize(t *testing.T) {
	require.Equal(t, StatusSummary{Cancelled: 1}, Summarize([]FlightRecord{{Status: "Flight Cancelled"}}, 0))
	require.Equal(t, StatusSummary{OnTime: 1}, Summarize([]FlightRecord{{Status: ""}}, 0))
	require.Equal(t, StatusSummary{}, Summarize(nil, DefaultRecordCap))

	mixed := []FlightRecord{
		{Status: "Expected"},
		{Status: "Delayed"},
		{Status: "Canceled"},
		{Status: "Departed"},
	}
	require.Equal(t, StatusSummary{OnTime: 2, Delayed: 1, Cancelled: 1}, Summarize(mixed, 0))
}

func TestSummarizeEnforcesCap(t *testing.T) {
	records := make([]FlightRecord, 0, 35)
	for i := 0; i < 30; i++ {
		records = append(records, FlightRecord{Number: fmt.Sprintf("DL%d", i), Status: "Expected"})
	}
	for i := 30; i < 35; i++ {
		records = append(records, FlightRecord{Number: fmt.Sprintf("DL%d", i), Status: "Cancelled"})
	}

	summary := Summarize(records, 30)
	require.Equal(t, 30, summary.Total())
	require.Equal(t, StatusSummary{OnTime: 30}, summary)

	require.Equal(t, 35, Summarize(records, 0).Total())
	require.Len(t, Rows(records, 30), 30)
	require.Equal(t, "DL29", Rows(records, 30)[29].FlightNumber)
}

func TestProjectDetail(t *testing.T) {
	records := []FlightRecord{
		{
			Number:             "DL 345",
			Status:             "Expected",
			DepartureAirport:   "Atlanta",
			ArrivalAirport:     "New York",
			DepartureTimeLocal: "2025-07-11 14:00-04:00",
			AircraftModel:      "Airbus A321",
			AirlineName:        "Delta Air Lines",
		},
		{Number: "DL 999"},
	}

	detail, err := ProjectDetail(records)
	require.NoError(t, err)
	require.Equal(t, FlightDetail{
		FlightNumber:  "DL 345",
		Status:        "Expected",
		Departure:     "Atlanta",
		Arrival:       "New York",
		DepartureTime: "2025-07-11 14:00-04:00",
		ArrivalTime:   NotAvailable,
		Aircraft:      "Airbus A321",
		Airline:       "Delta Air Lines",
	}, detail)
}

func TestProjectDetailEmpty(t *testing.T) {
	_, err := ProjectDetail(nil)
	require.Equal(t, upstream.KindNotFound, upstream.KindOf(err))
}

func TestRowsFillsSentinel(t *testing.T) {
	rows := Rows([]FlightRecord{{Number: "AA100"}}, 0)
	require.Equal(t, []FlightRow{{
		FlightNumber:  "AA100",
		Airline:       NotAvailable,
		Status:        NotAvailable,
		DepartureTime: NotAvailable,
		ArrivalTime:   NotAvailable,
	}}, rows)
}
