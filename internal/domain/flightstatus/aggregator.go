package flightstatus

import (
	"strings"

	"github.com/yanqian/flightpulse/internal/domain/upstream"
)

// Bucket is one of the three dashboard status classes.
type Bucket string

const (
	BucketOnTime    Bucket = "on_time"
	BucketDelayed   Bucket = "delayed"
	BucketCancelled Bucket = "cancelled"
)

// Classify buckets a raw status string. "cancel" wins over "delay"; anything
// else, including an empty status, counts as on time.
func Classify(status string) Bucket {
	st := strings.ToLower(status)
	switch {
	case strings.Contains(st, "cancel"):
		return BucketCancelled
	case strings.Contains(st, "delay"):
		return BucketDelayed
	default:
		return BucketOnTime
	}
}

// Summarize counts the first limit records per bucket. limit <= 0 counts all.
func Summarize(records []FlightRecord, limit int) StatusSummary {
	var summary StatusSummary
	for _, rec := range capped(records, limit) {
		switch Classify(rec.Status) {
		case BucketCancelled:
			summary.Cancelled++
		case BucketDelayed:
			summary.Delayed++
		default:
			summary.OnTime++
		}
	}
	return summary
}

// ProjectDetail projects the first record. An empty list is a not-found failure.
func ProjectDetail(records []FlightRecord) (FlightDetail, error) {
	if len(records) == 0 {
		return FlightDetail{}, upstream.NotFound("flightstatus", "flight not found")
	}
	rec := records[0]
	return FlightDetail{
		FlightNumber:  orNA(rec.Number),
		Status:        orNA(rec.Status),
		Departure:     orNA(rec.DepartureAirport),
		Arrival:       orNA(rec.ArrivalAirport),
		DepartureTime: orNA(rec.DepartureTimeLocal),
		ArrivalTime:   orNA(rec.ArrivalTimeLocal),
		Aircraft:      orNA(rec.AircraftModel),
		Airline:       orNA(rec.AirlineName),
	}, nil
}

// Rows projects the same records Summarize would count into dashboard rows.
func Rows(records []FlightRecord, limit int) []FlightRow {
	in := capped(records, limit)
	rows := make([]FlightRow, 0, len(in))
	for _, rec := range in {
		rows = append(rows, FlightRow{
			FlightNumber:  orNA(rec.Number),
			Airline:       orNA(rec.AirlineName),
			Status:        orNA(rec.Status),
			DepartureTime: orNA(rec.DepartureTimeLocal),
			ArrivalTime:   orNA(rec.ArrivalTimeLocal),
		})
	}
	return rows
}

func capped(records []FlightRecord, limit int) []FlightRecord {
	if limit > 0 && len(records) > limit {
		return records[:limit]
	}
	return records
}

func orNA(value string) string {
	if strings.TrimSpace(value) == "" {
		return NotAvailable
	}
	return value
}
