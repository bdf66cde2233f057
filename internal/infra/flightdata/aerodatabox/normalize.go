package aerodatabox

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/yanqian/flightpulse/internal/domain/flightstatus"
)

type flightGroups struct {
	Departures []flight `json:"departures"`
	Arrivals   []flight `json:"arrivals"`
}

type flight struct {
	Number    string    `json:"number"`
	Status    string    `json:"status"`
	Departure *movement `json:"departure"`
	Arrival   *movement `json:"arrival"`
	// Movement replaces Departure/Arrival in airport board listings. Its
	// airport is the far end of the flight; its scheduled time is the
	// movement at the queried airport.
	Movement *movement `json:"movement"`
	Aircraft struct {
		Model string `json:"model"`
	} `json:"aircraft"`
	Airline struct {
		Name string `json:"name"`
	} `json:"airline"`
}

type movement struct {
	Airport struct {
		Name string `json:"name"`
	} `json:"airport"`
	ScheduledTime struct {
		Local string `json:"local"`
	} `json:"scheduledTime"`
}

// normalizeFlights accepts either a bare list of flights or an object with
// departures and arrivals groups and returns one list, departures first.
// Arrivals are dropped unless withArrivals is set.
func normalizeFlights(body []byte, withArrivals bool) ([]flightstatus.FlightRecord, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return nil, nil
	}

	var groups flightGroups
	switch trimmed[0] {
	case '[':
		if err := json.Unmarshal(trimmed, &groups.Departures); err != nil {
			return nil, fmt.Errorf("decode flight list: %w", err)
		}
	case '{':
		if err := json.Unmarshal(trimmed, &groups); err != nil {
			return nil, fmt.Errorf("decode flight groups: %w", err)
		}
	default:
		return nil, fmt.Errorf("unexpected flight payload starting with %q", trimmed[0])
	}
	if !withArrivals {
		groups.Arrivals = nil
	}

	records := make([]flightstatus.FlightRecord, 0, len(groups.Departures)+len(groups.Arrivals))
	for _, f := range groups.Departures {
		records = append(records, f.record(false))
	}
	for _, f := range groups.Arrivals {
		records = append(records, f.record(true))
	}
	return records, nil
}

// record keeps Status raw; the domain projections render it.
func (f flight) record(arrivalBoard bool) flightstatus.FlightRecord {
	depAirport, arrAirport := f.Departure.airportName(), f.Arrival.airportName()
	depTime, arrTime := f.Departure.localTime(), f.Arrival.localTime()
	if m := f.Movement; m != nil {
		if arrivalBoard {
			depAirport = firstNonEmpty(depAirport, m.airportName())
			arrTime = firstNonEmpty(arrTime, m.localTime())
		} else {
			arrAirport = firstNonEmpty(arrAirport, m.airportName())
			depTime = firstNonEmpty(depTime, m.localTime())
		}
	}
	return flightstatus.FlightRecord{
		Number:             orNA(f.Number),
		Status:             f.Status,
		DepartureAirport:   orNA(depAirport),
		ArrivalAirport:     orNA(arrAirport),
		DepartureTimeLocal: orNA(depTime),
		ArrivalTimeLocal:   orNA(arrTime),
		AircraftModel:      orNA(f.Aircraft.Model),
		AirlineName:        orNA(f.Airline.Name),
	}
}

func (m *movement) airportName() string {
	if m == nil {
		return ""
	}
	return m.Airport.Name
}

func (m *movement) localTime() string {
	if m == nil {
		return ""
	}
	return m.ScheduledTime.Local
}

func firstNonEmpty(a, b string) string {
	if a != "" {
		return a
	}
	return b
}

func orNA(value string) string {
	if value == "" {
		return flightstatus.NotAvailable
	}
	return value
}
