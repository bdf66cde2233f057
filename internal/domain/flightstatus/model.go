package flightstatus

import "encoding/json"

// NotAvailable replaces any field the upstream provider omitted.
const NotAvailable = "N/A"

// FlightRecord is a flight as normalized by the flight data gateway.
type FlightRecord struct {
	Number             string `json:"number"`
	Status             string `json:"status"`
	DepartureAirport   string `json:"departureAirport"`
	ArrivalAirport     string `json:"arrivalAirport"`
	DepartureTimeLocal string `json:"departureTimeLocal"`
	ArrivalTimeLocal   string `json:"arrivalTimeLocal"`
	AircraftModel      string `json:"aircraftModel"`
	AirlineName        string `json:"airlineName"`
}

// FlightDetail is the single flight projection returned to callers.
type FlightDetail struct {
	FlightNumber  string `json:"flight_number"`
	Status        string `json:"status"`
	Departure     string `json:"departure"`
	Arrival       string `json:"arrival"`
	DepartureTime string `json:"departure_time"`
	ArrivalTime   string `json:"arrival_time"`
	Aircraft      string `json:"aircraft"`
	Airline       string `json:"airline"`
}

// FlightRow is the compact per-flight line of the dashboard.
type FlightRow struct {
	FlightNumber  string `json:"flight_number"`
	Airline       string `json:"airline"`
	Status        string `json:"status"`
	DepartureTime string `json:"departure_time"`
	ArrivalTime   string `json:"arrival_time"`
}

// StatusSummary counts flights per status bucket.
type StatusSummary struct {
	OnTime    int `json:"on_time"`
	Delayed   int `json:"delayed"`
	Cancelled int `json:"cancelled"`
}

// Total is the number of records classified.
func (s StatusSummary) Total() int {
	return s.OnTime + s.Delayed + s.Cancelled
}

// CheckRequest identifies one flight on one date.
type CheckRequest struct {
	FlightNumber string `form:"flightNumber"`
	Date         string `form:"date"`
}

// DashboardRequest selects the airport for the dashboard.
type DashboardRequest struct {
	Airport string `form:"airport"`
}

// DashboardResponse is serialized back to API consumers. A nil Flights
// omits the key; a non-nil empty slice renders as [].
type DashboardResponse struct {
	Summary StatusSummary `json:"summary"`
	Flights []FlightRow   `json:"flights"`
}

func (r DashboardResponse) MarshalJSON() ([]byte, error) {
	if r.Flights == nil {
		return json.Marshal(struct {
			Summary StatusSummary `json:"summary"`
		}{r.Summary})
	}
	type plain DashboardResponse
	return json.Marshal(plain(r))
}

// Config holds runtime knobs for the flight status service.
type Config struct {
	DefaultAirport string
	RecordCap      int // 0 summarizes every record
	IncludeFlights bool
	Window         WindowStrategy
}
