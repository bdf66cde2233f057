package flightstatus

import (
	"context"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/yanqian/flightpulse/internal/domain/upstream"
	apperrors "github.com/yanqian/flightpulse/pkg/errors"
	"github.com/yanqian/flightpulse/pkg/metrics"
	"github.com/yanqian/flightpulse/pkg/util"
)

// DefaultAirport is queried when the dashboard request names none.
const DefaultAirport = "ATL"

// DefaultRecordCap bounds the dashboard summary.
const DefaultRecordCap = 30

var (
	flightNumberPattern = regexp.MustCompile(`^[A-Z0-9]{2,10}$`)
	airportPattern      = regexp.MustCompile(`^[A-Z0-9]{3,4}$`)
)

// Service exposes flight status lookups.
type Service interface {
	CheckFlight(ctx context.Context, req CheckRequest) (FlightDetail, error)
	DashboardFlights(ctx context.Context, req DashboardRequest) (DashboardResponse, error)
}

// FlightDataClient fetches normalized flight records from the provider.
type FlightDataClient interface {
	FetchFlightByNumber(ctx context.Context, number, date string) ([]FlightRecord, error)
	FetchFlightsForAirport(ctx context.Context, airport string, start, end time.Time) ([]FlightRecord, error)
}

type service struct {
	cfg      Config
	client   FlightDataClient
	fallback *Fallback
	usage    *metrics.UpstreamUsage
	logger   *slog.Logger
	now      func() time.Time
}

// NewService wires up the flight status domain. A nil fallback uses the
// embedded fixtures.
func NewService(cfg Config, client FlightDataClient, fallback *Fallback, usage *metrics.UpstreamUsage, logger *slog.Logger) Service {
	if strings.TrimSpace(cfg.DefaultAirport) == "" {
		cfg.DefaultAirport = DefaultAirport
	}
	if cfg.Window == nil {
		cfg.Window = SlidingWindow{Duration: DefaultSlidingDuration}
	}
	if usage == nil {
		usage = &metrics.UpstreamUsage{}
	}
	if fallback == nil {
		fallback = MustLoadFallback()
	}
	return &service{
		cfg:      cfg,
		client:   client,
		fallback: fallback,
		usage:    usage,
		logger:   logger.With("component", "flightstatus.service"),
		now:      util.NowUTC,
	}
}

func (s *service) CheckFlight(ctx context.Context, req CheckRequest) (FlightDetail, error) {
	number := normalizeCode(req.FlightNumber)
	date := strings.TrimSpace(req.Date)
	if number == "" || date == "" {
		return FlightDetail{}, apperrors.Wrap(apperrors.CodeInvalidInput, "missing flightNumber or date", nil)
	}
	if !flightNumberPattern.MatchString(number) {
		return FlightDetail{}, apperrors.Wrap(apperrors.CodeInvalidInput, "flightNumber must be alphanumeric", nil)
	}
	if _, err := util.ParseDate(date); err != nil {
		return FlightDetail{}, apperrors.Wrap(apperrors.CodeInvalidInput, "date must be formatted as YYYY-MM-DD", err)
	}

	s.usage.Requests.Add(1)
	records, err := s.client.FetchFlightByNumber(ctx, number, date)
	if err != nil {
		if detail, ok := s.fallback.DetailFor(err); ok {
			s.recordFallback("check_flight", err)
			return detail, nil
		}
		return FlightDetail{}, s.upstreamError(err, "flight lookup failed", "flight_number", number, "date", date)
	}

	detail, err := ProjectDetail(records)
	if err != nil {
		return FlightDetail{}, apperrors.Wrap(apperrors.CodeNotFound, "flight not found", err)
	}
	s.logger.Info("flight status resolved", "flight_number", number, "date", date, "status", detail.Status)
	return detail, nil
}

func (s *service) DashboardFlights(ctx context.Context, req DashboardRequest) (DashboardResponse, error) {
	airport := normalizeCode(req.Airport)
	if airport == "" {
		airport = s.cfg.DefaultAirport
	}
	if !airportPattern.MatchString(airport) {
		return DashboardResponse{}, apperrors.Wrap(apperrors.CodeInvalidInput, "airport must be a 3 or 4 character code", nil)
	}

	start, end := s.cfg.Window.Window(s.now())
	s.usage.Requests.Add(1)
	records, err := s.client.FetchFlightsForAirport(ctx, airport, start, end)
	if err != nil {
		if resp, ok := s.fallback.DashboardFor(err); ok {
			s.recordFallback("dashboard_flights", err)
			return resp, nil
		}
		return DashboardResponse{}, s.upstreamError(err, "dashboard fetch failed", "airport", airport)
	}

	resp := DashboardResponse{Summary: Summarize(records, s.cfg.RecordCap)}
	if s.cfg.IncludeFlights {
		resp.Flights = Rows(records, s.cfg.RecordCap)
	}
	s.logger.Info("dashboard summarized", "airport", airport, "records", len(records), "classified", resp.Summary.Total(),
		"window_start", start.Format(time.RFC3339), "window_end", end.Format(time.RFC3339))
	return resp, nil
}

func (s *service) recordFallback(query string, err error) {
	s.usage.RateLimited.Add(1)
	s.usage.FallbacksServed.Add(1)
	s.logger.Warn("flight data quota exceeded, serving fallback payload", "query", query, "fallback_version", FallbackVersion, "error", err)
}

func (s *service) upstreamError(err error, message string, attrs ...any) error {
	s.usage.Failures.Add(1)
	s.logger.Warn(message, append(attrs, "kind", upstream.KindOf(err), "error", err)...)
	if upstream.KindOf(err) == upstream.KindNotFound {
		return apperrors.Wrap(apperrors.CodeNotFound, "flight not found", err)
	}
	return apperrors.Wrap(apperrors.CodeUpstreamError, message, err)
}

func normalizeCode(raw string) string {
	return strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(raw), " ", ""))
}
