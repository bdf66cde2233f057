package http

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yanqian/flightpulse/internal/domain/flightstatus"
	"github.com/yanqian/flightpulse/internal/domain/prediction"
	"github.com/yanqian/flightpulse/pkg/metrics"
)

// Handler wires the HTTP transport to domain services.
type Handler struct {
	predictionSvc prediction.Service
	flightSvc     flightstatus.Service
	usage         *metrics.UpstreamUsage
	logger        *slog.Logger
}

// NewHandler constructs the root HTTP handler.
func NewHandler(predictionSvc prediction.Service, flightSvc flightstatus.Service, usage *metrics.UpstreamUsage, logger *slog.Logger) *Handler {
	if usage == nil {
		usage = &metrics.UpstreamUsage{}
	}
	return &Handler{
		predictionSvc: predictionSvc,
		flightSvc:     flightSvc,
		usage:         usage,
		logger:        logger.With("component", "http.handler"),
	}
}

// Predict scores a trip for cancellation risk.
func (h *Handler) Predict(c *gin.Context) {
	var req prediction.Request
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", errMessage(err), err))
		return
	}

	resp, err := h.predictionSvc.PredictCancellation(c.Request.Context(), req)
	if err != nil {
		abortWithError(c, fromDomainError(err))
		return
	}

	c.JSON(http.StatusOK, resp)
}

// CheckFlight returns the status of one flight on one date.
func (h *Handler) CheckFlight(c *gin.Context) {
	var req flightstatus.CheckRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", errMessage(err), err))
		return
	}

	detail, err := h.flightSvc.CheckFlight(c.Request.Context(), req)
	if err != nil {
		abortWithError(c, fromDomainError(err))
		return
	}

	c.JSON(http.StatusOK, detail)
}

// DashboardFlights summarizes recent departures and arrivals for an airport.
func (h *Handler) DashboardFlights(c *gin.Context) {
	var req flightstatus.DashboardRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", errMessage(err), err))
		return
	}

	resp, err := h.flightSvc.DashboardFlights(c.Request.Context(), req)
	if err != nil {
		abortWithError(c, fromDomainError(err))
		return
	}

	c.JSON(http.StatusOK, resp)
}

// Health reports liveness and upstream quota counters.
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":     "ok",
		"flightData": h.usage.Snapshot(),
	})
}

func errMessage(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
