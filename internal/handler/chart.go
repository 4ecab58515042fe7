package handler

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/dharmasatrya/flightchart/internal/aggregator"
	"github.com/dharmasatrya/flightchart/internal/logger"
	"github.com/dharmasatrya/flightchart/internal/models"
	"github.com/dharmasatrya/flightchart/internal/providers"
	"github.com/dharmasatrya/flightchart/internal/validation"
)

type ChartService interface {
	BuildChart(ctx context.Context, req models.ChartRequest) (*models.ChartResponse, error)
	AggregateOffers(offers []models.FlightOffer, intent models.TripIntent) models.FrontendChartData
	Airports(ctx context.Context, address string) (models.TopAirportCodes, error)
}

type ChartHandler struct {
	service     ChartService
	maxSpanDays int
}

// NewChartHandler builds the chart routes. maxSpanDays bounds the dates a caller may send
// to the offers endpoint; zero disables the check.
func NewChartHandler(service ChartService, maxSpanDays int) *ChartHandler {
	return &ChartHandler{
		service:     service,
		maxSpanDays: maxSpanDays,
	}
}

// Chart handles POST /api/v1/chart.
func (h *ChartHandler) Chart(c echo.Context) error {
	var req models.ChartRequest
	if err := c.Bind(&req); err != nil {
		return invalidRequest(c, err)
	}
	if err := c.Validate(&req); err != nil {
		return writeError(c, err)
	}

	resp, err := h.service.BuildChart(c.Request().Context(), req)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, resp)
}

// AggregateOffers handles POST /api/v1/chart/offers.
func (h *ChartHandler) AggregateOffers(c echo.Context) error {
	var req models.AggregateRequest
	if err := c.Bind(&req); err != nil {
		return invalidRequest(c, err)
	}
	if err := c.Validate(&req); err != nil {
		return writeError(c, err)
	}
	if err := h.checkSpan(req); err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, h.service.AggregateOffers(req.Offers, req.TripIntent))
}

func (h *ChartHandler) checkSpan(req models.AggregateRequest) error {
	if h.maxSpanDays <= 0 {
		return nil
	}

	var errs validation.FieldErrors
	if aggregator.TripDurationDays(req.TripIntent) > h.maxSpanDays {
		errs = append(errs, models.FieldError{
			Field:   "returnDate",
			Message: fmt.Sprintf("must be within %d days of outboundDate", h.maxSpanDays),
		})
	}
	if aggregator.DateSpanDays(req.Offers) > h.maxSpanDays {
		errs = append(errs, models.FieldError{
			Field:   "offers",
			Message: fmt.Sprintf("flight dates must fall within %d days", h.maxSpanDays),
		})
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

// Airports handles GET /api/v1/airports?address=.
func (h *ChartHandler) Airports(c echo.Context) error {
	address := strings.TrimSpace(c.QueryParam("address"))
	if address == "" {
		return writeError(c, validation.FieldErrors{{Field: "address", Message: models.ErrMissingAddress.Error()}})
	}

	codes, err := h.service.Airports(c.Request().Context(), address)
	if err != nil {
		return writeError(c, err)
	}

	return c.JSON(http.StatusOK, models.AirportsResponse{
		Address:  address,
		Airports: codes,
	})
}

func HealthHandler(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"status": "ok",
	})
}

func invalidRequest(c echo.Context, err error) error {
	msg := err.Error()
	var he *echo.HTTPError
	if errors.As(err, &he) {
		if s, ok := he.Message.(string); ok {
			msg = s
		}
	}
	return c.JSON(http.StatusBadRequest, models.ErrorResponse{
		Error:   "invalid_request",
		Message: "Failed to parse request body: " + msg,
		Code:    http.StatusBadRequest,
	})
}

// writeError maps domain errors to responses: bad input is 400, upstream failures 502,
// anything else 500.
func writeError(c echo.Context, err error) error {
	var (
		fieldErrs validation.FieldErrors
		ruleErr   models.ValidationError
		upstream  *providers.ProviderError
	)

	switch {
	case errors.As(err, &fieldErrs):
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "validation_error",
			Message: "Request failed validation",
			Code:    http.StatusBadRequest,
			Details: fieldErrs,
		})

	case errors.As(err, &ruleErr):
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "validation_error",
			Message: ruleErr.Error(),
			Code:    http.StatusBadRequest,
		})

	case errors.As(err, &upstream):
		logger.L().Error().Err(err).
			Str("provider", upstream.Provider).
			Str("request_id", requestID(c)).
			Msg("upstream_failed")
		return c.JSON(http.StatusBadGateway, models.ErrorResponse{
			Error:   "upstream_error",
			Message: err.Error(),
			Code:    http.StatusBadGateway,
		})

	default:
		logger.L().Error().Err(err).Str("request_id", requestID(c)).Msg("request_failed")
		return c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "internal_error",
			Message: "Failed to build chart",
			Code:    http.StatusInternalServerError,
		})
	}
}

func requestID(c echo.Context) string {
	return c.Response().Header().Get(echo.HeaderXRequestID)
}
