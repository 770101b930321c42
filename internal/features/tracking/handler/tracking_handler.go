package handler

import (
	"errors"

	"gel-tracker/internal/core/server"
	"gel-tracker/internal/features/tracking/domain"
	"gel-tracker/internal/features/tracking/ports"

	"github.com/gofiber/fiber/v2"
)

// TrackingHandler handles HTTP requests for tracking code lookups.
type TrackingHandler struct {
	scraper ports.Scraper
}

// NewTrackingHandler creates a new TrackingHandler.
func NewTrackingHandler(scraper ports.Scraper) *TrackingHandler {
	return &TrackingHandler{
		scraper: scraper,
	}
}

// ErrorResponse is the failure body of every lookup route.
type ErrorResponse struct {
	OK bool `json:"ok"`
	// Error is the error description.
	Error string `json:"error"`
	// Kind is the failure category, e.g. RESULT_TIMEOUT.
	Kind string `json:"kind,omitempty"`
	// RayID is the unique request identifier for tracing.
	RayID string `json:"ray_id,omitempty"`
}

// Lookup godoc
// @Summary Look up an unidentified package
// @Description Searches the carrier's unidentified-packages page for a tracking code and returns the bag code and received date when listed.
// @Tags tracking
// @Produce json
// @Param tracking query string true "Tracking code"
// @Success 200 {object} domain.ScrapeResult
// @Failure 400 {object} ErrorResponse
// @Failure 502 {object} ErrorResponse
// @Failure 503 {object} ErrorResponse
// @Failure 504 {object} ErrorResponse
// @Router /api/gel [get]
func (h *TrackingHandler) Lookup(c *fiber.Ctx) error {
	return h.respond(c, c.Query("tracking"))
}

// GetTracking godoc
// @Summary Look up an unidentified package by path
// @Description Same as /api/gel with the tracking code in the path.
// @Tags tracking
// @Produce json
// @Param code path string true "Tracking code"
// @Success 200 {object} domain.ScrapeResult
// @Failure 400 {object} ErrorResponse
// @Failure 502 {object} ErrorResponse
// @Failure 503 {object} ErrorResponse
// @Failure 504 {object} ErrorResponse
// @Router /tracking/{code} [get]
func (h *TrackingHandler) GetTracking(c *fiber.Ctx) error {
	return h.respond(c, c.Params("code"))
}

func (h *TrackingHandler) respond(c *fiber.Ctx, raw string) error {
	req, err := domain.NewScrapeRequest(raw)
	if err != nil {
		return h.fail(c, err)
	}

	result, err := h.scraper.RunScrape(c.UserContext(), req)
	if err != nil {
		return h.fail(c, err)
	}

	return c.JSON(result)
}

func (h *TrackingHandler) fail(c *fiber.Ctx, err error) error {
	resp := ErrorResponse{
		Error: err.Error(),
		RayID: server.RayID(c),
	}

	var se *domain.ScrapeError
	if errors.As(err, &se) {
		resp.Kind = string(se.Kind)
	}

	return c.Status(statusFor(err)).JSON(resp)
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrInputInvalid):
		return fiber.StatusBadRequest
	case errors.Is(err, domain.ErrBrowserUnavailable):
		return fiber.StatusServiceUnavailable
	case errors.Is(err, domain.ErrNavigationFailed):
		return fiber.StatusBadGateway
	case errors.Is(err, domain.ErrLocatorTimeout), errors.Is(err, domain.ErrResultTimeout):
		return fiber.StatusGatewayTimeout
	default:
		return fiber.StatusInternalServerError
	}
}
