package handler

import (
	"net/http" // HTTP status codes
	"strconv"  // parsing path parameters

	"github.com/labstack/echo/v4" // Echo web framework

	"github.com/natourcam/tourism-api/internal/lifecycle"  // booking lifecycle engine
	"github.com/natourcam/tourism-api/internal/repository" // repository layer
)

// OperatorBookingHandler serves the operator-facing booking endpoints:
// reading a tour's manifest and marking bookings completed after the
// tour has run.
type OperatorBookingHandler struct {
	Engine   *lifecycle.Engine
	Tours    *repository.TourRepo
	Bookings *repository.BookingRepo
}

// NewOperatorBookingHandler constructs an OperatorBookingHandler and
// panics if any dependency is nil.
func NewOperatorBookingHandler(engine *lifecycle.Engine, tours *repository.TourRepo, bookings *repository.BookingRepo) *OperatorBookingHandler {
	if engine == nil || tours == nil || bookings == nil {
		panic("nil dependency passed to NewOperatorBookingHandler")
	}
	return &OperatorBookingHandler{Engine: engine, Tours: tours, Bookings: bookings}
}

// ListTourBookings handles GET /v1/operator/tours/:id/bookings.  The
// ownership check lives in the repository join, so a foreign tour ID
// simply yields an empty manifest; the handler distinguishes that from
// a missing tour up front.
func (h *OperatorBookingHandler) ListTourBookings(c echo.Context) error {
	operatorID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	tourID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || tourID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid tour id"})
	}
	ctx := c.Request().Context()
	tour, err := h.Tours.GetByID(ctx, tourID)
	if err != nil {
		if err == repository.ErrTourNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "tour not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load tour"})
	}
	if tour.OperatorID != operatorID {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	}

	details, err := h.Bookings.ListByTourForOperator(ctx, tourID, operatorID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load bookings"})
	}
	out := make([]bookingDetailResp, 0, len(details))
	for i := range details {
		out = append(out, bookingDetailResp{
			bookingResp: toBookingResp(&details[i].Booking),
			TourTitle:   details[i].TourTitle,
			TourDate:    details[i].TourDate.Format("2006-01-02"),
		})
	}
	return c.JSON(http.StatusOK, echo.Map{"items": out})
}

// CompleteBooking handles POST /v1/operator/bookings/:id/complete.  A
// CONFIRMED booking whose tour date has passed moves to COMPLETED;
// ?force=true lets the operator complete early (tour ran ahead of
// schedule, manual correction).
func (h *OperatorBookingHandler) CompleteBooking(c echo.Context) error {
	operatorID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid booking id"})
	}

	ctx := c.Request().Context()
	b, err := h.Bookings.GetByID(ctx, id)
	if err != nil {
		if err == repository.ErrBookingNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "booking not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load booking"})
	}
	tour, err := h.Tours.GetByID(ctx, b.TourID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load tour"})
	}
	if tour.OperatorID != operatorID {
		return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
	}

	force := c.QueryParam("force") == "true"
	completed, err := h.Engine.Complete(ctx, id, force)
	if err != nil {
		return lifecycleError(c, err)
	}
	return c.JSON(http.StatusOK, toBookingResp(completed))
}
