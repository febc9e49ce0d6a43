package router // router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4"

	"github.com/natourcam/tourism-api/internal/handler"    // operator handlers
	"github.com/natourcam/tourism-api/internal/middleware" // JWT + role middlewares
	"github.com/natourcam/tourism-api/internal/model"      // role constants
)

// RegisterOperator registers OPERATOR-scoped endpoints under /v1/operator.
// All routes require a valid JWT and OPERATOR role.
func RegisterOperator(e *echo.Echo, o *handler.OperatorHandler, ob *handler.OperatorBookingHandler, jwtSecret string) {
	// Attach middlewares at group construction time for clarity.
	g := e.Group(
		"/v1/operator",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole(model.RoleOperator),
	)

	// ---- Tour catalog ----
	g.POST("/tours", o.CreateTour)
	g.GET("/tours", o.ListMyTours)
	g.PUT("/tours/:id", o.UpdateTour)
	g.PATCH("/tours/:id", o.UpdateTour) // allow partial/semantic updates via PATCH as well
	g.DELETE("/tours/:id", o.DeactivateTour)

	// ---- Availability ----
	g.POST("/tours/:id/availability", o.PublishAvailability)
	g.PATCH("/availability/:id", o.SetAvailabilityEnabled)

	// ---- Bookings ----
	// NOTE: Listing availability is provided by the public API
	// (GET /v1/tours/:id/availability); operator-scoped listing was
	// removed to avoid route duplication.
	g.GET("/tours/:id/bookings", ob.ListTourBookings)
	g.POST("/bookings/:id/complete", ob.CompleteBooking)
}
