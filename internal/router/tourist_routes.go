package router

import (
	"github.com/labstack/echo/v4"

	"github.com/natourcam/tourism-api/internal/handler"
	"github.com/natourcam/tourism-api/internal/middleware"
	"github.com/natourcam/tourism-api/internal/model"
)

// RegisterTourist registers tourist-scoped endpoints under /v1.  All
// routes require a valid JWT and the TOURIST role.  Tourists can create
// bookings against published availability, pay for them, cancel them
// and view their own bookings and notifications.
func RegisterTourist(e *echo.Echo, b *handler.BookingHandler, n *handler.NotificationHandler, jwtSecret string) {
	g := e.Group(
		"/v1",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole(model.RoleTourist),
	)
	// Note: GET /v1/tours, /v1/tours/:id and /v1/tours/:id/availability
	// are registered on the public router so that guests can browse
	// before registering.  Tourist-specific endpoints begin here.
	g.POST("/bookings", b.Create)
	g.GET("/my-bookings", b.ListMine)
	g.GET("/bookings/:id", b.Get)
	g.DELETE("/bookings/:id", b.Cancel)
	// Recording a payment confirms the booking in the same transaction.
	g.POST("/bookings/:id/payment", b.Pay)

	// Notification feed written by the background event consumer.
	g.GET("/notifications", n.List)
	g.POST("/notifications/:id/read", n.MarkRead)
}
