package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4" // import the Echo web framework to handle routing

	"github.com/natourcam/tourism-api/internal/handler"    // import the handlers that implement business logic
	"github.com/natourcam/tourism-api/internal/middleware" // import middleware for JWT authentication and role enforcement
	"github.com/natourcam/tourism-api/internal/model"      // role constants
)

// RegisterRoutes registers routes that do not require authentication on the
// provided Echo instance.  Currently it exposes only a health check.
func RegisterRoutes(e *echo.Echo) {
	// Load balancers and monitoring systems use this endpoint to verify
	// that the service is up and running.
	e.GET("/healthz", handler.Health)
}

// RegisterAuth registers all authentication‑related routes and applies the
// necessary middleware.  Unauthenticated operations live under /v1/auth,
// while protected endpoints live under /v1.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, jwtSecret string) {
	// Register, login and token exchange do not require an existing
	// session.
	g := e.Group("/v1/auth")
	g.POST("/register", a.Register)
	g.POST("/login", a.Login)
	// Refresh rotates the refresh token; refresh-access issues a new
	// access token without rotation.
	g.POST("/refresh", a.Refresh)
	g.POST("/refresh-access", a.RefreshAccess)
	// Logout accepts a refresh_token in the body or a bearer token in
	// the header; it does not require the JWT middleware.
	g.POST("/logout", a.Logout)

	// Protected endpoints live under /v1 and accept both roles.
	auth := e.Group("/v1")
	auth.Use(middleware.JWTAuth(jwtSecret))
	auth.Use(middleware.RequireRole(model.RoleOperator, model.RoleTourist))
	auth.GET("/me", a.Me)

	// Clients can call either /v1/auth/logout or /v1/logout with a valid
	// refresh token in the body to terminate a session.
	e.POST("/v1/logout", a.Logout)
}

// RegisterPublic registers unauthenticated browse endpoints on the provided
// Echo instance.  The PublicHandler returns sanitized data for tours and
// their published availability; these routes apply no JWT or role
// middleware and are intended for guest users.
func RegisterPublic(e *echo.Echo, p *handler.PublicHandler) {
	// Expose the list of active tours
	e.GET("/v1/tours", p.GetPublicTours)
	// Tour details by tour id
	e.GET("/v1/tours/:id", p.GetPublicTour)
	// Published dates of a tour with remaining capacity, so that guests
	// can check availability before registering
	e.GET("/v1/tours/:id/availability", p.GetPublicAvailability)
}
