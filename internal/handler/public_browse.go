// Package handler exposes HTTP handlers for both authenticated and public endpoints.
// This file defines handlers for the public browsing API.  These routes allow
// unauthenticated users to browse active tours and their published availability
// without requiring authentication.  Sensitive fields (operator IDs, audit
// timestamps) are filtered from responses.

package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/natourcam/tourism-api/internal/model"
	"github.com/natourcam/tourism-api/internal/repository"
)

// PublicHandler aggregates repositories needed for unauthenticated browsing.
// It produces sanitized responses suitable for public consumption.
type PublicHandler struct {
	Tours          *repository.TourRepo
	Availabilities *repository.AvailabilityRepo
}

// PublicTour represents a tour in public list responses.  It contains
// only safe fields.
type PublicTour struct {
	ID           uint64 `json:"id"`
	Title        string `json:"title"`
	DurationDays uint32 `json:"duration_days"`
	Difficulty   string `json:"difficulty_level"`
	PriceCents   int64  `json:"price_cents"`
	Currency     string `json:"currency"`
	StartDate    string `json:"start_date"`
	EndDate      string `json:"end_date"`
}

// PublicTourDetail represents a detailed tour response.
type PublicTourDetail struct {
	PublicTour
	Description     string `json:"description,omitempty"`
	MaxParticipants uint32 `json:"max_participants"`
	StartLocation   string `json:"start_location,omitempty"`
	EndLocation     string `json:"end_location,omitempty"`
	Includes        string `json:"includes,omitempty"`
	Excludes        string `json:"excludes,omitempty"`
}

// PublicAvailability represents one bookable date with its remaining
// capacity.  Reserved counts are not broken down further.
type PublicAvailability struct {
	ID             uint64 `json:"id"`
	Date           string `json:"date"`
	SpotsTotal     uint32 `json:"spots_total"`
	SpotsRemaining uint32 `json:"spots_remaining"`
	IsEnabled      bool   `json:"is_enabled"`
}

func toPublicTour(t *model.Tour) PublicTour {
	return PublicTour{
		ID:           t.ID,
		Title:        t.Title,
		DurationDays: t.DurationDays,
		Difficulty:   t.Difficulty,
		PriceCents:   t.PriceCents,
		Currency:     t.Currency,
		StartDate:    t.StartDate.Format("2006-01-02"),
		EndDate:      t.EndDate.Format("2006-01-02"),
	}
}

// GetPublicTours returns all active tours.  Response JSON contains an
// "items" array of PublicTour.
func (h *PublicHandler) GetPublicTours(c echo.Context) error {
	tours, err := h.Tours.ListActive(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	out := make([]PublicTour, 0, len(tours))
	for i := range tours {
		out = append(out, toPublicTour(&tours[i]))
	}
	return c.JSON(http.StatusOK, echo.Map{"items": out})
}

// GetPublicTour returns details of a single active tour.
func (h *PublicHandler) GetPublicTour(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	t, err := h.Tours.GetByID(c.Request().Context(), id)
	if err != nil {
		if err == repository.ErrTourNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "tour not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	if !t.IsActive {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "tour not found"})
	}
	return c.JSON(http.StatusOK, PublicTourDetail{
		PublicTour:      toPublicTour(t),
		Description:     t.Description,
		MaxParticipants: t.MaxParticipants,
		StartLocation:   t.StartLocation,
		EndLocation:     t.EndLocation,
		Includes:        t.Includes,
		Excludes:        t.Excludes,
	})
}

// GetPublicAvailability lists the published dates of a tour with
// remaining capacity.  It ensures the tour exists and is active first.
func (h *PublicHandler) GetPublicAvailability(c echo.Context) error {
	ctx := c.Request().Context()
	tourID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	t, err := h.Tours.GetByID(ctx, tourID)
	if err != nil {
		if err == repository.ErrTourNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "tour not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	if !t.IsActive {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "tour not found"})
	}
	rows, err := h.Availabilities.ListByTour(ctx, tourID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	out := make([]PublicAvailability, 0, len(rows))
	for _, a := range rows {
		out = append(out, PublicAvailability{
			ID:             a.ID,
			Date:           a.Date.Format("2006-01-02"),
			SpotsTotal:     a.SpotsTotal,
			SpotsRemaining: a.Remaining(),
			IsEnabled:      a.IsEnabled,
		})
	}
	return c.JSON(http.StatusOK, echo.Map{"items": out})
}
