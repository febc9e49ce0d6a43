package handler

import (
	"net/http" // HTTP status codes
	"strconv"  // parsing path parameters
	"strings"  // trimming request fields
	"time"     // parsing date fields

	"github.com/labstack/echo/v4" // Echo web framework

	"github.com/natourcam/tourism-api/internal/model"      // domain types
	"github.com/natourcam/tourism-api/internal/repository" // repository layer
)

// OperatorHandler bundles the repositories operators use to manage
// their tour catalog and published availability.  Role validation
// (OPERATOR) is performed by middleware; ownership of individual rows
// is enforced per query in the repository layer.
type OperatorHandler struct {
	Tours          *repository.TourRepo
	Availabilities *repository.AvailabilityRepo
}

// NewOperatorHandler constructs an OperatorHandler and panics if any
// dependency is nil.
func NewOperatorHandler(tours *repository.TourRepo, avail *repository.AvailabilityRepo) *OperatorHandler {
	if tours == nil || avail == nil {
		panic("nil repository passed to NewOperatorHandler")
	}
	return &OperatorHandler{Tours: tours, Availabilities: avail}
}

// ----- DTOs -----

type tourReq struct {
	Title           string `json:"title"`
	Description     string `json:"description"`
	DurationDays    uint32 `json:"duration_days"`
	MaxParticipants uint32 `json:"max_participants"`
	Difficulty      string `json:"difficulty_level"`
	PriceCents      int64  `json:"price_cents"`
	Currency        string `json:"currency"`
	StartDate       string `json:"start_date"` // YYYY-MM-DD
	EndDate         string `json:"end_date"`   // YYYY-MM-DD
	StartLocation   string `json:"start_location"`
	EndLocation     string `json:"end_location"`
	Includes        string `json:"includes"`
	Excludes        string `json:"excludes"`
}

type tourResp struct {
	ID              uint64 `json:"id"`
	Title           string `json:"title"`
	Description     string `json:"description,omitempty"`
	DurationDays    uint32 `json:"duration_days"`
	MaxParticipants uint32 `json:"max_participants"`
	Difficulty      string `json:"difficulty_level"`
	PriceCents      int64  `json:"price_cents"`
	Currency        string `json:"currency"`
	StartDate       string `json:"start_date"`
	EndDate         string `json:"end_date"`
	StartLocation   string `json:"start_location,omitempty"`
	EndLocation     string `json:"end_location,omitempty"`
	Includes        string `json:"includes,omitempty"`
	Excludes        string `json:"excludes,omitempty"`
	IsActive        bool   `json:"is_active"`
}

type availabilityReq struct {
	Date       string `json:"date"` // YYYY-MM-DD
	SpotsTotal uint32 `json:"spots_total"`
}

type availabilityResp struct {
	ID             uint64 `json:"id"`
	TourID         uint64 `json:"tour_id"`
	Date           string `json:"date"`
	SpotsTotal     uint32 `json:"spots_total"`
	SpotsReserved  uint32 `json:"spots_reserved"`
	SpotsRemaining uint32 `json:"spots_remaining"`
	IsEnabled      bool   `json:"is_enabled"`
}

func toTourResp(t *model.Tour) tourResp {
	return tourResp{
		ID:              t.ID,
		Title:           t.Title,
		Description:     t.Description,
		DurationDays:    t.DurationDays,
		MaxParticipants: t.MaxParticipants,
		Difficulty:      t.Difficulty,
		PriceCents:      t.PriceCents,
		Currency:        t.Currency,
		StartDate:       t.StartDate.Format("2006-01-02"),
		EndDate:         t.EndDate.Format("2006-01-02"),
		StartLocation:   t.StartLocation,
		EndLocation:     t.EndLocation,
		Includes:        t.Includes,
		Excludes:        t.Excludes,
		IsActive:        t.IsActive,
	}
}

func toAvailabilityResp(a *model.TourAvailability) availabilityResp {
	return availabilityResp{
		ID:             a.ID,
		TourID:         a.TourID,
		Date:           a.Date.Format("2006-01-02"),
		SpotsTotal:     a.SpotsTotal,
		SpotsReserved:  a.SpotsReserved,
		SpotsRemaining: a.Remaining(),
		IsEnabled:      a.IsEnabled,
	}
}

// tourFromReq validates the request body and builds a Tour owned by the
// given operator.  Validation failures come back as user-facing
// messages; an empty message means the tour is valid.
func tourFromReq(req tourReq, operatorID uint64) (*model.Tour, string) {
	title := strings.TrimSpace(req.Title)
	if title == "" {
		return nil, "title is required"
	}
	if req.PriceCents <= 0 {
		return nil, "price_cents must be positive"
	}
	currency := strings.ToUpper(strings.TrimSpace(req.Currency))
	if len(currency) != 3 {
		return nil, "currency must be a 3-letter code"
	}
	if req.MaxParticipants == 0 {
		return nil, "max_participants must be positive"
	}
	start, err := time.Parse("2006-01-02", req.StartDate)
	if err != nil {
		return nil, "invalid start_date, expected YYYY-MM-DD"
	}
	end, err := time.Parse("2006-01-02", req.EndDate)
	if err != nil {
		return nil, "invalid end_date, expected YYYY-MM-DD"
	}
	if end.Before(start) {
		return nil, "end_date must not precede start_date"
	}
	difficulty := strings.ToUpper(strings.TrimSpace(req.Difficulty))
	switch difficulty {
	case model.DifficultyEasy, model.DifficultyModerate, model.DifficultyChallenging, model.DifficultyDifficult:
	case "":
		difficulty = model.DifficultyModerate
	default:
		return nil, "invalid difficulty_level"
	}
	return &model.Tour{
		OperatorID:      operatorID,
		Title:           title,
		Description:     req.Description,
		DurationDays:    req.DurationDays,
		MaxParticipants: req.MaxParticipants,
		Difficulty:      difficulty,
		PriceCents:      req.PriceCents,
		Currency:        currency,
		StartDate:       start,
		EndDate:         end,
		StartLocation:   strings.TrimSpace(req.StartLocation),
		EndLocation:     strings.TrimSpace(req.EndLocation),
		Includes:        req.Includes,
		Excludes:        req.Excludes,
		IsActive:        true,
	}, ""
}

// CreateTour handles POST /v1/operator/tours.
func (h *OperatorHandler) CreateTour(c echo.Context) error {
	operatorID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req tourReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	tour, msg := tourFromReq(req, operatorID)
	if msg != "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": msg})
	}
	if err := h.Tours.Create(c.Request().Context(), tour); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "create tour failed"})
	}
	return c.JSON(http.StatusCreated, toTourResp(tour))
}

// ListMyTours handles GET /v1/operator/tours.
func (h *OperatorHandler) ListMyTours(c echo.Context) error {
	operatorID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	tours, err := h.Tours.ListByOperator(c.Request().Context(), operatorID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load tours"})
	}
	out := make([]tourResp, 0, len(tours))
	for i := range tours {
		out = append(out, toTourResp(&tours[i]))
	}
	return c.JSON(http.StatusOK, echo.Map{"items": out})
}

// UpdateTour handles PUT /v1/operator/tours/:id.  Only the owning
// operator may update; price and date changes never touch existing
// bookings, whose totals were fixed at creation time.
func (h *OperatorHandler) UpdateTour(c echo.Context) error {
	operatorID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid tour id"})
	}
	var req tourReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	tour, msg := tourFromReq(req, operatorID)
	if msg != "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": msg})
	}
	tour.ID = id
	if err := h.Tours.UpdateByIDAndOperator(c.Request().Context(), tour, operatorID); err != nil {
		switch err {
		case repository.ErrTourNotFound:
			return c.JSON(http.StatusNotFound, echo.Map{"error": "tour not found"})
		case repository.ErrForbidden:
			return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update tour failed"})
	}
	return c.JSON(http.StatusOK, toTourResp(tour))
}

// DeactivateTour handles DELETE /v1/operator/tours/:id.  Tours are soft
// deleted: the row stays for booking history but stops appearing in
// public listings.
func (h *OperatorHandler) DeactivateTour(c echo.Context) error {
	operatorID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid tour id"})
	}
	if err := h.Tours.DeactivateByIDAndOperator(c.Request().Context(), id, operatorID); err != nil {
		switch err {
		case repository.ErrTourNotFound:
			return c.JSON(http.StatusNotFound, echo.Map{"error": "tour not found"})
		case repository.ErrForbidden:
			return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "deactivate tour failed"})
	}
	return c.NoContent(http.StatusNoContent)
}

// PublishAvailability handles POST /v1/operator/tours/:id/availability.
// The date must fall within the tour's valid range and each tour+date
// pair may be published once.
func (h *OperatorHandler) PublishAvailability(c echo.Context) error {
	operatorID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	tourID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || tourID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid tour id"})
	}
	var req availabilityReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	date, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid date, expected YYYY-MM-DD"})
	}
	if req.SpotsTotal == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "spots_total must be positive"})
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
	if !tour.DateInRange(date) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "date is outside the tour's valid range"})
	}
	if req.SpotsTotal > tour.MaxParticipants {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "spots_total exceeds max_participants"})
	}

	a := &model.TourAvailability{
		TourID:     tourID,
		Date:       date,
		SpotsTotal: req.SpotsTotal,
		IsEnabled:  true,
	}
	if err := h.Availabilities.Create(ctx, a); err != nil {
		if err == repository.ErrDuplicateDate {
			return c.JSON(http.StatusConflict, echo.Map{"error": "availability already published for this date"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "publish availability failed"})
	}
	return c.JSON(http.StatusCreated, toAvailabilityResp(a))
}

// SetAvailabilityEnabled handles PATCH /v1/operator/availability/:id.
// Disabling blocks new bookings without touching existing ones.
func (h *OperatorHandler) SetAvailabilityEnabled(c echo.Context) error {
	operatorID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid availability id"})
	}
	var req struct {
		IsEnabled *bool `json:"is_enabled"`
	}
	if err := c.Bind(&req); err != nil || req.IsEnabled == nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "is_enabled is required"})
	}
	if err := h.Availabilities.SetEnabledByOperator(c.Request().Context(), id, operatorID, *req.IsEnabled); err != nil {
		switch err {
		case repository.ErrAvailabilityNotFound:
			return c.JSON(http.StatusNotFound, echo.Map{"error": "availability not found"})
		case repository.ErrForbidden:
			return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update availability failed"})
	}
	return c.NoContent(http.StatusNoContent)
}
