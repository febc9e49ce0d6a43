package handler

import (
	"net/http" // HTTP status codes
	"strconv"  // parsing path parameters
	"strings"  // trimming request fields
	"time"     // formatting dates in responses

	"github.com/google/uuid"      // fallback transaction references
	"github.com/labstack/echo/v4" // Echo web framework

	"github.com/natourcam/tourism-api/internal/lifecycle"  // booking lifecycle engine
	"github.com/natourcam/tourism-api/internal/model"      // domain types
	"github.com/natourcam/tourism-api/internal/repository" // repository layer
)

// BookingHandler serves the tourist-facing booking endpoints.  All
// state transitions go through the lifecycle engine; the repositories
// are used only for reads.  JWT authentication and role validation are
// assumed to have been performed by middleware.
type BookingHandler struct {
	Engine   *lifecycle.Engine
	Bookings *repository.BookingRepo
	Payments *repository.PaymentRepo
}

// NewBookingHandler constructs a BookingHandler.  All dependencies must
// be non-nil.
func NewBookingHandler(engine *lifecycle.Engine, bookings *repository.BookingRepo, payments *repository.PaymentRepo) *BookingHandler {
	if engine == nil || bookings == nil || payments == nil {
		panic("nil dependency passed to NewBookingHandler")
	}
	return &BookingHandler{Engine: engine, Bookings: bookings, Payments: payments}
}

// ----- DTOs -----

type participantReq struct {
	FirstName      string `json:"first_name"`
	LastName       string `json:"last_name"`
	DateOfBirth    string `json:"date_of_birth"` // YYYY-MM-DD
	PassportNumber string `json:"passport_number"`
	Nationality    string `json:"nationality"`
}

type createBookingReq struct {
	AvailabilityID   uint64           `json:"availability_id"`
	Participants     uint32           `json:"participants"`
	TotalAmountCents int64            `json:"total_amount_cents"`
	Currency         string           `json:"currency"`
	Details          []participantReq `json:"participant_details"`
	SpecialRequests  string           `json:"special_requests"`
	EmergencyName    string           `json:"emergency_contact_name"`
	EmergencyPhone   string           `json:"emergency_contact_phone"`
}

type payBookingReq struct {
	Method         string `json:"method"`
	TransactionRef string `json:"transaction_ref"`
	AmountCents    int64  `json:"amount_cents"`
	Currency       string `json:"currency"`
}

type bookingResp struct {
	ID               uint64     `json:"id"`
	TourID           uint64     `json:"tour_id"`
	AvailabilityID   uint64     `json:"availability_id"`
	Status           string     `json:"status"`
	Participants     uint32     `json:"participants"`
	TotalAmountCents int64      `json:"total_amount_cents"`
	Currency         string     `json:"currency"`
	SpecialRequests  string     `json:"special_requests,omitempty"`
	ConfirmationDate *time.Time `json:"confirmation_date,omitempty"`
	CancellationDate *time.Time `json:"cancellation_date,omitempty"`
	CompletedDate    *time.Time `json:"completed_date,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`
}

type bookingDetailResp struct {
	bookingResp
	TourTitle string `json:"tour_title"`
	TourDate  string `json:"tour_date"`
}

type paymentResp struct {
	ID             uint64 `json:"id"`
	BookingID      uint64 `json:"booking_id"`
	AmountCents    int64  `json:"amount_cents"`
	Currency       string `json:"currency"`
	Method         string `json:"method"`
	TransactionRef string `json:"transaction_ref"`
	Status         string `json:"status"`
}

type participantResp struct {
	FirstName      string `json:"first_name"`
	LastName       string `json:"last_name"`
	DateOfBirth    string `json:"date_of_birth"`
	PassportNumber string `json:"passport_number,omitempty"`
	Nationality    string `json:"nationality,omitempty"`
}

func toParticipantResps(ps []model.BookingParticipant) []participantResp {
	out := make([]participantResp, 0, len(ps))
	for i := range ps {
		out = append(out, participantResp{
			FirstName:      ps[i].FirstName,
			LastName:       ps[i].LastName,
			DateOfBirth:    ps[i].DateOfBirth.Format("2006-01-02"),
			PassportNumber: ps[i].PassportNumber,
			Nationality:    ps[i].Nationality,
		})
	}
	return out
}

func toBookingResp(b *model.Booking) bookingResp {
	return bookingResp{
		ID:               b.ID,
		TourID:           b.TourID,
		AvailabilityID:   b.AvailabilityID,
		Status:           b.Status,
		Participants:     b.Participants,
		TotalAmountCents: b.TotalPriceCents,
		Currency:         b.Currency,
		SpecialRequests:  b.SpecialRequests,
		ConfirmationDate: b.ConfirmationDate,
		CancellationDate: b.CancellationDate,
		CompletedDate:    b.CompletedDate,
		CreatedAt:        b.CreatedAt,
	}
}

func toPaymentResp(p *model.Payment) paymentResp {
	return paymentResp{
		ID:             p.ID,
		BookingID:      p.BookingID,
		AmountCents:    p.AmountCents,
		Currency:       p.Currency,
		Method:         p.Method,
		TransactionRef: p.TransactionRef,
		Status:         p.Status,
	}
}

// Create handles POST /v1/bookings.  The client sends the availability,
// the participant count and the total it expects to pay; the engine
// verifies the total against the tour's current price and reserves
// capacity atomically.  Returns 201 with the PENDING booking.
func (h *BookingHandler) Create(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var req createBookingReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if req.AvailabilityID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "availability_id is required"})
	}

	details := make([]model.BookingParticipant, 0, len(req.Details))
	for _, d := range req.Details {
		dob, err := time.Parse("2006-01-02", d.DateOfBirth)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid date_of_birth, expected YYYY-MM-DD"})
		}
		details = append(details, model.BookingParticipant{
			FirstName:      strings.TrimSpace(d.FirstName),
			LastName:       strings.TrimSpace(d.LastName),
			DateOfBirth:    dob,
			PassportNumber: strings.TrimSpace(d.PassportNumber),
			Nationality:    strings.TrimSpace(d.Nationality),
		})
	}

	booking, err := h.Engine.Create(c.Request().Context(), lifecycle.CreateRequest{
		UserID:         userID,
		AvailabilityID: req.AvailabilityID,
		Participants:   req.Participants,
		TotalPrice: model.Money{
			AmountCents: req.TotalAmountCents,
			Currency:    strings.ToUpper(strings.TrimSpace(req.Currency)),
		},
		Details:         details,
		SpecialRequests: req.SpecialRequests,
		EmergencyName:   req.EmergencyName,
		EmergencyPhone:  req.EmergencyPhone,
	})
	if err != nil {
		return lifecycleError(c, err)
	}
	return c.JSON(http.StatusCreated, toBookingResp(booking))
}

// ListMine handles GET /v1/my-bookings.  It returns all bookings of the
// current user with tour title and date.  An empty list is a valid
// response, not an error.
func (h *BookingHandler) ListMine(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	details, err := h.Bookings.ListByUser(c.Request().Context(), userID)
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

// Get handles GET /v1/bookings/:id.  Only the booking's owner may read
// it; other users get 404 rather than 403 so booking IDs are not
// probeable.
func (h *BookingHandler) Get(c echo.Context) error {
	userID, err := getUserID(c)
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
	if b.UserID != userID {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "booking not found"})
	}
	resp := echo.Map{"item": toBookingResp(b)}
	if p, err := h.Payments.GetByBookingID(ctx, id); err == nil {
		resp["payment"] = toPaymentResp(p)
	}
	if parts, err := h.Bookings.ParticipantsByBooking(ctx, id); err == nil && len(parts) > 0 {
		resp["participant_details"] = toParticipantResps(parts)
	}
	return c.JSON(http.StatusOK, resp)
}

// Cancel handles DELETE /v1/bookings/:id.  The engine releases the
// capacity and refunds a completed payment in the same transaction.
func (h *BookingHandler) Cancel(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid booking id"})
	}
	b, err := h.Bookings.GetByID(c.Request().Context(), id)
	if err != nil {
		if err == repository.ErrBookingNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "booking not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load booking"})
	}
	if b.UserID != userID {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "booking not found"})
	}

	cancelled, err := h.Engine.Cancel(c.Request().Context(), id, userID)
	if err != nil {
		return lifecycleError(c, err)
	}
	return c.JSON(http.StatusOK, toBookingResp(cancelled))
}

// Pay handles POST /v1/bookings/:id/payment.  It records a settled
// payment against a PENDING booking and confirms the booking.  When the
// client supplies no transaction_ref (test gateways, manual payments) a
// UUID is generated so the uniqueness invariant on references still
// holds.
func (h *BookingHandler) Pay(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid booking id"})
	}
	var req payBookingReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}

	b, err := h.Bookings.GetByID(c.Request().Context(), id)
	if err != nil {
		if err == repository.ErrBookingNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "booking not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load booking"})
	}
	if b.UserID != userID {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "booking not found"})
	}

	ref := strings.TrimSpace(req.TransactionRef)
	if ref == "" {
		ref = uuid.NewString()
	}
	amount := model.Money{
		AmountCents: req.AmountCents,
		Currency:    strings.ToUpper(strings.TrimSpace(req.Currency)),
	}
	payment, err := h.Engine.RecordPayment(c.Request().Context(), id, strings.ToUpper(strings.TrimSpace(req.Method)), ref, amount)
	if err != nil {
		return lifecycleError(c, err)
	}
	return c.JSON(http.StatusCreated, toPaymentResp(payment))
}
