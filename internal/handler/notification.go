package handler

import (
	"net/http" // HTTP status codes
	"strconv"  // parsing path parameters
	"time"     // read-at timestamps

	"github.com/labstack/echo/v4" // Echo web framework

	"github.com/natourcam/tourism-api/internal/model"      // domain types
	"github.com/natourcam/tourism-api/internal/repository" // repository layer
)

// NotificationHandler serves a user's notification feed.  Notifications
// are written by the background consumer of booking events; this
// handler only reads and acknowledges them.
type NotificationHandler struct {
	Notifications *repository.NotificationRepo
}

// NewNotificationHandler constructs a NotificationHandler.
func NewNotificationHandler(n *repository.NotificationRepo) *NotificationHandler {
	if n == nil {
		panic("nil repository passed to NewNotificationHandler")
	}
	return &NotificationHandler{Notifications: n}
}

type notificationResp struct {
	ID        uint64     `json:"id"`
	Title     string     `json:"title"`
	Message   string     `json:"message"`
	Type      string     `json:"type"`
	BookingID *uint64    `json:"booking_id,omitempty"`
	IsRead    bool       `json:"is_read"`
	ReadAt    *time.Time `json:"read_at,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
}

func toNotificationResp(n *model.Notification) notificationResp {
	return notificationResp{
		ID:        n.ID,
		Title:     n.Title,
		Message:   n.Message,
		Type:      n.Type,
		BookingID: n.BookingID,
		IsRead:    n.IsRead,
		ReadAt:    n.ReadAt,
		CreatedAt: n.CreatedAt,
	}
}

// List handles GET /v1/notifications.  Returns the current user's
// notifications, newest first.
func (h *NotificationHandler) List(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	items, err := h.Notifications.ListByRecipient(c.Request().Context(), userID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load notifications"})
	}
	out := make([]notificationResp, 0, len(items))
	for i := range items {
		out = append(out, toNotificationResp(&items[i]))
	}
	return c.JSON(http.StatusOK, echo.Map{"items": out})
}

// MarkRead handles POST /v1/notifications/:id/read.  Acknowledging an
// unknown or foreign notification yields 404.
func (h *NotificationHandler) MarkRead(c echo.Context) error {
	userID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid notification id"})
	}
	ok, err := h.Notifications.MarkRead(c.Request().Context(), id, userID, time.Now().UTC())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to mark read"})
	}
	if !ok {
		return c.JSON(http.StatusNotFound, echo.Map{"error": "notification not found"})
	}
	return c.NoContent(http.StatusNoContent)
}
