package handler // handler defines http handlers

import (
	"errors"   // errors provides sentinel values used in getUserID
	"net/http" // net/http provides status codes
	"strconv"  // strconv converts strings to numeric types

	"github.com/labstack/echo/v4" // echo defines request context types

	"github.com/natourcam/tourism-api/internal/lifecycle" // lifecycle error taxonomy
)

// getUserID extracts the user_id from echo.Context and converts it to uint64
func getUserID(c echo.Context) (uint64, error) {
	v := c.Get("user_id")
	switch t := v.(type) {
	case uint64:
		return t, nil
	case int:
		return uint64(t), nil
	case int64:
		return uint64(t), nil
	case float64:
		return uint64(t), nil
	case string:
		if n, err := strconv.ParseUint(t, 10, 64); err == nil {
			return n, nil
		}
	}
	return 0, errors.New("invalid user_id in context")
}

// lifecycleError translates an engine failure into the HTTP response.
// Kinds map to status codes; the stable code travels alongside the
// message so clients can branch without parsing text.  Anything that is
// not a typed engine error is reported as a plain 500.
func lifecycleError(c echo.Context, err error) error {
	le, ok := lifecycle.AsError(err)
	if !ok {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
	}
	status := http.StatusInternalServerError
	switch le.Kind {
	case lifecycle.KindValidation:
		status = http.StatusBadRequest
	case lifecycle.KindNotFound:
		status = http.StatusNotFound
	case lifecycle.KindCapacity, lifecycle.KindState, lifecycle.KindConflict:
		status = http.StatusConflict
	}
	return c.JSON(status, echo.Map{"error": le.Message, "code": le.Code})
}
