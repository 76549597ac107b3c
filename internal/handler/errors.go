package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/DJaayy/slot-booking/internal/repository"
)

// writeStoreError translates repository sentinel errors into HTTP
// responses. Anything unrecognized becomes a 500 with a generic
// message; the detail goes to the log at the call site, not to the
// client.
func writeStoreError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, repository.ErrSlotNotFound),
		errors.Is(err, repository.ErrReleaseNotFound),
		errors.Is(err, repository.ErrTemplateNotFound),
		errors.Is(err, repository.ErrUserNotFound):
		return c.JSON(http.StatusNotFound, echo.Map{"error": err.Error()})
	case errors.Is(err, repository.ErrSlotBooked):
		return c.JSON(http.StatusConflict, echo.Map{"error": err.Error()})
	case errors.Is(err, repository.ErrInvalidArgument):
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	case errors.Is(err, repository.ErrForbidden):
		return c.JSON(http.StatusForbidden, echo.Map{"error": "default templates cannot be deleted"})
	case errors.Is(err, repository.ErrUsernameTaken):
		return c.JSON(http.StatusConflict, echo.Map{"error": err.Error()})
	default:
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error"})
	}
}
