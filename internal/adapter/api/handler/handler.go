package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"rentora/internal/domain/entity"
)

// currentUser extracts the authenticated user placed in the context by
// the auth middleware.
func currentUser(c echo.Context) (*entity.User, error) {
	user, ok := c.Get("user").(*entity.User)
	if !ok || user == nil {
		return nil, echo.NewHTTPError(http.StatusUnauthorized, "Invalid session")
	}
	return user, nil
}
