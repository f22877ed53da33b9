package utils

import (
	"strconv"

	"github.com/labstack/echo/v4"
)

// QueryInt reads an integer query parameter, falling back to def on
// absence or parse failure.
func QueryInt(c echo.Context, name string, def int) int {
	if raw := c.QueryParam(name); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil && v > 0 {
			return v
		}
	}
	return def
}

// QueryInt64 reads an int64 query parameter (epoch-millis timestamps).
func QueryInt64(c echo.Context, name string, def int64) int64 {
	if raw := c.QueryParam(name); raw != "" {
		if v, err := strconv.ParseInt(raw, 10, 64); err == nil && v > 0 {
			return v
		}
	}
	return def
}
