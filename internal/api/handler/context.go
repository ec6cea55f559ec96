package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/clickquest/clicker-system/internal/api/middleware"
)

// sessionHandle extracts the handle injected by the Session middleware. Its
// absence means the middleware did not run, which is a wiring bug, but the
// request is rejected rather than crashed.
func sessionHandle(c echo.Context) (string, error) {
	handle, _ := c.Get(middleware.ContextKey).(string)
	if handle == "" {
		return "", echo.NewHTTPError(http.StatusUnauthorized, "missing session")
	}
	return handle, nil
}
