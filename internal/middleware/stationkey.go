package middleware

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/qrgate/checkin-gateway/internal/repository"
)

// StationKey returns a middleware that authenticates scanner devices on
// the scan endpoint.  Devices send their station name in X-Station and
// their provisioning key in X-Station-Key; the key is compared against
// the bcrypt hash stored for the station.  The verified station name is
// placed in the context under "station".
func StationKey(repo *repository.StationRepo) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			name := c.Request().Header.Get("X-Station")
			key := c.Request().Header.Get("X-Station-Key")
			if name == "" || key == "" {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing station credentials"})
			}
			st, err := repo.VerifyKey(c.Request().Context(), name, key)
			if err != nil {
				if errors.Is(err, repository.ErrStationNotFound) || errors.Is(err, repository.ErrBadStationKey) {
					return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid station credentials"})
				}
				return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
			}
			c.Set("station", st.Name)
			return next(c)
		}
	}
}
