package middleware

import (
	"strconv"

	"github.com/labstack/echo/v4"
)

// userKey identifies the caller in rate limit and cache keys.  Requests
// that did not pass JWTAuth count as "anon".
func userKey(c echo.Context) string {
	if id, ok := IdentityFrom(c); ok {
		return strconv.FormatUint(id.UserID, 10)
	}
	return "anon"
}
