package middleware

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/stadium-tickets/internal/model"
	"github.com/iliyamo/stadium-tickets/internal/utils"
)

const identityKey = "identity"

// JWTAuth validates the access token and stores the caller's
// model.Identity in the echo context.  The token is taken from a Bearer
// Authorization header, falling back to the session cookie named
// cookieName (empty disables the fallback).
func JWTAuth(secret, cookieName string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			raw := bearerToken(c.Request())
			if raw == "" && cookieName != "" {
				if ck, err := c.Cookie(cookieName); err == nil {
					raw = ck.Value
				}
			}
			if raw == "" {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing bearer token"})
			}

			id, role, err := utils.ParseAccessToken(secret, raw)
			if err != nil {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid token"})
			}
			c.Set(identityKey, model.Identity{UserID: id, Role: role})
			return next(c)
		}
	}
}

func bearerToken(r *http.Request) string {
	auth := r.Header.Get("Authorization")
	if !strings.HasPrefix(auth, "Bearer ") {
		return ""
	}
	return strings.TrimSpace(strings.TrimPrefix(auth, "Bearer "))
}

// IdentityFrom returns the identity stored by JWTAuth.
func IdentityFrom(c echo.Context) (model.Identity, bool) {
	id, ok := c.Get(identityKey).(model.Identity)
	return id, ok && id.UserID != 0
}
