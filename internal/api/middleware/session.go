package middleware

import (
	"crypto/rand"
	"encoding/hex"
	"net/http"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
)

const (
	// SessionCookie is the cookie carrying the signed session handle.
	SessionCookie = "cq_session"
	// ContextKey is where the verified handle is stored on the echo context.
	ContextKey = "session_handle"
)

// Session guarantees every request carries a session handle. The handle is an
// opaque random id wrapped in an HS256-signed cookie, so a client cannot mint
// or alter one. A missing or tampered cookie is silently replaced with a
// fresh anonymous handle rather than rejected — an unbound session is a
// normal state for new visitors.
func Session(secret string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			handle := ""
			if cookie, err := c.Cookie(SessionCookie); err == nil {
				handle = verifyHandle(cookie.Value, secret)
			}

			if handle == "" {
				var err error
				handle, err = newHandle()
				if err != nil {
					return echo.NewHTTPError(http.StatusInternalServerError, "could not issue session")
				}
				signed, err := signHandle(handle, secret)
				if err != nil {
					return echo.NewHTTPError(http.StatusInternalServerError, "could not issue session")
				}
				c.SetCookie(&http.Cookie{
					Name:     SessionCookie,
					Value:    signed,
					Path:     "/",
					HttpOnly: true,
					SameSite: http.SameSiteLaxMode,
				})
			}

			c.Set(ContextKey, handle)
			return next(c)
		}
	}
}

func newHandle() (string, error) {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

func signHandle(handle, secret string) (string, error) {
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"sid": handle})
	return t.SignedString([]byte(secret))
}

// verifyHandle returns the embedded handle, or "" when the cookie value is
// not a valid token signed with secret.
func verifyHandle(value, secret string) string {
	claims := jwt.MapClaims{}
	tkn, err := jwt.ParseWithClaims(value, claims, func(token *jwt.Token) (interface{}, error) {
		if token.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, jwt.ErrTokenSignatureInvalid
		}
		return []byte(secret), nil
	})
	if err != nil || !tkn.Valid {
		return ""
	}
	sid, _ := claims["sid"].(string)
	return sid
}
