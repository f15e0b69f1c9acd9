package middleware // middleware holds the echo middleware shared by the routes

import (
    "net/http"
    "strings"

    "github.com/golang-jwt/jwt/v5"
    "github.com/labstack/echo/v4"
)

// Context keys set by JWTAuth.
const (
    ContextSubject = "subject"
    ContextRole    = "role"
)

// JWTAuth validates an HS256 Bearer token issued by the identity provider
// and stores its "sub" and "role" claims in the request context.  The
// booking core does not issue tokens itself.
func JWTAuth(secret string) echo.MiddlewareFunc {
    parser := jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
    keyFunc := func(*jwt.Token) (interface{}, error) { return []byte(secret), nil }

    return func(next echo.HandlerFunc) echo.HandlerFunc {
        return func(c echo.Context) error {
            auth := c.Request().Header.Get("Authorization")
            if !strings.HasPrefix(auth, "Bearer ") {
                return c.JSON(http.StatusUnauthorized, echo.Map{"error": "missing bearer token"})
            }
            raw := strings.TrimPrefix(auth, "Bearer ")

            claims := jwt.MapClaims{}
            tok, err := parser.ParseWithClaims(raw, claims, keyFunc)
            if err != nil || !tok.Valid {
                return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid token"})
            }

            if sub, err := claims.GetSubject(); err == nil && sub != "" {
                c.Set(ContextSubject, sub)
            }
            if role, ok := claims["role"].(string); ok {
                c.Set(ContextRole, role)
            }
            return next(c)
        }
    }
}

// subject returns the authenticated subject or "anon".
func subject(c echo.Context) string {
    if s, ok := c.Get(ContextSubject).(string); ok && s != "" {
        return s
    }
    return "anon"
}
