package middleware

import (
	"net/http"
	"os"
	"strings"

	firebaseauth "firebase.google.com/go/v4/auth"
	"github.com/buzztalks/backend/internal/models"
	"github.com/golang-jwt/jwt/v4"
	"github.com/labstack/echo/v4"
)

// ProfileIDKey is the echo context key under which the authenticated user's
// profile ID is stored.
const ProfileIDKey = "profileID"

// AuthMiddleware accepts either a first-party JWT session token or a
// Firebase ID token in the Authorization header. On success the caller's
// profile ID is stored in the context; the Firebase UID doubles as the
// profile ID for Firebase-authenticated users.
func AuthMiddleware(firebaseAuth *firebaseauth.Client) echo.MiddlewareFunc {
	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		jwtSecret = "supersecretjwtkey" // must match the signing secret
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get("Authorization")
			if authHeader == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "Missing Authorization header")
			}

			parts := strings.Split(authHeader, " ")
			if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
				return echo.NewHTTPError(http.StatusUnauthorized, "Authorization header must be in Bearer format")
			}
			tokenString := parts[1]

			claims := &models.JwtCustomClaims{}
			token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
				if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
					return nil, echo.NewHTTPError(http.StatusUnauthorized, "Unexpected signing method")
				}
				return []byte(jwtSecret), nil
			})
			if err == nil && token.Valid {
				c.Set(ProfileIDKey, claims.ProfileID)
				return next(c)
			}

			// Not one of ours; try it as a Firebase ID token.
			if firebaseAuth != nil {
				fbToken, err := firebaseAuth.VerifyIDToken(c.Request().Context(), tokenString)
				if err == nil {
					c.Set(ProfileIDKey, fbToken.UID)
					return next(c)
				}
			}

			return echo.NewHTTPError(http.StatusUnauthorized, "Invalid or expired token")
		}
	}
}
