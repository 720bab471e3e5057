package handlers

import (
	"github.com/buzztalks/backend/internal/middleware"
	"github.com/labstack/echo/v4"
)

// profileIDFromContext returns the authenticated caller's profile ID, or ""
// when the request is unauthenticated.
func profileIDFromContext(c echo.Context) string {
	if id, ok := c.Get(middleware.ProfileIDKey).(string); ok {
		return id
	}
	return ""
}

// truncateRunes shortens s to at most n runes, never splitting a rune.
func truncateRunes(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}

// contains reports whether the string slice holds the value. Like-sets are
// small arrays on the document, so a linear scan is fine.
func contains(list []string, value string) bool {
	for _, v := range list {
		if v == value {
			return true
		}
	}
	return false
}
