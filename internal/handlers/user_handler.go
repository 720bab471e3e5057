package handlers

import (
	"net/http"

	"github.com/buzztalks/backend/internal/models"
	"github.com/buzztalks/backend/internal/repositories"
	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson"
)

// UserHandler handles HTTP requests related to user profiles
type UserHandler struct {
	userRepository repositories.UserRepository
}

// NewUserHandler creates a new UserHandler
func NewUserHandler(userRepo repositories.UserRepository) *UserHandler {
	return &UserHandler{userRepository: userRepo}
}

// RegisterProfileRoutes registers user profile-related routes
func (h *UserHandler) RegisterProfileRoutes(g *echo.Group) {
	g.GET("/profile", h.GetProfile)
	g.PUT("/profile", h.UpdateProfile)
	g.GET("/users/:id", h.GetUser)
	g.GET("/users/search", h.SearchUsers)
	g.GET("/users/suggestions", h.GetSuggestions)
}

// GetProfile retrieves the authenticated user's profile
func (h *UserHandler) GetProfile(c echo.Context) error {
	profileID := profileIDFromContext(c)

	profile, err := h.userRepository.GetProfileByID(c.Request().Context(), profileID)
	if err != nil {
		if err == repositories.ErrProfileNotFound {
			return echo.NewHTTPError(http.StatusNotFound, "User profile not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, profile)
}

// UpdateProfile merges the submitted fields into the caller's profile
func (h *UserHandler) UpdateProfile(c echo.Context) error {
	profileID := profileIDFromContext(c)

	var req models.UpdateProfileRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	fields := bson.M{}
	if req.Username != "" {
		fields["username"] = req.Username
	}
	if req.AvatarURL != "" {
		fields["avatarUrl"] = req.AvatarURL
	}
	if req.Bio != "" {
		fields["bio"] = req.Bio
	}
	if req.Website != "" {
		fields["website"] = req.Website
	}
	if req.Location != "" {
		fields["location"] = req.Location
	}

	if err := h.userRepository.UpdateProfile(c.Request().Context(), profileID, fields); err != nil {
		if err == repositories.ErrProfileNotFound {
			return echo.NewHTTPError(http.StatusNotFound, "User profile not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	profile, err := h.userRepository.GetProfileByID(c.Request().Context(), profileID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, profile)
}

// GetUser retrieves another user's profile by ID
func (h *UserHandler) GetUser(c echo.Context) error {
	profile, err := h.userRepository.GetProfileByID(c.Request().Context(), c.Param("id"))
	if err != nil {
		if err == repositories.ErrProfileNotFound {
			return echo.NewHTTPError(http.StatusNotFound, "User profile not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, profile)
}

// SearchUsers matches a query string case-insensitively against usernames
// and bios.
func (h *UserHandler) SearchUsers(c echo.Context) error {
	query := c.QueryParam("q")
	if query == "" {
		return c.JSON(http.StatusOK, []models.UserProfile{})
	}

	profiles, err := h.userRepository.SearchProfiles(c.Request().Context(), query, 10)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if profiles == nil {
		profiles = []models.UserProfile{}
	}
	return c.JSON(http.StatusOK, profiles)
}

// GetSuggestions returns profiles to follow, most-followed first, excluding
// the caller.
func (h *UserHandler) GetSuggestions(c echo.Context) error {
	profileID := profileIDFromContext(c)

	profiles, err := h.userRepository.GetAllProfiles(c.Request().Context(), 20)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	suggestions := make([]models.UserProfile, 0, len(profiles))
	for _, p := range profiles {
		if p.UserID != profileID {
			suggestions = append(suggestions, p)
		}
	}
	return c.JSON(http.StatusOK, suggestions)
}
