package handlers

import (
	"fmt"
	"log"
	"net/http"
	"time"

	firebaseauth "firebase.google.com/go/v4/auth"
	"github.com/buzztalks/backend/internal/models"
	"github.com/buzztalks/backend/internal/repositories"
	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"golang.org/x/crypto/bcrypt"
)

// AuthHandler handles authentication-related HTTP requests
type AuthHandler struct {
	accountRepository repositories.AccountRepository
	userRepository    repositories.UserRepository
	firebaseAuth      *firebaseauth.Client
	jwtSecret         string
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(accountRepo repositories.AccountRepository, userRepo repositories.UserRepository, firebaseAuthClient *firebaseauth.Client, jwtSecret string) *AuthHandler {
	return &AuthHandler{
		accountRepository: accountRepo,
		userRepository:    userRepo,
		firebaseAuth:      firebaseAuthClient,
		jwtSecret:         jwtSecret,
	}
}

// RegisterAuthRoutes registers authentication-related routes
func (h *AuthHandler) RegisterAuthRoutes(g *echo.Group) {
	g.POST("/signup", h.Signup)
	g.POST("/signin", h.SignIn)
	g.POST("/firebase-login", h.FirebaseLogin)
}

// Signup handles local email/password registration. The account row and the
// profile document are created together; the profile gets a generated
// avatar seeded by the username.
func (h *AuthHandler) Signup(c echo.Context) error {
	var req models.SignupRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	if _, err := h.accountRepository.GetAccountByEmail(req.Email); err == nil {
		return echo.NewHTTPError(http.StatusConflict, "User with this email already registered")
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to hash password")
	}

	profile := &models.UserProfile{
		UserID:    uuid.NewString(),
		Username:  req.Username,
		Email:     req.Email,
		AvatarURL: fmt.Sprintf("https://api.dicebear.com/7.x/avataaars/svg?seed=%s", req.Username),
		CreatedAt: time.Now(),
	}
	if err := h.userRepository.CreateProfile(c.Request().Context(), profile); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	account := &models.Account{
		Email:     req.Email,
		Password:  string(hashedPassword),
		ProfileID: profile.UserID,
	}
	if err := h.accountRepository.CreateAccount(account); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	token, err := h.generateJWT(profile.UserID, req.Email)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to generate token after signup")
	}

	return c.JSON(http.StatusCreated, echo.Map{"token": token, "profile": profile})
}

// SignIn handles local email/password authentication
func (h *AuthHandler) SignIn(c echo.Context) error {
	var req models.SigninRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	account, err := h.accountRepository.GetAccountByEmail(req.Email)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "Invalid email or password")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(account.Password), []byte(req.Password)); err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "Invalid email or password")
	}

	profile, err := h.userRepository.GetProfileByID(c.Request().Context(), account.ProfileID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Profile lookup failed")
	}

	token, err := h.generateJWT(account.ProfileID, account.Email)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to generate token")
	}

	return c.JSON(http.StatusOK, echo.Map{"token": token, "profile": profile})
}

// FirebaseLogin verifies a Firebase ID token and issues a local JWT. The
// Firebase UID doubles as the profile document ID; a first login creates
// the profile with defaults.
func (h *AuthHandler) FirebaseLogin(c echo.Context) error {
	var req models.FirebaseLoginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	if h.firebaseAuth == nil {
		return echo.NewHTTPError(http.StatusServiceUnavailable, "Firebase authentication not configured")
	}

	token, err := h.firebaseAuth.VerifyIDToken(c.Request().Context(), req.IDToken)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "Invalid Firebase ID token")
	}

	uid := token.UID
	email, _ := token.Claims["email"].(string)
	name, _ := token.Claims["name"].(string)
	if name == "" {
		name = email
	}

	if _, err := h.userRepository.GetProfileByID(c.Request().Context(), uid); err != nil {
		if err != repositories.ErrProfileNotFound {
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}
		profile := &models.UserProfile{
			UserID:    uid,
			Username:  name,
			Email:     email,
			AvatarURL: fmt.Sprintf("https://api.dicebear.com/7.x/avataaars/svg?seed=%s", name),
			CreatedAt: time.Now(),
		}
		if err := h.userRepository.CreateProfile(c.Request().Context(), profile); err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, "Failed to create profile")
		}
	}

	h.linkFirebaseAccount(uid, email)

	localJWT, err := h.generateJWT(uid, email)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to generate local JWT")
	}

	return c.JSON(http.StatusOK, echo.Map{"token": localJWT})
}

// linkFirebaseAccount ensures a credential row exists for the Firebase UID,
// so the account table covers Firebase users too. Best-effort: a failed link
// does not block login.
func (h *AuthHandler) linkFirebaseAccount(uid, email string) {
	if _, err := h.accountRepository.GetAccountByFirebaseUID(uid); err == nil {
		return
	}
	account := &models.Account{Email: email, ProfileID: uid, FirebaseUID: uid}
	if err := h.accountRepository.CreateAccount(account); err != nil {
		log.Printf("auth: account link failed for firebase uid %s: %v", uid, err)
	}
}

// generateJWT generates a session token for the given profile
func (h *AuthHandler) generateJWT(profileID, email string) (string, error) {
	claims := &models.JwtCustomClaims{
		ProfileID: profileID,
		Email:     email,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour * 72)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(h.jwtSecret))
}
