package models

import (
	"time"

	"github.com/golang-jwt/jwt/v4"
	"gorm.io/gorm"
)

// UserProfile is a user document in the MongoDB "users" collection.
// The document is keyed by the auth UID rather than a generated ObjectID so
// that profile point-reads can use the identity the client already holds.
type UserProfile struct {
	UserID         string    `json:"userId" bson:"_id"`
	Username       string    `json:"username" bson:"username"`
	Email          string    `json:"email" bson:"email"`
	AvatarURL      string    `json:"avatarUrl" bson:"avatarUrl"`
	Bio            string    `json:"bio" bson:"bio"`
	Website        string    `json:"website,omitempty" bson:"website,omitempty"`
	Location       string    `json:"location,omitempty" bson:"location,omitempty"`
	FollowersCount int       `json:"followersCount" bson:"followersCount"`
	FollowingCount int       `json:"followingCount" bson:"followingCount"`
	PostsCount     int       `json:"postsCount" bson:"postsCount"`
	CreatedAt      time.Time `json:"createdAt" bson:"createdAt"`
}

// Account holds the credential side of a user in PostgreSQL. Social data
// never lives here; the profile document in MongoDB is what the feed renders.
type Account struct {
	gorm.Model  `json:"-"`
	Email       string `json:"email" gorm:"uniqueIndex"`
	Password    string `json:"-"` // bcrypt hash
	ProfileID   string `json:"profile_id" gorm:"uniqueIndex"` // UserProfile.UserID in MongoDB
	FirebaseUID string `json:"firebase_uid,omitempty" gorm:"index"` // empty for local accounts
}

// SignupRequest defines the request body for local email/password signup
type SignupRequest struct {
	Username string `json:"username" validate:"required,min=2,max=30"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

// SigninRequest defines the request body for local email/password signin
type SigninRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// FirebaseLoginRequest carries a Firebase ID token minted by the client SDK
type FirebaseLoginRequest struct {
	IDToken string `json:"idToken" validate:"required"`
}

// UpdateProfileRequest defines the request body for updating the caller's profile
type UpdateProfileRequest struct {
	Username  string `json:"username,omitempty" validate:"omitempty,min=2,max=30"`
	AvatarURL string `json:"avatarUrl,omitempty" validate:"omitempty,url"`
	Bio       string `json:"bio,omitempty" validate:"omitempty,max=160"`
	Website   string `json:"website,omitempty" validate:"omitempty,url"`
	Location  string `json:"location,omitempty" validate:"omitempty,max=60"`
}

// JwtCustomClaims are custom claims extending standard jwt.RegisteredClaims
type JwtCustomClaims struct {
	ProfileID string `json:"profile_id"`
	Email     string `json:"email"`
	jwt.RegisteredClaims
}
