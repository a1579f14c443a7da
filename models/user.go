package models

import "time"

type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	Name         string    `json:"name"`
	PasswordHash string    `json:"-"`
	FirebaseUID  string    `json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
}

// Session is a signed-in device. The session token references it by ID so
// signing out revokes the token.
type Session struct {
	ID        string
	UserID    string
	ExpiresAt time.Time
	RevokedAt *time.Time
}

// VerificationCode is a pending emailed one-time code, stored hashed.
type VerificationCode struct {
	Email     string
	CodeHash  string
	ExpiresAt time.Time
	Attempts  int
}

// AuthResult is returned by every successful sign-in flow.
type AuthResult struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
	User      User      `json:"user"`
}
