package models

import (
	"time"
)

// User defines the user model based on the 'users' table
type User struct {
	ID           int64     `json:"id" db:"id"`
	FullName     string    `json:"fullName" db:"full_name"`
	LoginName    string    `json:"loginName" db:"login_name"`
	PasswordHash string    `json:"-" db:"password_hash"`
	CreatedAt    time.Time `json:"createdAt" db:"created_at"`
}

// Session is the single live login of a user ('sessions' table)
type Session struct {
	ID        int64     `json:"id" db:"id"`
	UserID    int64     `json:"userId" db:"user_id"`
	Magic     string    `json:"-" db:"magic"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
}

// ExpiredAt reports whether the session is older than maxAge at now. A zero maxAge never expires.
func (s *Session) ExpiredAt(now time.Time, maxAge time.Duration) bool {
	if maxAge <= 0 {
		return false
	}
	return !now.Before(s.CreatedAt.Add(maxAge))
}
