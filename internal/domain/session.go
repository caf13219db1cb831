package domain

import "time"

// Session binds an opaque client token to an authenticated user.
type Session struct {
	Token     string
	UserID    int64
	CreatedAt time.Time
}
