package domain

import "time"

// Token is the opaque bearer credential issued to an account. Each account holds at most one.
type Token struct {
	Key       string    `json:"key"`
	UserID    int64     `json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
}
