package domain

import "time"

// UserProfile is an immutable snapshot of the remote account.
// Updates replace the whole value.
type UserProfile struct {
	ID        uint64
	Name      string
	Email     string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// ProfileUpdate carries the fields a user asked to change.
// A nil field is left untouched.
type ProfileUpdate struct {
	Name     *string
	Password *string
}
