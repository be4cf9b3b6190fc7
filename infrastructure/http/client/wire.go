package client

import (
	"chat-shell/domain"
	"time"
)

type errorBody struct {
	Error string `json:"error"`
}

type registerBody struct {
	UserID  uint64 `json:"userId"`
	Message string `json:"message"`
}

type loginBody struct {
	Token string    `json:"token"`
	User  *userBody `json:"user"`
}

// userBody accepts both the snake_case fields the server emits and the
// camelCase ones documented for the API.
type userBody struct {
	ID             uint64    `json:"id"`
	Name           string    `json:"name"`
	Email          string    `json:"email"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
	CreatedAtCamel time.Time `json:"createdAt"`
	UpdatedAtCamel time.Time `json:"updatedAt"`
}

func (u userBody) toDomain() domain.UserProfile {
	profile := domain.UserProfile{
		ID:        u.ID,
		Name:      u.Name,
		Email:     u.Email,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
	if profile.CreatedAt.IsZero() {
		profile.CreatedAt = u.CreatedAtCamel
	}
	if profile.UpdatedAt.IsZero() {
		profile.UpdatedAt = u.UpdatedAtCamel
	}
	return profile
}
