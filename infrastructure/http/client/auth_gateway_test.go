package client

import (
	"chat-shell/auth"
	"chat-shell/errors"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/mama165/sdk-go/logs"
	"github.com/samber/lo"
	"github.com/stretchr/testify/require"
)

func newGateway(t *testing.T, handler http.HandlerFunc) IAuthGateway {
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return NewAuthGateway(logs.GetLoggerFromLevel(slog.LevelDebug), server.URL, server.Client())
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func TestAuthGateway_Login(t *testing.T) {
	t.Run("should return token and user on success", func(t *testing.T) {
		req := require.New(t)
		gateway := newGateway(t, func(w http.ResponseWriter, r *http.Request) {
			req.Equal(http.MethodPost, r.Method)
			req.Equal("/login", r.URL.Path)
			req.Empty(r.Header.Get("Authorization"))
			var body map[string]string
			req.NoError(json.NewDecoder(r.Body).Decode(&body))
			req.Equal("a@b.com", body["email"])
			req.Equal("pw", body["password"])
			writeJSON(w, http.StatusOK, map[string]any{
				"token": "tok-1",
				"user":  map[string]any{"id": 1, "name": "Ann", "email": "a@b.com"},
			})
		})

		resp, err := gateway.Login(context.Background(), auth.LoginRequest{Email: "a@b.com", Password: "pw"})

		req.NoError(err)
		req.Equal("tok-1", resp.Token)
		req.NotNil(resp.User)
		req.Equal(uint64(1), resp.User.ID)
		req.Equal("Ann", resp.User.Name)
	})

	t.Run("should classify 401 as auth error with server message", func(t *testing.T) {
		req := require.New(t)
		gateway := newGateway(t, func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "invalid credentials"})
		})

		_, err := gateway.Login(context.Background(), auth.LoginRequest{Email: "a@b.com", Password: "wrong"})

		req.ErrorIs(err, errors.ErrAuth)
		req.True(errors.IsUnauthorized(err))
		req.Equal("invalid credentials", errors.MessageOf(err))
	})

	t.Run("should reject malformed input before sending", func(t *testing.T) {
		req := require.New(t)
		var calls atomic.Int32
		gateway := newGateway(t, func(w http.ResponseWriter, r *http.Request) {
			calls.Add(1)
		})

		_, err := gateway.Login(context.Background(), auth.LoginRequest{Email: "nope", Password: "pw"})

		req.ErrorIs(err, errors.ErrValidation)
		req.Zero(calls.Load())
	})

	t.Run("should fail when token is missing from response", func(t *testing.T) {
		req := require.New(t)
		gateway := newGateway(t, func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusOK, map[string]any{})
		})

		_, err := gateway.Login(context.Background(), auth.LoginRequest{Email: "a@b.com", Password: "pw"})

		req.ErrorIs(err, errors.ErrServer)
	})

	t.Run("should leave user nil when response omits it", func(t *testing.T) {
		req := require.New(t)
		gateway := newGateway(t, func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusOK, map[string]any{"token": "tok-1"})
		})

		resp, err := gateway.Login(context.Background(), auth.LoginRequest{Email: "a@b.com", Password: "pw"})

		req.NoError(err)
		req.Nil(resp.User)
	})
}

func TestAuthGateway_Register(t *testing.T) {
	t.Run("should create the account", func(t *testing.T) {
		req := require.New(t)
		gateway := newGateway(t, func(w http.ResponseWriter, r *http.Request) {
			req.Equal("/register", r.URL.Path)
			writeJSON(w, http.StatusCreated, map[string]any{"userId": 7, "message": "User created successfully"})
		})

		resp, err := gateway.Register(context.Background(),
			auth.RegisterRequest{Name: "Ann", Email: "a@b.com", Password: "secret1"})

		req.NoError(err)
		req.Equal(uint64(7), resp.UserID)
		req.Equal("User created successfully", resp.Message)
	})

	t.Run("should classify duplicate email as validation error", func(t *testing.T) {
		req := require.New(t)
		gateway := newGateway(t, func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Email already exists"})
		})

		_, err := gateway.Register(context.Background(),
			auth.RegisterRequest{Name: "Ann", Email: "a@b.com", Password: "secret1"})

		req.ErrorIs(err, errors.ErrValidation)
		req.Equal("Email already exists", errors.MessageOf(err))
	})

	t.Run("should classify 5xx as server error", func(t *testing.T) {
		req := require.New(t)
		gateway := newGateway(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		})

		_, err := gateway.Register(context.Background(),
			auth.RegisterRequest{Name: "Ann", Email: "a@b.com", Password: "secret1"})

		req.ErrorIs(err, errors.ErrServer)
		req.Equal("500 Internal Server Error", errors.MessageOf(err))
	})
}

func TestAuthGateway_GetProfile(t *testing.T) {
	t.Run("should attach bearer token and decode snake_case dates", func(t *testing.T) {
		req := require.New(t)
		created := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
		gateway := newGateway(t, func(w http.ResponseWriter, r *http.Request) {
			req.Equal(http.MethodGet, r.Method)
			req.Equal("Bearer tok-1", r.Header.Get("Authorization"))
			writeJSON(w, http.StatusOK, map[string]any{
				"id": 1, "name": "Ann", "email": "a@b.com",
				"created_at": created, "updated_at": created,
			})
		})

		user, err := gateway.GetProfile(context.Background(), "tok-1")

		req.NoError(err)
		req.Equal("Ann", user.Name)
		req.True(created.Equal(user.CreatedAt))
		req.True(created.Equal(user.UpdatedAt))
	})

	t.Run("should accept camelCase dates", func(t *testing.T) {
		req := require.New(t)
		created := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
		gateway := newGateway(t, func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusOK, map[string]any{"id": 1, "name": "Ann", "createdAt": created})
		})

		user, err := gateway.GetProfile(context.Background(), "tok-1")

		req.NoError(err)
		req.True(created.Equal(user.CreatedAt))
	})

	t.Run("should fail without calling the server when token is empty", func(t *testing.T) {
		req := require.New(t)
		var calls atomic.Int32
		gateway := newGateway(t, func(w http.ResponseWriter, r *http.Request) {
			calls.Add(1)
		})

		_, err := gateway.GetProfile(context.Background(), "")

		req.ErrorIs(err, errors.ErrAuth)
		req.Zero(calls.Load())
	})

	t.Run("should classify unreachable server as network error", func(t *testing.T) {
		req := require.New(t)
		server := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
		url := server.URL
		server.Close()
		gateway := NewAuthGateway(logs.GetLoggerFromLevel(slog.LevelDebug), url, nil)

		_, err := gateway.GetProfile(context.Background(), "tok-1")

		req.ErrorIs(err, errors.ErrNetwork)
	})

	t.Run("should classify timeout as network error", func(t *testing.T) {
		req := require.New(t)
		release := make(chan struct{})
		defer close(release)
		gateway := newGateway(t, func(w http.ResponseWriter, r *http.Request) {
			select {
			case <-release:
			case <-r.Context().Done():
			}
		})
		ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
		defer cancel()

		_, err := gateway.GetProfile(ctx, "tok-1")

		req.ErrorIs(err, errors.ErrNetwork)
		req.ErrorIs(err, context.DeadlineExceeded)
	})

	t.Run("should report malformed body as server error", func(t *testing.T) {
		req := require.New(t)
		gateway := newGateway(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusOK)
			_, _ = w.Write([]byte("{not json"))
		})

		_, err := gateway.GetProfile(context.Background(), "tok-1")

		req.ErrorIs(err, errors.ErrServer)
	})
}

func TestAuthGateway_UpdateProfile(t *testing.T) {
	t.Run("should send only provided fields and return the updated user", func(t *testing.T) {
		req := require.New(t)
		gateway := newGateway(t, func(w http.ResponseWriter, r *http.Request) {
			req.Equal(http.MethodPatch, r.Method)
			req.Equal("Bearer tok-1", r.Header.Get("Authorization"))
			var body map[string]any
			req.NoError(json.NewDecoder(r.Body).Decode(&body))
			req.Equal(map[string]any{"name": "Ann2"}, body)
			writeJSON(w, http.StatusOK, map[string]any{"id": 1, "name": "Ann2", "email": "a@b.com"})
		})

		user, err := gateway.UpdateProfile(context.Background(), "tok-1",
			auth.ProfileUpdateRequest{Name: lo.ToPtr("Ann2")})

		req.NoError(err)
		req.Equal("Ann2", user.Name)
	})

	t.Run("should refetch profile when server only acknowledges", func(t *testing.T) {
		req := require.New(t)
		var gets atomic.Int32
		gateway := newGateway(t, func(w http.ResponseWriter, r *http.Request) {
			switch r.Method {
			case http.MethodPatch:
				writeJSON(w, http.StatusOK, map[string]string{"message": "Profile updated successfully"})
			case http.MethodGet:
				gets.Add(1)
				writeJSON(w, http.StatusOK, map[string]any{"id": 1, "name": "Ann2", "email": "a@b.com"})
			}
		})

		user, err := gateway.UpdateProfile(context.Background(), "tok-1",
			auth.ProfileUpdateRequest{Name: lo.ToPtr("Ann2")})

		req.NoError(err)
		req.Equal("Ann2", user.Name)
		req.Equal(int32(1), gets.Load())
	})

	t.Run("should classify rejected token as unauthorized", func(t *testing.T) {
		req := require.New(t)
		gateway := newGateway(t, func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusUnauthorized, map[string]string{"error": "invalid or expired token"})
		})

		_, err := gateway.UpdateProfile(context.Background(), "tok-1",
			auth.ProfileUpdateRequest{Password: lo.ToPtr("newsecret")})

		req.True(errors.IsUnauthorized(err))
	})
}
