//go:generate go run go.uber.org/mock/mockgen -source=auth_gateway.go -destination=../../../mocks/mock_auth_gateway.go -package=mocks
package client

import (
	"bytes"
	"chat-shell/auth"
	"chat-shell/domain"
	"chat-shell/errors"
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"
)

// IAuthGateway issues the account requests of the remote API.
// It holds no session state: the bearer token is passed on every call.
type IAuthGateway interface {
	Register(ctx context.Context, req auth.RegisterRequest) (RegisterResponse, error)
	Login(ctx context.Context, req auth.LoginRequest) (LoginResponse, error)
	GetProfile(ctx context.Context, token string) (domain.UserProfile, error)
	UpdateProfile(ctx context.Context, token string, req auth.ProfileUpdateRequest) (domain.UserProfile, error)
}

type RegisterResponse struct {
	UserID  uint64
	Message string
}

// LoginResponse carries the issued token. User is nil when the server
// did not include a usable profile.
type LoginResponse struct {
	Token string
	User  *domain.UserProfile
}

const (
	routeRegister = "/register"
	routeLogin    = "/login"
	routeProfile  = "/profile"
)

// maxErrorBody bounds how much of a failed response is read for its message.
const maxErrorBody = 4 << 10

type AuthGateway struct {
	log        *slog.Logger
	baseURL    string
	httpClient *http.Client
}

func NewAuthGateway(log *slog.Logger, baseURL string, httpClient *http.Client) IAuthGateway {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &AuthGateway{
		log:        log,
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
	}
}

func (g *AuthGateway) Register(ctx context.Context, req auth.RegisterRequest) (RegisterResponse, error) {
	if err := auth.ValidateRegister(req); err != nil {
		return RegisterResponse{}, err
	}
	var body registerBody
	if err := g.do(ctx, http.MethodPost, routeRegister, "", req, &body); err != nil {
		return RegisterResponse{}, err
	}
	return RegisterResponse{UserID: body.UserID, Message: body.Message}, nil
}

func (g *AuthGateway) Login(ctx context.Context, req auth.LoginRequest) (LoginResponse, error) {
	if err := auth.ValidateLogin(req); err != nil {
		return LoginResponse{}, err
	}
	var body loginBody
	if err := g.do(ctx, http.MethodPost, routeLogin, "", req, &body); err != nil {
		return LoginResponse{}, err
	}
	if body.Token == "" {
		return LoginResponse{}, errors.New(errors.KindServer, "login response has no token")
	}
	response := LoginResponse{Token: body.Token}
	if body.User != nil && body.User.ID != 0 {
		user := body.User.toDomain()
		response.User = &user
	}
	return response, nil
}

func (g *AuthGateway) GetProfile(ctx context.Context, token string) (domain.UserProfile, error) {
	if token == "" {
		return domain.UserProfile{}, errors.New(errors.KindAuth, "missing bearer token")
	}
	var body userBody
	if err := g.do(ctx, http.MethodGet, routeProfile, token, nil, &body); err != nil {
		return domain.UserProfile{}, err
	}
	if body.ID == 0 {
		return domain.UserProfile{}, errors.New(errors.KindServer, "profile response has no user")
	}
	return body.toDomain(), nil
}

// UpdateProfile sends the PATCH and returns the resulting profile.
// Servers that only acknowledge the update get a follow-up GET /profile.
func (g *AuthGateway) UpdateProfile(ctx context.Context, token string, req auth.ProfileUpdateRequest) (domain.UserProfile, error) {
	if token == "" {
		return domain.UserProfile{}, errors.New(errors.KindAuth, "missing bearer token")
	}
	if err := auth.ValidateProfileUpdate(req); err != nil {
		return domain.UserProfile{}, err
	}
	var body userBody
	if err := g.do(ctx, http.MethodPatch, routeProfile, token, req, &body); err != nil {
		return domain.UserProfile{}, err
	}
	if body.ID != 0 {
		return body.toDomain(), nil
	}
	g.log.Debug("Profile update acknowledged without user, fetching profile")
	return g.GetProfile(ctx, token)
}

// do performs one JSON round trip and classifies every failure.
func (g *AuthGateway) do(ctx context.Context, method, route, token string, in, out any) error {
	var reader io.Reader
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return errors.Wrap(errors.KindValidation, "request encoding failed", err)
		}
		reader = bytes.NewReader(payload)
	}

	request, err := http.NewRequestWithContext(ctx, method, g.baseURL+route, reader)
	if err != nil {
		return errors.Wrap(errors.KindValidation, "invalid request", err)
	}
	request.Header.Set("Accept", "application/json")
	if in != nil {
		request.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		request.Header.Set("Authorization", "Bearer "+token)
	}

	start := time.Now()
	response, err := g.httpClient.Do(request)
	if err != nil {
		g.log.Debug("Request failed", "method", method, "route", route, "error", err)
		return classifyTransport(err)
	}
	defer response.Body.Close()
	g.log.Debug("Request done", "method", method, "route", route,
		"status", response.StatusCode, "duration", time.Since(start))

	if response.StatusCode < 200 || response.StatusCode > 299 {
		return classifyStatus(response)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(response.Body).Decode(out); err != nil && !stderrors.Is(err, io.EOF) {
		return errors.Wrap(errors.KindServer, "malformed response", err)
	}
	return nil
}

func classifyTransport(err error) error {
	if stderrors.Is(err, context.DeadlineExceeded) {
		return errors.Wrap(errors.KindNetwork, "request timed out", err)
	}
	if stderrors.Is(err, context.Canceled) {
		return errors.Wrap(errors.KindNetwork, "request cancelled", err)
	}
	return errors.Wrap(errors.KindNetwork, "server unreachable", err)
}

func classifyStatus(response *http.Response) error {
	message := errorMessage(response)
	status := response.StatusCode
	var kind errors.Kind
	switch {
	case status == http.StatusUnauthorized, status == http.StatusForbidden:
		kind = errors.KindAuth
	case status == http.StatusNotFound:
		// The profile routes answer 404 when the token's user is gone.
		kind = errors.KindAuth
	case status == http.StatusRequestTimeout, status == http.StatusTooManyRequests:
		kind = errors.KindNetwork
	case status >= 500:
		kind = errors.KindServer
	default:
		kind = errors.KindValidation
	}
	return &errors.Error{Kind: kind, Message: message, Status: status}
}

// errorMessage extracts the {"error": "..."} body of a failed response,
// falling back to the status text.
func errorMessage(response *http.Response) string {
	data, _ := io.ReadAll(io.LimitReader(response.Body, maxErrorBody))
	var body errorBody
	if err := json.Unmarshal(data, &body); err == nil && body.Error != "" {
		return body.Error
	}
	if text := strings.TrimSpace(string(data)); text != "" && !strings.HasPrefix(text, "{") && len(text) < 200 {
		return text
	}
	return fmt.Sprintf("%d %s", response.StatusCode, http.StatusText(response.StatusCode))
}
