package e2e

import (
	"bytes"
	"chat-shell/infrastructure/http/client"
	"chat-shell/projection"
	"chat-shell/repositories"
	"chat-shell/runtime"
	"chat-shell/services"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/gookit/color"
	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/suite"
)

type BaseHTTPSuite struct {
	suite.Suite
	Config Config
}

// SetupSuite loads the environment configuration before running tests
func (s *BaseHTTPSuite) SetupSuite() {
	var err error
	s.Config, err = LoadConfig()
	s.Require().NoError(err)
	if s.Config.APIBaseURL == "" {
		s.T().Skip("API_BASE_URL not set, skipping live API scenarios")
	}
}

// Session bundles one running instance of the session subsystem.
type Session struct {
	Manager  *services.SessionManager
	Messages *projection.MessageStore
	Tokens   repositories.ITokenRepository
}

// HTTPClient returns a client logging every call, with bodies when E2E_DEBUG_HTTP is set.
func (s *BaseHTTPSuite) HTTPClient(t *testing.T, name string) *http.Client {
	header := fmt.Sprintf("  ====== %s ======", name)
	if s.Config.Colours {
		header = color.New(color.BgBlack, color.FgGreen).Render(header)
	}
	t.Log(header)
	return &http.Client{
		Timeout:   10 * time.Second,
		Transport: &loggingTransport{t: t, debug: s.Config.DebugHTTP, next: http.DefaultTransport},
	}
}

// WithSession starts a session subsystem on the badger directory dir and
// closes it once fn returns. Reusing dir across calls simulates a restart.
func (s *BaseHTTPSuite) WithSession(name, dir string, fn func(ctx context.Context, session Session)) {
	t := s.T()
	log := logs.GetLoggerFromLevel(slog.LevelDebug)
	db, err := badger.Open(badger.DefaultOptions(dir).WithLoggingLevel(badger.WARNING))
	s.Require().NoError(err)
	defer func() { _ = db.Close() }()

	gateway := client.NewAuthGateway(log, s.Config.APIBaseURL, s.HTTPClient(t, name))
	tokens := repositories.NewTokenRepository(db, log)
	messages := projection.NewMessageStore(log)
	manager := services.NewSessionManager(log, gateway, tokens, messages, runtime.NewRegistry())

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	fn(ctx, Session{Manager: manager, Messages: messages, Tokens: tokens})
}

type loggingTransport struct {
	t     *testing.T
	debug bool
	next  http.RoundTripper
}

func (l *loggingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	start := time.Now()
	var requestBody []byte
	if l.debug && req.Body != nil {
		requestBody, _ = io.ReadAll(req.Body)
		req.Body = io.NopCloser(bytes.NewReader(requestBody))
	}

	resp, err := l.next.RoundTrip(req)

	logBuilder := strings.Builder{}
	status := "ERR"
	if resp != nil {
		status = resp.Status
	}
	fmt.Fprintf(&logBuilder, "HTTP %s %s [%s] in %v", req.Method, req.URL.Path, status, time.Since(start))

	if l.debug {
		fmt.Fprintln(&logBuilder, "\nREQUEST:")
		fmt.Fprintln(&logBuilder, string(requestBody))
		if err != nil {
			fmt.Fprintln(&logBuilder, "ERROR:", err)
		} else {
			responseBody, _ := io.ReadAll(resp.Body)
			_ = resp.Body.Close()
			resp.Body = io.NopCloser(bytes.NewReader(responseBody))
			fmt.Fprintln(&logBuilder, "RESPONSE:")
			fmt.Fprintln(&logBuilder, string(responseBody))
		}
	}
	l.t.Log(logBuilder.String())
	return resp, err
}
