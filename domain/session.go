package domain

type Status string

const (
	StatusIdle            Status = "idle"
	StatusLoading         Status = "loading"
	StatusAuthenticated   Status = "authenticated"
	StatusUnauthenticated Status = "unauthenticated"
	StatusError           Status = "error"
)

// Session is the snapshot published to observers.
//
// User is set only when Status is StatusAuthenticated, and an authenticated
// session always carries the Token accepted by the last identity check.
// Error holds the message of the last failed operation; it survives the
// settle into StatusUnauthenticated and is reset when a new operation starts.
type Session struct {
	Status Status
	Token  string
	User   *UserProfile
	Error  string
}

func (s Session) IsAuthenticated() bool {
	return s.Status == StatusAuthenticated
}

// Idle is the state before the first hydration.
func Idle() Session { return Session{Status: StatusIdle} }

func Loading() Session { return Session{Status: StatusLoading} }

func Unauthenticated(lastError string) Session {
	return Session{Status: StatusUnauthenticated, Error: lastError}
}

func Failed(message string) Session {
	return Session{Status: StatusError, Error: message}
}

// Authenticated copies user so later mutations of the caller's value
// never leak into a published snapshot.
func Authenticated(token string, user UserProfile) Session {
	return Session{Status: StatusAuthenticated, Token: token, User: &user}
}

// Clone returns a copy that shares no memory with s.
func (s Session) Clone() Session {
	if s.User != nil {
		user := *s.User
		s.User = &user
	}
	return s
}
