//go:generate go run go.uber.org/mock/mockgen -source=contract.go -destination=../mocks/mock_contract.go -package=mocks
package contract

import (
	"chat-shell/domain"
	"context"
)

// SessionObserver is any surface that re-renders on session change.
// OnSession may call back into ISessionManager: transitions it causes are
// delivered, in order, once the current callback returns.
type SessionObserver interface {
	OnSession(session domain.Session)
}

// ObserverFunc adapts a plain function to SessionObserver.
type ObserverFunc func(session domain.Session)

func (f ObserverFunc) OnSession(session domain.Session) { f(session) }

type IRegistry interface {
	Subscribe(observer SessionObserver) string
	Unsubscribe(subscriptionID string)
	Observers() []SessionObserver
}

type ISessionManager interface {
	Hydrate(ctx context.Context) error
	Login(ctx context.Context, email, password string) error
	Register(ctx context.Context, name, email, password string) error
	Logout()
	UpdateProfile(ctx context.Context, update domain.ProfileUpdate) (domain.UserProfile, error)
	Snapshot() domain.Session
	Subscribe(observer SessionObserver) func()
}

// IMessageStore is the ordered local timeline backing the chat surface.
type IMessageStore interface {
	Append(text string, sender domain.Sender) (domain.Message, error)
	AppendPending(text string, sender domain.Sender) (domain.Message, error)
	Resolve(id string, state domain.DeliveryState) (domain.Message, error)
	List() []domain.Message
	Len() int
	Clear()
}
