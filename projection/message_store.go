// Package projection holds the local chat timeline of the active session.
// Handles ordering, id assignment and delivery-state transitions.
// Does not talk to the network or render anything.
package projection

import (
	"chat-shell/domain"
	"chat-shell/errors"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

type Option func(*MessageStore)

// WithClock replaces the timestamp source.
func WithClock(now func() time.Time) Option {
	return func(s *MessageStore) { s.now = now }
}

// WithIDGenerator replaces the id source. Generated ids must be unique.
func WithIDGenerator(newID func() string) Option {
	return func(s *MessageStore) { s.newID = newID }
}

// MessageStore is an append-only ordered sequence of messages.
// Position reflects insertion order; timestamps are never used to sort,
// so clock skew cannot reorder what consumers already saw.
type MessageStore struct {
	mu       sync.RWMutex
	log      *slog.Logger
	messages []domain.Message
	index    map[string]int
	now      func() time.Time
	newID    func() string
}

func NewMessageStore(log *slog.Logger, opts ...Option) *MessageStore {
	s := &MessageStore{
		log:   log,
		index: make(map[string]int),
		now:   time.Now,
		newID: uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Append records a local echo. With no transport configured the message
// is immediately Sent.
func (s *MessageStore) Append(text string, sender domain.Sender) (domain.Message, error) {
	return s.append(text, sender, domain.DeliverySent)
}

// AppendPending records a message awaiting acknowledgment; a transport
// later settles it with Resolve.
func (s *MessageStore) AppendPending(text string, sender domain.Sender) (domain.Message, error) {
	return s.append(text, sender, domain.DeliveryPending)
}

func (s *MessageStore) append(text string, sender domain.Sender, state domain.DeliveryState) (domain.Message, error) {
	if strings.TrimSpace(text) == "" {
		return domain.Message{}, errors.ErrEmptyMessage
	}
	if sender != domain.SenderMe && sender != domain.SenderOther {
		return domain.Message{}, errors.New(errors.KindValidation, "unknown sender "+string(sender))
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.newID()
	if _, taken := s.index[id]; taken {
		return domain.Message{}, errors.New(errors.KindState, "duplicate message id "+id)
	}
	message := domain.Message{
		ID:            id,
		Text:          text,
		Sender:        sender,
		Timestamp:     s.now(),
		DeliveryState: state,
	}
	s.index[id] = len(s.messages)
	s.messages = append(s.messages, message)
	s.log.Debug("Message appended", "id", id, "sender", sender, "state", state)
	return message, nil
}

// Resolve moves a pending message to Sent or Failed in place.
// Its position in the sequence never changes.
func (s *MessageStore) Resolve(id string, state domain.DeliveryState) (domain.Message, error) {
	if state != domain.DeliverySent && state != domain.DeliveryFailed {
		return domain.Message{}, errors.ErrInvalidTransition
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	i, ok := s.index[id]
	if !ok {
		return domain.Message{}, errors.ErrMessageNotFound
	}
	if s.messages[i].DeliveryState != domain.DeliveryPending {
		return domain.Message{}, errors.ErrInvalidTransition
	}
	s.messages[i].DeliveryState = state
	return s.messages[i], nil
}

// List returns the messages in insertion order. The slice is a snapshot
// owned by the caller; later appends do not show up in it.
func (s *MessageStore) List() []domain.Message {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]domain.Message(nil), s.messages...)
}

func (s *MessageStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.messages)
}

// Clear empties the store; used when the session ends.
func (s *MessageStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.messages) > 0 {
		s.log.Debug("Messages cleared", "count", len(s.messages))
	}
	s.messages = nil
	s.index = make(map[string]int)
}
