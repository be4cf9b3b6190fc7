package runtime

import (
	"chat-shell/contract"
	"sync"

	"github.com/google/uuid"
)

type subscription struct {
	id       string
	observer contract.SessionObserver
}

// Registry keeps session observers in subscription order.
type Registry struct {
	mu            sync.RWMutex
	subscriptions []subscription
}

func NewRegistry() *Registry {
	return &Registry{}
}

// Subscribe registers an observer and returns the id needed to remove it.
// The same observer may be subscribed twice; each subscription is notified.
func (r *Registry) Subscribe(observer contract.SessionObserver) string {
	r.mu.Lock()
	defer r.mu.Unlock()

	id := uuid.NewString()
	r.subscriptions = append(r.subscriptions, subscription{id: id, observer: observer})
	return id
}

// Unsubscribe removes a subscription. Unknown ids are ignored.
func (r *Registry) Unsubscribe(subscriptionID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i, s := range r.subscriptions {
		if s.id == subscriptionID {
			r.subscriptions = append(r.subscriptions[:i:i], r.subscriptions[i+1:]...)
			return
		}
	}
}

// Observers returns a copy, so notifying never races with Subscribe.
func (r *Registry) Observers() []contract.SessionObserver {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if len(r.subscriptions) == 0 {
		return nil
	}
	observers := make([]contract.SessionObserver, 0, len(r.subscriptions))
	for _, s := range r.subscriptions {
		observers = append(observers, s.observer)
	}
	return observers
}
