// Package events fans committed tree changes out to live subscribers.
package events

import (
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"bookmarkd/internal/domain/models"
	"bookmarkd/internal/domain/services"
)

// subscriberBuffer is the number of undelivered events a subscriber may lag behind
const subscriberBuffer = 16

// Broker is an in-process publish/subscribe hub for change events
type Broker struct {
	mu      sync.RWMutex
	clients map[string]chan models.ChangeEvent
	closed  bool
	logger  *slog.Logger
}

var _ services.ChangeNotifier = (*Broker)(nil)

// NewBroker creates an empty broker
func NewBroker(logger *slog.Logger) *Broker {
	return &Broker{
		clients: make(map[string]chan models.ChangeEvent),
		logger:  logger,
	}
}

// Subscribe registers a client. The channel is closed by Unsubscribe or Close.
func (b *Broker) Subscribe() (string, <-chan models.ChangeEvent) {
	b.mu.Lock()
	defer b.mu.Unlock()

	ch := make(chan models.ChangeEvent, subscriberBuffer)
	if b.closed {
		close(ch)
		return "", ch
	}

	clientID := uuid.NewString()
	b.clients[clientID] = ch
	return clientID, ch
}

// Unsubscribe removes a client. Safe to call more than once.
func (b *Broker) Unsubscribe(clientID string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if ch, ok := b.clients[clientID]; ok {
		close(ch)
		delete(b.clients, clientID)
	}
}

// Publish delivers event to every subscriber without blocking.
// A subscriber whose buffer is full misses the event.
func (b *Broker) Publish(event models.ChangeEvent) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for clientID, ch := range b.clients {
		select {
		case ch <- event:
		default:
			b.logger.Warn("event dropped, subscriber is behind", "client_id", clientID, "kind", event.Kind)
		}
	}
}

// Subscribers returns the number of connected clients
func (b *Broker) Subscribers() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.clients)
}

// Close disconnects every subscriber; later subscriptions are closed immediately
func (b *Broker) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()

	for clientID, ch := range b.clients {
		close(ch)
		delete(b.clients, clientID)
	}
	b.closed = true
}
