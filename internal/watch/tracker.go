// Package watch maps bus clients to cancellation tokens so their in-flight
// requests abort when they disconnect.
package watch

import (
	"log/slog"
	"sync"

	"xnmp/internal/cancellation"
	"xnmp/internal/logging"
)

// Tracker is a single-writer map of client identity to cancellation token.
// A client's concurrent requests share one token; firing it cancels them
// all at once.
type Tracker struct {
	logger *slog.Logger

	mu      sync.Mutex
	clients map[string]*cancellation.Token
}

// NewTracker constructs an empty tracker.
func NewTracker(logger *slog.Logger) *Tracker {
	return &Tracker{
		logger:  logging.NewComponentLogger(logger, "watch"),
		clients: make(map[string]*cancellation.Token),
	}
}

// Ensure returns the live token for client, creating one lazily on the
// client's first request.
func (t *Tracker) Ensure(client string) *cancellation.Token {
	t.mu.Lock()
	defer t.mu.Unlock()

	if token, ok := t.clients[client]; ok {
		return token
	}
	token := cancellation.NewToken()
	t.clients[client] = token
	return token
}

// Disconnected removes and fires the token for a client that left the bus.
// Unknown clients are a no-op.
func (t *Tracker) Disconnected(client string) {
	t.mu.Lock()
	token := t.clients[client]
	delete(t.clients, client)
	t.mu.Unlock()

	if token == nil {
		return
	}
	t.logger.Info("canceling requests for disconnected client",
		logging.String(logging.FieldClient, client),
		logging.String(logging.FieldEventType, "client_disconnected"))
	token.Fire()
}

// Shutdown fires every tracked token and clears the map. Called once when
// the process is going down.
func (t *Tracker) Shutdown() {
	t.mu.Lock()
	tokens := make([]*cancellation.Token, 0, len(t.clients))
	for _, token := range t.clients {
		tokens = append(tokens, token)
	}
	t.clients = make(map[string]*cancellation.Token)
	t.mu.Unlock()

	for _, token := range tokens {
		token.Fire()
	}
}

// Len returns the number of clients with live tokens.
func (t *Tracker) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.clients)
}
