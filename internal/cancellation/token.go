// Package cancellation provides the one-shot token used to abort in-flight
// proxy operations and running native messaging hosts.
package cancellation

import "sync"

// Token is a one-shot, idempotent cancellation signal. Any number of
// waiters may select on Done; firing is monotonic and never reverts.
type Token struct {
	once sync.Once
	ch   chan struct{}
}

// NewToken returns an unfired token.
func NewToken() *Token {
	return &Token{ch: make(chan struct{})}
}

// Fire signals the token. Subsequent calls are no-ops.
func (t *Token) Fire() {
	t.once.Do(func() { close(t.ch) })
}

// Done returns a channel closed once the token fires.
func (t *Token) Done() <-chan struct{} {
	return t.ch
}

// Fired reports whether the token has fired without blocking.
func (t *Token) Fired() bool {
	select {
	case <-t.ch:
		return true
	default:
		return false
	}
}
