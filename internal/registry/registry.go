// Package registry tracks in-flight launched hosts under opaque,
// unpredictable handles so a later Close can cancel them out of band.
package registry

import (
	"crypto/rand"
	"encoding/binary"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"sync"

	"xnmp/internal/cancellation"
	"xnmp/internal/logging"
)

// Registry is a single-writer map of handle to cancellation token. All
// operations are mutually exclusive across concurrent callers.
type Registry struct {
	prefix string
	logger *slog.Logger

	mu      sync.Mutex
	running map[string]*cancellation.Token
}

// New constructs a registry. Handles are formatted as object-path-like
// strings below prefix.
func New(prefix string, logger *slog.Logger) *Registry {
	return &Registry{
		prefix:  strings.TrimRight(prefix, "/"),
		logger:  logging.NewComponentLogger(logger, "registry"),
		running: make(map[string]*cancellation.Token),
	}
}

// Register stores a fresh cancellation token under a new unique handle.
// Handle values are random, not sequential; collisions regenerate.
func (r *Registry) Register() (string, *cancellation.Token) {
	token := cancellation.NewToken()

	r.mu.Lock()
	defer r.mu.Unlock()

	var handle string
	for {
		handle = fmt.Sprintf("%s/%s", r.prefix, strconv.FormatUint(randomUint64(), 10))
		if _, exists := r.running[handle]; !exists {
			break
		}
	}
	r.running[handle] = token

	r.logger.Debug("registered running messaging host",
		logging.String(logging.FieldHandle, handle))
	return handle, token
}

// Unregister removes the entry for handle. Absent handles are a no-op.
func (r *Registry) Unregister(handle string) {
	r.mu.Lock()
	delete(r.running, handle)
	r.mu.Unlock()

	r.logger.Debug("unregistered running messaging host",
		logging.String(logging.FieldHandle, handle))
}

// Cancel fires the token registered under handle, if any. The entry itself
// stays until the owning unit of work observes the firing and unregisters.
func (r *Registry) Cancel(handle string) {
	r.mu.Lock()
	token := r.running[handle]
	r.mu.Unlock()

	if token == nil {
		return
	}
	r.logger.Debug("canceling running messaging host",
		logging.String(logging.FieldHandle, handle))
	token.Fire()
}

// Len returns the number of currently registered hosts.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.running)
}

func randomUint64() uint64 {
	var buf [8]byte
	if _, err := rand.Read(buf[:]); err != nil {
		// crypto/rand never fails on supported platforms.
		panic(fmt.Sprintf("read random bytes: %v", err))
	}
	return binary.BigEndian.Uint64(buf[:])
}
