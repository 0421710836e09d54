package hostproc

import (
	"os"
	"os/exec"
	"sync"
)

// Host is a launched native messaging subprocess. The proxy-side pipe ends
// are owned by the Host until TakeFiles transfers them; afterwards the
// Host retains only the process wait handle.
type Host struct {
	cmd *exec.Cmd

	mu     sync.Mutex
	stdin  *os.File
	stdout *os.File
	stderr *os.File

	waitOnce sync.Once
	waitErr  error
}

// PID returns the subprocess id.
func (h *Host) PID() int {
	return h.cmd.Process.Pid
}

// TakeFiles transfers ownership of the proxy-side pipe ends to the caller.
// Subsequent calls return nils.
func (h *Host) TakeFiles() (stdin, stdout, stderr *os.File) {
	h.mu.Lock()
	defer h.mu.Unlock()
	stdin, stdout, stderr = h.stdin, h.stdout, h.stderr
	h.stdin, h.stdout, h.stderr = nil, nil, nil
	return stdin, stdout, stderr
}

// CloseFiles closes any pipe ends still owned by the host. Used on error
// paths before the descriptors were handed off.
func (h *Host) CloseFiles() {
	stdin, stdout, stderr := h.TakeFiles()
	closeAll(stdin, stdout, stderr)
}

// Wait blocks until the subprocess exits and returns its wait error. Safe
// to call from multiple goroutines; the underlying wait runs once.
func (h *Host) Wait() error {
	h.waitOnce.Do(func() {
		h.waitErr = h.cmd.Wait()
	})
	return h.waitErr
}

// WaitChan returns a channel that receives the wait result once the
// subprocess exits.
func (h *Host) WaitChan() <-chan error {
	done := make(chan error, 1)
	go func() { done <- h.Wait() }()
	return done
}

// ForceExit kills the subprocess if it is still alive. Errors from an
// already-exited process are ignored.
func (h *Host) ForceExit() {
	if h.cmd.Process != nil {
		_ = h.cmd.Process.Kill()
	}
}
