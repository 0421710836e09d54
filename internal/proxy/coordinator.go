package proxy

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"xnmp/internal/cancellation"
	"xnmp/internal/hostproc"
	"xnmp/internal/logging"
	"xnmp/internal/manifest"
	"xnmp/internal/registry"
	"xnmp/internal/watch"
)

// ErrAbandoned reports that the requesting client's cancellation token won
// the race. It is never surfaced to the client as an error; the adapter
// simply drops the reply.
var ErrAbandoned = errors.New("request abandoned")

// ErrSpawnFailed reports that the host executable could not be started.
var ErrSpawnFailed = errors.New("failed to start native messaging host")

// Notifier delivers the Closed notification to the client that started a
// host.
type Notifier interface {
	Closed(client, handle string)
}

// StartReply carries the Start commitment-point payload: the three
// proxy-side pipe ends and the running-host handle.
type StartReply struct {
	Stdin  *os.File
	Stdout *os.File
	Stderr *os.File
	Handle string
}

// CommitFunc transmits a StartReply to the requester. It takes ownership
// of the reply's files whether or not it returns an error. After a
// successful commit no further synchronous error can reach the caller.
type CommitFunc func(StartReply) error

// Coordinator orchestrates proxy operations over its owned components.
type Coordinator struct {
	resolver *manifest.Resolver
	launcher *hostproc.Launcher
	registry *registry.Registry
	tracker  *watch.Tracker
	notifier Notifier
	logger   *slog.Logger
}

// New constructs a coordinator owning the given components. The notifier
// is attached separately with SetNotifier once the bus service exists.
func New(resolver *manifest.Resolver, launcher *hostproc.Launcher, reg *registry.Registry, tracker *watch.Tracker, logger *slog.Logger) *Coordinator {
	return &Coordinator{
		resolver: resolver,
		launcher: launcher,
		registry: reg,
		tracker:  tracker,
		logger:   logging.NewComponentLogger(logger, "proxy"),
	}
}

// SetNotifier attaches the Closed-notification sink. It must be called
// before the coordinator serves its first Start.
func (c *Coordinator) SetNotifier(notifier Notifier) {
	c.notifier = notifier
}

// Tracker returns the client cancellation tracker.
func (c *Coordinator) Tracker() *watch.Tracker {
	return c.tracker
}

// RunningHosts returns the number of currently registered hosts.
func (c *Coordinator) RunningHosts() int {
	return c.registry.Len()
}

// SearchPaths returns the resolver's active search path sets.
func (c *Coordinator) SearchPaths() manifest.SearchPaths {
	return c.resolver.SearchPaths()
}

// Shutdown fires every tracked client token, aborting all in-flight
// requests and terminating every running host.
func (c *Coordinator) Shutdown() {
	c.tracker.Shutdown()
}

// GetManifest resolves and returns the raw manifest bytes for hostName.
func (c *Coordinator) GetManifest(ctx context.Context, client, hostName, modeStr string) ([]byte, error) {
	c.logger.Info("handling GetManifest",
		logging.String(logging.FieldHost, hostName),
		logging.String("mode", modeStr),
		logging.String(logging.FieldClient, client))

	token := c.tracker.Ensure(client)

	type result struct {
		raw []byte
		err error
	}
	done := make(chan result, 1)
	go func() {
		m, err := c.resolver.Resolve(ctx, hostName, manifest.ParseMode(modeStr))
		if err != nil {
			done <- result{nil, err}
			return
		}
		done <- result{m.Raw, nil}
	}()

	select {
	case res := <-done:
		return res.raw, res.err
	case <-token.Done():
		return nil, ErrAbandoned
	}
}

// Start resolves, launches, and supervises a host. commit is invoked with
// the descriptors and handle once the host is registered; it is the
// commitment point. The call returns after commit (or an earlier error);
// supervision continues until the host exits or is canceled, at which
// point the host is force-terminated, Closed is emitted to the requester,
// and the handle is unregistered.
func (c *Coordinator) Start(ctx context.Context, client, hostName, extensionOrOrigin, modeStr string, commit CommitFunc) error {
	c.logger.Info("handling Start",
		logging.String(logging.FieldHost, hostName),
		logging.String("mode", modeStr),
		logging.String(logging.FieldClient, client))

	token := c.tracker.Ensure(client)

	done := make(chan error, 1)
	go func() {
		done <- c.runStart(ctx, client, token, hostName, extensionOrOrigin, manifest.ParseMode(modeStr), commit)
	}()

	select {
	case err := <-done:
		return err
	case <-token.Done():
		// The spawned work keeps running; if it already launched a host,
		// its supervision observes the same token and tears down.
		return ErrAbandoned
	}
}

func (c *Coordinator) runStart(ctx context.Context, client string, clientToken *cancellation.Token, hostName, extensionOrOrigin string, mode manifest.Mode, commit CommitFunc) error {
	m, err := c.resolver.Resolve(ctx, hostName, mode)
	if err != nil {
		return err
	}

	host, err := c.launcher.Launch(m, extensionOrOrigin, mode)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrSpawnFailed, err)
	}

	// Register before replying so a concurrent Close targeting the
	// about-to-be-returned handle cannot outrun registration.
	handle, hostToken := c.registry.Register()

	stdin, stdout, stderr := host.TakeFiles()
	if err := commit(StartReply{Stdin: stdin, Stdout: stdout, Stderr: stderr, Handle: handle}); err != nil {
		c.logger.Warn("failed to transmit Start reply",
			logging.String(logging.FieldHandle, handle),
			logging.Error(err),
			logging.String(logging.FieldEventType, "start_reply_failed"))
	}

	select {
	case waitErr := <-host.WaitChan():
		if waitErr != nil {
			c.logger.Debug("native messaging host failed",
				logging.String(logging.FieldHandle, handle),
				logging.Error(waitErr))
		}
	case <-hostToken.Done():
	case <-clientToken.Done():
	}

	host.ForceExit()
	_ = host.Wait()

	if c.notifier != nil {
		c.notifier.Closed(client, handle)
	}
	c.registry.Unregister(handle)
	return nil
}

// Close fires cancellation on the running host registered under handle.
// It succeeds whether or not the handle exists; any caller may close any
// handle.
func (c *Coordinator) Close(ctx context.Context, client, handle string) error {
	c.logger.Info("handling Close",
		logging.String(logging.FieldHandle, handle),
		logging.String(logging.FieldClient, client))

	token := c.tracker.Ensure(client)

	done := make(chan struct{})
	go func() {
		c.registry.Cancel(handle)
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-token.Done():
		return ErrAbandoned
	}
}
