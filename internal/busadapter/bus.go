package busadapter

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/godbus/dbus/v5"

	"xnmp/internal/logging"
	"xnmp/internal/proxy"
)

// Bus identity constants. The object path doubles as the prefix under
// which running-host handles are minted.
const (
	BusName    = "org.freedesktop.NativeMessagingProxy"
	ObjectPath = "/org/freedesktop/NativeMessagingProxy"
	Interface  = "org.freedesktop.NativeMessagingProxy"

	// Version is the interface version exposed as a bus property.
	Version uint32 = 1
)

// Exit codes for the daemon process.
const (
	ExitOK    = 0
	ExitFatal = 1
	ExitNoBus = 2
)

// ExitError carries the process exit code a bus failure maps to.
type ExitError struct {
	Code int
	Err  error
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("exit %d: %v", e.Code, e.Err)
}

func (e *ExitError) Unwrap() error { return e.Err }

// Options configures the bus service.
type Options struct {
	// BusName overrides the default well-known name. Empty means BusName.
	BusName string
	// Replace requests replacement of an existing name owner.
	Replace bool
}

// Service binds a coordinator to a session bus connection.
type Service struct {
	conn        *dbus.Conn
	coordinator *proxy.Coordinator
	name        string
	logger      *slog.Logger

	// ctx is the serving context, set by Run and inherited by every
	// in-flight method call.
	ctx context.Context
}

// Connect opens a private session bus connection and acquires the
// well-known name. Connection failures map to ExitNoBus; name acquisition
// failures map to ExitFatal.
func Connect(coordinator *proxy.Coordinator, opts Options, logger *slog.Logger) (*Service, error) {
	name := opts.BusName
	if name == "" {
		name = BusName
	}

	conn, err := dbus.SessionBusPrivate()
	if err != nil {
		return nil, &ExitError{Code: ExitNoBus, Err: fmt.Errorf("no session bus: %w", err)}
	}
	if err := conn.Auth(nil); err != nil {
		_ = conn.Close()
		return nil, &ExitError{Code: ExitNoBus, Err: fmt.Errorf("session bus auth: %w", err)}
	}
	if err := conn.Hello(); err != nil {
		_ = conn.Close()
		return nil, &ExitError{Code: ExitNoBus, Err: fmt.Errorf("session bus hello: %w", err)}
	}

	// Watch client disconnects before taking over message dispatch.
	if err := conn.AddMatchSignal(
		dbus.WithMatchSender("org.freedesktop.DBus"),
		dbus.WithMatchInterface("org.freedesktop.DBus"),
		dbus.WithMatchMember("NameOwnerChanged"),
	); err != nil {
		_ = conn.Close()
		return nil, &ExitError{Code: ExitFatal, Err: fmt.Errorf("subscribe NameOwnerChanged: %w", err)}
	}

	flags := dbus.NameFlagAllowReplacement
	if opts.Replace {
		flags |= dbus.NameFlagReplaceExisting
	}
	reply, err := conn.RequestName(name, flags)
	if err != nil {
		_ = conn.Close()
		return nil, &ExitError{Code: ExitFatal, Err: fmt.Errorf("request bus name %s: %w", name, err)}
	}
	if reply != dbus.RequestNameReplyPrimaryOwner {
		_ = conn.Close()
		return nil, &ExitError{Code: ExitFatal, Err: fmt.Errorf("bus name %s already owned", name)}
	}

	return &Service{
		conn:        conn,
		coordinator: coordinator,
		name:        name,
		logger:      logging.NewComponentLogger(logger, "bus"),
	}, nil
}

// UniqueName returns the connection's unique bus name.
func (s *Service) UniqueName() string {
	return s.conn.Names()[0]
}

// Name returns the acquired well-known name.
func (s *Service) Name() string {
	return s.name
}

// Run serves bus requests until the context is canceled or the well-known
// name is lost. Both are graceful outcomes and return nil.
func (s *Service) Run(ctx context.Context) error {
	s.ctx = ctx
	messages := make(chan *dbus.Message, 64)
	s.conn.Eavesdrop(messages)
	defer s.conn.Close()

	s.logger.Info("bus name acquired",
		logging.String("name", s.name),
		logging.String("unique_name", s.UniqueName()),
		logging.String(logging.FieldEventType, "bus_acquired"))

	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-messages:
			if !ok {
				return nil
			}
			if s.handleLifecycleSignal(msg) {
				s.logger.Info("bus name lost",
					logging.String("name", s.name),
					logging.String(logging.FieldEventType, "bus_name_lost"))
				return nil
			}
			s.dispatch(msg)
		}
	}
}

// handleLifecycleSignal processes bus daemon signals. It returns true when
// the well-known name was lost to another owner.
func (s *Service) handleLifecycleSignal(msg *dbus.Message) bool {
	if msg.Type != dbus.TypeSignal {
		return false
	}
	member, _ := msg.Headers[dbus.FieldMember].Value().(string)
	switch member {
	case "NameLost":
		if len(msg.Body) == 1 && msg.Body[0] == s.name {
			return true
		}
	case "NameOwnerChanged":
		s.handleNameOwnerChanged(msg)
	}
	return false
}

// handleNameOwnerChanged fires the cancellation token of a unique-name
// client whose connection went away.
func (s *Service) handleNameOwnerChanged(msg *dbus.Message) {
	if len(msg.Body) != 3 {
		return
	}
	name, _ := msg.Body[0].(string)
	oldOwner, _ := msg.Body[1].(string)
	newOwner, _ := msg.Body[2].(string)

	if len(name) == 0 || name[0] != ':' || name != oldOwner || newOwner != "" {
		return
	}
	s.coordinator.Tracker().Disconnected(name)
}

// Closed emits the Closed signal to the client that started the host.
func (s *Service) Closed(client, handle string) {
	s.logger.Debug("emitting Closed signal",
		logging.String(logging.FieldClient, client),
		logging.String(logging.FieldHandle, handle))

	signal := &dbus.Message{
		Type: dbus.TypeSignal,
		Headers: map[dbus.HeaderField]dbus.Variant{
			dbus.FieldDestination: dbus.MakeVariant(client),
			dbus.FieldPath:        dbus.MakeVariant(dbus.ObjectPath(ObjectPath)),
			dbus.FieldInterface:   dbus.MakeVariant(Interface),
			dbus.FieldMember:      dbus.MakeVariant("Closed"),
			dbus.FieldSignature:   dbus.MakeVariant(dbus.SignatureOf("", map[string]dbus.Variant{})),
		},
		Body: []interface{}{handle, map[string]dbus.Variant{}},
	}
	if result := s.conn.Send(signal, nil); result != nil && result.Err != nil {
		s.logger.Warn("failed emitting Closed signal",
			logging.String(logging.FieldHandle, handle),
			logging.Error(result.Err),
			logging.String(logging.FieldEventType, "closed_signal_failed"))
	}
}
