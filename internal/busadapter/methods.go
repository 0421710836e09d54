package busadapter

import (
	"context"
	"errors"
	"os"

	"github.com/godbus/dbus/v5"

	"xnmp/internal/logging"
	"xnmp/internal/manifest"
	"xnmp/internal/proxy"
)

// D-Bus error names surfaced to callers.
const (
	errNameInvalidArgs      = "org.freedesktop.DBus.Error.InvalidArgs"
	errNameFileNotFound     = "org.freedesktop.DBus.Error.FileNotFound"
	errNameSpawnFailed      = "org.freedesktop.DBus.Error.Spawn.ExecFailed"
	errNameFailed           = "org.freedesktop.DBus.Error.Failed"
	errNameUnknownMethod    = "org.freedesktop.DBus.Error.UnknownMethod"
	errNameUnknownInterface = "org.freedesktop.DBus.Error.UnknownInterface"
	errNameUnknownObject    = "org.freedesktop.DBus.Error.UnknownObject"
	errNameUnknownProperty  = "org.freedesktop.DBus.Error.UnknownProperty"
	errNamePropertyReadOnly = "org.freedesktop.DBus.Error.PropertyReadOnly"
)

// dispatch routes one inbound method call. Every call is handled on its
// own goroutine; no ordering is guaranteed between requests.
func (s *Service) dispatch(msg *dbus.Message) {
	if msg.Type != dbus.TypeMethodCall {
		return
	}
	go s.handleCall(msg)
}

func (s *Service) handleCall(msg *dbus.Message) {
	path, _ := msg.Headers[dbus.FieldPath].Value().(dbus.ObjectPath)
	iface, _ := msg.Headers[dbus.FieldInterface].Value().(string)
	member, _ := msg.Headers[dbus.FieldMember].Value().(string)
	sender, _ := msg.Headers[dbus.FieldSender].Value().(string)

	if path != dbus.ObjectPath(ObjectPath) {
		s.sendError(msg, errNameUnknownObject, "no such object")
		return
	}

	switch iface {
	case Interface:
		s.handleProxyCall(msg, member, sender)
	case "org.freedesktop.DBus.Introspectable":
		if member != "Introspect" {
			s.sendError(msg, errNameUnknownMethod, "no such method")
			return
		}
		s.sendReply(msg, introspectXML)
	case "org.freedesktop.DBus.Properties":
		s.handlePropertiesCall(msg, member)
	case "org.freedesktop.DBus.Peer":
		if member != "Ping" {
			s.sendError(msg, errNameUnknownMethod, "no such method")
			return
		}
		s.sendReply(msg)
	default:
		s.sendError(msg, errNameUnknownInterface, "no such interface")
	}
}

func (s *Service) handleProxyCall(msg *dbus.Message, member, sender string) {
	switch member {
	case "GetManifest":
		name, mode, ok := twoStringsAndOptions(msg.Body)
		if !ok {
			s.sendError(msg, errNameInvalidArgs, "expected (ssa{sv})")
			return
		}
		raw, err := s.coordinator.GetManifest(s.ctx, sender, name, mode)
		if err != nil {
			s.sendOperationError(msg, err)
			return
		}
		s.sendReply(msg, raw)

	case "Start":
		if len(msg.Body) != 4 {
			s.sendError(msg, errNameInvalidArgs, "expected (sssa{sv})")
			return
		}
		name, nameOK := msg.Body[0].(string)
		extensionOrOrigin, extOK := msg.Body[1].(string)
		mode, modeOK := msg.Body[2].(string)
		if !nameOK || !extOK || !modeOK {
			s.sendError(msg, errNameInvalidArgs, "expected (sssa{sv})")
			return
		}
		commit := func(reply proxy.StartReply) error {
			// conn.Send writes synchronously; once it returns, the
			// descriptors are in flight and our pipe ends can go.
			defer closeFiles(reply.Stdin, reply.Stdout, reply.Stderr)
			return s.sendReply(msg,
				dbus.UnixFD(reply.Stdin.Fd()),
				dbus.UnixFD(reply.Stdout.Fd()),
				dbus.UnixFD(reply.Stderr.Fd()),
				reply.Handle)
		}
		if err := s.coordinator.Start(s.ctx, sender, name, extensionOrOrigin, mode, commit); err != nil {
			s.sendOperationError(msg, err)
		}

	case "Close":
		handle, ok := oneStringAndOptions(msg.Body)
		if !ok {
			s.sendError(msg, errNameInvalidArgs, "expected (sa{sv})")
			return
		}
		if err := s.coordinator.Close(s.ctx, sender, handle); err != nil {
			s.sendOperationError(msg, err)
			return
		}
		s.sendReply(msg)

	default:
		s.sendError(msg, errNameUnknownMethod, "no such method")
	}
}

func (s *Service) handlePropertiesCall(msg *dbus.Message, member string) {
	switch member {
	case "Get":
		iface, prop, ok := twoStrings(msg.Body)
		if !ok {
			s.sendError(msg, errNameInvalidArgs, "expected (ss)")
			return
		}
		if iface != Interface || prop != "Version" {
			s.sendError(msg, errNameUnknownProperty, "no such property")
			return
		}
		s.sendReply(msg, dbus.MakeVariant(Version))
	case "GetAll":
		s.sendReply(msg, map[string]dbus.Variant{"Version": dbus.MakeVariant(Version)})
	case "Set":
		s.sendError(msg, errNamePropertyReadOnly, "all properties are read-only")
	default:
		s.sendError(msg, errNameUnknownMethod, "no such method")
	}
}

// sendOperationError maps a coordinator error to a bus error reply.
// Abandoned requests get no reply of any kind.
func (s *Service) sendOperationError(msg *dbus.Message, err error) {
	switch {
	case errors.Is(err, proxy.ErrAbandoned):
	case errors.Is(err, manifest.ErrInvalidName):
		s.sendError(msg, errNameInvalidArgs, err.Error())
	case errors.Is(err, manifest.ErrNotFound):
		s.sendError(msg, errNameFileNotFound, err.Error())
	case errors.Is(err, proxy.ErrSpawnFailed):
		s.sendError(msg, errNameSpawnFailed, err.Error())
	case errors.Is(err, context.Canceled):
	default:
		s.sendError(msg, errNameFailed, err.Error())
	}
}

func (s *Service) sendReply(call *dbus.Message, values ...interface{}) error {
	if call.Flags&dbus.FlagNoReplyExpected != 0 {
		return nil
	}
	reply := &dbus.Message{
		Type: dbus.TypeMethodReply,
		Headers: map[dbus.HeaderField]dbus.Variant{
			dbus.FieldReplySerial: dbus.MakeVariant(call.Serial()),
			dbus.FieldDestination: call.Headers[dbus.FieldSender],
		},
		Body: values,
	}
	if len(values) > 0 {
		reply.Headers[dbus.FieldSignature] = dbus.MakeVariant(dbus.SignatureOf(values...))
	}
	if result := s.conn.Send(reply, nil); result != nil && result.Err != nil {
		s.logger.Warn("failed to send reply",
			logging.Error(result.Err),
			logging.String(logging.FieldEventType, "reply_send_failed"))
		return result.Err
	}
	return nil
}

func (s *Service) sendError(call *dbus.Message, name, message string) {
	if call.Flags&dbus.FlagNoReplyExpected != 0 {
		return
	}
	reply := &dbus.Message{
		Type: dbus.TypeError,
		Headers: map[dbus.HeaderField]dbus.Variant{
			dbus.FieldReplySerial: dbus.MakeVariant(call.Serial()),
			dbus.FieldDestination: call.Headers[dbus.FieldSender],
			dbus.FieldErrorName:   dbus.MakeVariant(name),
			dbus.FieldSignature:   dbus.MakeVariant(dbus.SignatureOf("")),
		},
		Body: []interface{}{message},
	}
	if result := s.conn.Send(reply, nil); result != nil && result.Err != nil {
		s.logger.Warn("failed to send error reply",
			logging.String("error_name", name),
			logging.Error(result.Err),
			logging.String(logging.FieldEventType, "reply_send_failed"))
	}
}

func twoStringsAndOptions(body []interface{}) (string, string, bool) {
	if len(body) != 3 {
		return "", "", false
	}
	first, firstOK := body[0].(string)
	second, secondOK := body[1].(string)
	return first, second, firstOK && secondOK
}

func oneStringAndOptions(body []interface{}) (string, bool) {
	if len(body) != 2 {
		return "", false
	}
	value, ok := body[0].(string)
	return value, ok
}

func twoStrings(body []interface{}) (string, string, bool) {
	if len(body) != 2 {
		return "", "", false
	}
	first, firstOK := body[0].(string)
	second, secondOK := body[1].(string)
	return first, second, firstOK && secondOK
}

func closeFiles(files ...*os.File) {
	for _, file := range files {
		if file != nil {
			_ = file.Close()
		}
	}
}
