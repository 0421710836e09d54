package busadapter

import (
	"fmt"
	"os"

	"github.com/godbus/dbus/v5"
)

// StartedHost is the client-side result of a Start call. The caller owns
// the three files and must close them.
type StartedHost struct {
	Stdin  *os.File
	Stdout *os.File
	Stderr *os.File
	Handle string
}

// Client talks to a running proxy over the session bus. It backs the CLI
// commands; sandboxed callers would reach the same interface through
// their portal-filtered bus connection.
type Client struct {
	conn   *dbus.Conn
	object dbus.BusObject
}

// NewClient connects to the session bus and binds the proxy object.
func NewClient(busName string) (*Client, error) {
	if busName == "" {
		busName = BusName
	}
	conn, err := dbus.SessionBus()
	if err != nil {
		return nil, fmt.Errorf("connect session bus: %w", err)
	}
	return &Client{
		conn:   conn,
		object: conn.Object(busName, dbus.ObjectPath(ObjectPath)),
	}, nil
}

// GetManifest returns the raw manifest bytes for a host.
func (c *Client) GetManifest(name, mode string) ([]byte, error) {
	var raw []byte
	call := c.object.Call(Interface+".GetManifest", 0, name, mode, map[string]dbus.Variant{})
	if call.Err != nil {
		return nil, call.Err
	}
	if err := call.Store(&raw); err != nil {
		return nil, fmt.Errorf("decode GetManifest reply: %w", err)
	}
	return raw, nil
}

// Start launches a host and returns its stdio along with the run handle.
func (c *Client) Start(name, extensionOrOrigin, mode string) (*StartedHost, error) {
	var (
		stdin, stdout, stderr dbus.UnixFD
		handle                string
	)
	call := c.object.Call(Interface+".Start", 0, name, extensionOrOrigin, mode, map[string]dbus.Variant{})
	if call.Err != nil {
		return nil, call.Err
	}
	if err := call.Store(&stdin, &stdout, &stderr, &handle); err != nil {
		return nil, fmt.Errorf("decode Start reply: %w", err)
	}
	return &StartedHost{
		Stdin:  os.NewFile(uintptr(stdin), "host-stdin"),
		Stdout: os.NewFile(uintptr(stdout), "host-stdout"),
		Stderr: os.NewFile(uintptr(stderr), "host-stderr"),
		Handle: handle,
	}, nil
}

// Close requests termination of a running host. It succeeds whether or
// not the handle still names a live run.
func (c *Client) Close(handle string) error {
	return c.object.Call(Interface+".Close", 0, handle, map[string]dbus.Variant{}).Err
}

// Version reads the interface version property.
func (c *Client) Version() (uint32, error) {
	variant, err := c.object.GetProperty(Interface + ".Version")
	if err != nil {
		return 0, err
	}
	version, ok := variant.Value().(uint32)
	if !ok {
		return 0, fmt.Errorf("unexpected Version type %T", variant.Value())
	}
	return version, nil
}

// SubscribeClosed delivers Closed signals on the returned channel.
func (c *Client) SubscribeClosed() (<-chan *dbus.Signal, error) {
	if err := c.conn.AddMatchSignal(
		dbus.WithMatchInterface(Interface),
		dbus.WithMatchMember("Closed"),
	); err != nil {
		return nil, fmt.Errorf("subscribe Closed: %w", err)
	}
	signals := make(chan *dbus.Signal, 8)
	c.conn.Signal(signals)
	return signals, nil
}

// Disconnect releases the bus connection.
func (c *Client) Disconnect() error {
	return c.conn.Close()
}
