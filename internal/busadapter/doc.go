// Package busadapter exposes the proxy coordinator on the session bus.
//
// The adapter owns a private bus connection and dispatches incoming
// method calls itself instead of using the reflective export API. Manual
// dispatch is what makes two behaviors possible: abandoned requests send
// no reply at all, and the Start reply's pipe descriptors can be closed
// locally the moment the reply has been written to the socket.
package busadapter
