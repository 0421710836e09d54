// Package ipc exposes daemon control over a Unix domain socket.
//
// The session bus surface is for native-messaging clients; this socket is
// the local operator channel behind the status and stop commands. The
// protocol is JSON-RPC via net/rpc with request/response structs defined
// in types.go.
package ipc
