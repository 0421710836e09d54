// Package proxy coordinates the three public operations of the native
// messaging proxy: GetManifest, Start, and Close.
//
// Every operation runs as an independent unit of work raced against the
// requesting client's cancellation token. When the cancellation side wins
// the work is abandoned: its eventual result is discarded and the caller
// receives ErrAbandoned instead of a reply. The coordinator owns the
// manifest resolver, the host launcher, the run registry, and the client
// tracker outright; the bus adapter holds a non-owning reference to the
// coordinator for the process lifetime.
package proxy
