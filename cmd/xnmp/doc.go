// Command xnmp runs and controls the XDG native messaging proxy: a
// session bus service that resolves native messaging host manifests and
// launches host processes on behalf of sandboxed browsers.
package main
