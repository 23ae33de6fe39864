// Package server implements the embedded LAN sharing server: the HTTP
// routes that browse and mutate the shared catalog, and the start/stop
// lifecycle that lets the server run next to an interactive foreground
// thread. All catalog state lives in the store package; handlers are
// stateless per request.
package server
