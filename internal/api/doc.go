// Package api defines the JSON payloads served over HTTP and a client for
// consuming them. The daemon's HTTP server and the CLI share these types so
// the wire format stays in one place.
package api
