// Package daemon ties the long-running pieces together: the worker pool,
// the HTTP API server, and the retention janitor. It enforces
// single-instance execution with a file lock.
package daemon
