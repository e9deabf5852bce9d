// Package server exposes the transform service over HTTP: uploads create
// tasks, polling reads their state, and downloads deliver finished videos.
package server
