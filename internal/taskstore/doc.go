// Package taskstore is the registry of transform tasks. It is backed by
// SQLite for safe concurrent access but the table is cleared on Open, so the
// registry only ever describes tasks submitted during the current process.
package taskstore
