// Package jobs executes transform tasks in the background. The Runner drives
// a single task from queued to a terminal status, and the Pool bounds how
// many runners execute concurrently while absorbing a small backlog.
package jobs
