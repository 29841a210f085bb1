// Package history persists a log of past runs in a local SQLite database,
// so users can review what was selected from which input and when.
package history
