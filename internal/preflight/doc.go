// Package preflight validates the runtime environment before a run starts:
// directory permissions, free disk space, and external binaries.
package preflight
