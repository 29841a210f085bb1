// Package pipeline drives the two-phase run lifecycle behind an explicit
// state machine: extract and analyze once, preview any number of times,
// then select and save exactly once.
//
// The orchestrator owns the staging directory of the run and guarantees
// its release on completion, failure, and cancellation, tolerating the
// transient file locks extraction subprocesses can leave behind.
package pipeline
