// Package frames defines the candidate frame model passed between the
// extraction, scoring, selection, and pipeline components.
package frames
