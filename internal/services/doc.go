// Package services defines the error taxonomy shared by the extraction,
// scoring, selection, and pipeline components.
package services
