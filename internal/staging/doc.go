// Package staging manages the temporary directories extraction runs write
// frames into: creation, locking against concurrent runs, retrying cleanup
// of busy directories, and sweeping leftovers from interrupted runs.
package staging
