// Package scoring measures frame sharpness across a bounded worker pool.
//
// The scorer preserves global index order regardless of worker completion
// order, drops individual frames whose scoring fails, and aborts only when
// the failure fraction suggests the input itself is broken.
package scoring
