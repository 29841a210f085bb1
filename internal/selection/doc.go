// Package selection implements the frame selection strategies (best-n,
// batched, outlier-removal) and the fast preview path used for interactive
// parameter tuning.
//
// All strategies are deterministic: given identical inputs and parameters
// they produce identical results, with score ties broken by the lower
// global index. Outputs are always ordered ascending by global index.
package selection
