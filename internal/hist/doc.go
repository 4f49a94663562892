// Package hist provides a sparse, mergeable N-dimensional histogram over
// bounded, uniformly binned axes.
//
// A Template fixes the axes (names, units, bin counts, edges). It is built
// once and shared, read-only, by every Histogram created from it. Histograms
// store only non-empty bins, keyed by a linear index over the template.
//
// There are no underflow or overflow bins: a sample with any coordinate
// outside [min, max) of its axis is dropped and counted in Dropped().
//
// Merge is element-wise addition of (sum of weights, fill count) per bin.
// It requires structurally equal templates and is commutative and
// associative; an empty histogram is its identity element.
package hist
