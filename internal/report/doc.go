// Package report summarises a merged collection: one-dimensional
// projections of every pair histogram inside the rapidity window, and the
// reconstructed over generated ratio of pair yields in a mass window.
//
// Projections with no entries are discarded. The generated pass is the
// denominator of every ratio and never a numerator.
package report
