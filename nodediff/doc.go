// Package nodediff computes the structural difference of two node trees.
//
// Differences are reported as a flat list of Changes, one per path where
// the trees disagree. Keys and list elements are aligned with
// github.com/sergi/go-diff.
package nodediff
