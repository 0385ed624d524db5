// Package reconciler classifies the rows of a GST purchase ledger against the rows of
// a Tally ledger.
//
// A Mapping pairs a GST column with a Tally column; each valid pair is one feature.
// Every record is projected to a FeatureTuple of normalized cells and the two sides
// are hash-joined on the key features (features 1 and 2 by default). Joined pairs are
// exact matches when every feature agrees, partial matches when fewer than the
// partial threshold features differ, and high-discrepancy matches otherwise. Records
// whose key has no counterpart on the other side are mismatches.
//
// Joins are Cartesian: a GST row whose key appears twice in Tally yields two pairs.
// Reconcile never mutates its inputs and performs no I/O, so it is safe to call from
// any number of goroutines.
package reconciler
