// Package parser turns uploaded CSV and Excel ledgers into reconciler records.
//
// The first non-blank row of a file names the columns. Every later row becomes one
// record holding a normalized value for every column, so a short row is padded with
// the blank value rather than dropped.
package parser
