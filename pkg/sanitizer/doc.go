// Package sanitizer provides input normalization for ledger cells and column names.
//
// All normalization functions are idempotent - applying them multiple times produces
// the same result. Functions never fail: blank or malformed input is absorbed into a
// canonical value instead of being rejected.
//
// The package is shared by the upload parser, the reconciliation engine and the CLI so
// that a cell is compared and stored in exactly one form.
//
// Normalization includes:
//   - Cells: nil, "" and a lone "-" become "0"; everything else is trimmed text
//   - Dates: "2024-01-05" and "2024/01/05" both become "2024/01/05" (separator fix only)
//   - Numbers: shortest round-trip decimal text, so 100 and 100.0 both become "100"
//   - Column names: collapse whitespace, trim leading/trailing spaces
//   - Thresholds: clamp to valid ranges
package sanitizer
