// Package report exports replayed cycle records as CSV and as an HTML
// trajectory chart comparing estimated and true positions.
package report
