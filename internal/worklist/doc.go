// Package worklist owns the ordered (capture-file, output-dir) pairs for one run.
//
// Ownership boundary:
// - entry shape and construction
// - list-file parsing
// - filesystem precondition checks before any daemon traffic
package worklist
