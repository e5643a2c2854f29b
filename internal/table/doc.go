// Package table implements the generic tabular data engine shared by the
// portal's admin listings: declarative column configuration, simple and
// grouped filtering, diacritic-insensitive search, multi-key sorting,
// pagination, and the selection / bulk-action state machines layered on top.
//
// The engine is a pure transformation pipeline
//
//	records → filtered → searched → sorted → page-sliced
//
// driven by a single Config plus a per-request Query. All state types are
// immutable values: every transition produces a new value instead of
// mutating in place, so the state machines are unit-testable without a
// rendering harness.
package table
