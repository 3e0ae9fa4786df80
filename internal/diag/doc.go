// Package diag defines the diagnostic model shared by the detection engine
// and the CLI.
//
// # Purpose
//
//   - Provide deterministic, serialisable data structures that capture
//     findings produced by the dependency-list checks.
//   - Offer light-weight utilities (Reporter, Bag, Store) that let the
//     engine emit diagnostics without coupling to concrete storage or
//     formatting layers.
//
// # Scope
//
// Package diag performs no formatting, IO, CLI integration, or interactive
// behaviour. Rendering responsibilities live in internal/diagfmt; gating
// and composition of reporters is the wrapper layer's job.
//
// # Data model
//
// Diagnostic is the central record. It contains:
//
//   - Severity – tri-level enum (Info, Warning, Error) defined in severity.go.
//   - Code – compact numeric identifier (see codes.go) with stable string form.
//   - Site – the call-site the finding belongs to (label plus handle id).
//   - Message – human oriented text; keep it short and actionable.
//   - Detail – optional context (counts, indices, lengths).
//   - Remedy – optional one-line suggestion for addressing the issue.
//
// # Deduplication
//
// Store is an explicit owned set of (site, code) keys with
// check-then-insert semantics. DedupReporter wraps any Reporter with a
// Store so that each distinct issue reaches the sink at most once until the
// store is cleared. The store is mutex-guarded because distinct owning
// units may cycle on different goroutines while sharing one store.
//
// Diagnostics that must be re-reported on every recurrence (structural
// length changes) bypass the DedupReporter and go to the inner reporter
// directly.
package diag
