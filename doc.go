// Package captable provides the types and computation engines for managing
// a startup's equity: the ownership ledger, the share-class registry, the
// ESOP pool and its grants. It is designed to be local-first, auditable,
// and exact, ensuring the cap table can always be recomputed from its
// source of truth.
//
// The core functionalities include:
//   - Ledger Management: Recording all ownership-affecting events
//     (issuances, transfers, exercises, conversions, buybacks and
//     cancellations) in a chronological record of signed share movements.
//   - Ownership Aggregation: Folding the ledger into per-holder, per-class
//     and per-holder-kind ownership summaries on any date.
//   - Exit Economics: Distributing an exit valuation through
//     seniority-ordered liquidation preferences and a pro-rata residual.
//   - Round Simulation: Projecting post-round capitalization and per-holder
//     dilution from proposed round terms, without touching the ledger.
//   - Vesting & Grants: Cliff and linear vesting schedules, and a grant
//     lifecycle from draft through exercise or cancellation, accounted
//     against the option pool.
//   - Data Persistence: Encoding and decoding the ledger and the grant book
//     to and from human-readable, version-controllable JSONL files.
//
// This package serves as the foundational logic for the `ect` command-line
// tool, ensuring that all operations are consistent and based on a single
// source of truth.
package captable
