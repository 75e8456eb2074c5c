// Package models defines the core domain records for receiptsplit.
//
// # Records
//
//   - Bill: a ledger record for one shared-expense event, with participants,
//     weighted/targeted items, cumulative payments, settlement marks, and a
//     bounded activity trail
//   - Template: a reusable bill skeleton (title, currency, tags)
//   - Group: a named collection of bill ids
//
// Participants are identified by their network address (a normalized string
// supplied by the host after authentication), never chosen by this code.
//
// # Design Principles
//
// 1. **Value semantics**: records are mutated only on an owned clone obtained
// via Clone(); the fetched snapshot is never written through.
// 2. **Explicit absence**: payments, settlement marks, and weights are
// address-keyed maps where a missing key means "not paid" / "not settled" /
// "default weight".
// 3. **Bounded history**: notes, receipts, and activity are fixed-capacity
// FIFOs that evict oldest-first on insert.
package models
