// Package models defines the core domain models for tripledger.
//
// # Model Overview
//
//   - Trip: aggregate root owning Days, Expenses, Payers, and sharing records
//   - Day: one calendar day of a trip's itinerary, fixed at trip creation
//   - ItineraryItem: a single scheduled entry within a Day
//   - Expense: a shared cost with a payer and a split set
//   - Payer: a named expense participant, unique within a trip
//   - Share / Invite: collaboration records for a trip
//   - User: a registered account
//
// Expense participants are identified by name strings scoped to their trip.
// A payer may appear on an expense without a formal Payer record; balance
// calculation tolerates this (see internal/calculator).
//
// # Ordering
//
// ItineraryItems carry an OrderIndex scoped to their Day; Expenses carry an
// OrderIndex scoped to their date group within a trip. Indexes are 0-based
// and contiguous within a scope but are not globally unique across scopes.
// Sorting a mixed collection by OrderIndex must therefore be stable so that
// per-scope ordering survives a global sort.
//
// # Design Principles
//
//  1. Plain structs, no behavior beyond small constructors and helpers
//  2. ID strings instead of pointers for relationships
//  3. Money is decimal.Decimal end to end; rounding happens only at display
package models
