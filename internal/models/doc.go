// Package models defines the core domain models for bill splitting.
//
// # Session Models
//
// A bill-splitting session works on three in-memory collections:
//   - Participant: a person on the roster who can be assigned items
//   - ReceiptItem: a priced line item parsed from a receipt
//   - ExtractedItem: the raw {name, price} record delivered by ingestion
//
// Every ReceiptItem is assigned to exactly one participant or left
// Unassigned. Participant totals are always derived from the items
// assigned to them and are never written by callers.
//
// # Archived Models
//
//   - Bill: the finalized snapshot written when payment is requested
//   - Share: one participant's portion of a bill, including proportional tax
//
// # Design Principles
//
// 1. **Decimal money**: prices and totals use shopspring/decimal, never float64
// 2. **IDs over pointers**: relationships are expressed with ID strings
// 3. **Derived totals**: totals are recomputed from the ledger, never patched
package models
