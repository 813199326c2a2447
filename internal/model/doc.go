// Package model defines the PLMS data model as the client observes it.
//
// Every entity here is owned and persisted by the PLMS API; the client only
// holds ephemeral copies decoded from JSON responses. Field names follow the
// wire format (camelCase) so values round-trip through the API unchanged.
//
// # Derived State
//
// Some fields are projections the client must never set:
//
//   - Item.Status is LOANED iff an ACTIVE Loan references the item.
//     Use DeriveStatus to recompute it from the loan relationship.
//   - Item.ProgressPercent is progressValue/totalValue*100 clamped to [0,100].
//     Use ProgressPercent to recompute it.
//
// Update payloads (ItemUpdateRequest) deliberately have no status field.
//
// # Transient Entities
//
// ExternalCandidate and DiffField are lookup-session values. They are never
// persisted by the client and are discarded with the session that fetched
// them (see package lookup).
package model
