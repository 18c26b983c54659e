// Package models defines the core domain models for settleup.
//
// # Entities
//
//   - User: registered account that owns contacts and groups
//   - Contact: a person known to a user, with optional payment target
//   - Group: a shared-expense group owned by one user
//   - Member: a participant in a group (the owner or a linked contact)
//   - Expense: an amount paid by one member and shared among participants
//   - Payment: an externally recorded payment attempt between two members
//
// # Design Principles
//
// 1. **Flat records**: relationships are integer foreign keys, never back-pointers
// 2. **Exact money**: every amount is a decimal.Decimal, never a float
// 3. **Derived data is not stored**: balances and transfers are recomputed per query
package models
