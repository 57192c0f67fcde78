// Package models defines the core domain models for OneCard.
//
// # Models
//
//   - User: a registered customer, vendor or admin account
//   - Wallet: the OneCard balance owned by a user (the admin ledger is a wallet too)
//   - Allocation: one persisted cashback/profit/fee split for a purchase
//   - Deal: a vendor-listed airtime or data bundle sold with a markup
//
// # Design Principles
//
// 1. **IDs over pointers**: relationships reference IDs (UUID strings)
// 2. **Money as decimals**: amounts use shopspring/decimal, never float64
// 3. **Unix timestamps**: CreatedAt fields are Unix seconds, as stored in SQLite
package models
