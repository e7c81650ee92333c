// Package models defines account models shared by authentication and storage.
//
// Ledger entities (groups, members, transactions) live in package credit; a
// member's ID is the ID of the User acting as that member.
package models
