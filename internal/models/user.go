package models

import "time"

// User represents application user.
// BalanceCent is the denormalized running saldo maintained by the ledger
// package; nothing else writes it.
type User struct {
	ID           uint   `gorm:"primaryKey"`
	Email        string `gorm:"size:128;uniqueIndex;not null"`
	Username     string `gorm:"size:64"`
	Phone        string `gorm:"size:32"`
	PasswordHash string `gorm:"size:255"` // empty for Google-only accounts
	BalanceCent  int64  `gorm:"not null;default:0"`
	PhotoPath    string `gorm:"size:255"` // file name inside the media dir
	CreatedAt    time.Time
	UpdatedAt    time.Time

	LastLoginAt *time.Time
	LastLoginIP string `gorm:"size:64"`
}
