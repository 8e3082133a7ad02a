package models

import "time"

// SaldoCheckpoint is a per-month saldo snapshot. The ledger upserts the
// row for a transaction's month on every create/delete, so reads of
// /saldo/monthly never rescan the transaction history.
type SaldoCheckpoint struct {
	ID          uint `gorm:"primaryKey"`
	UserID      uint `gorm:"index:idx_checkpoint_user_month,unique;not null"`
	Year        int  `gorm:"index:idx_checkpoint_user_month,unique;not null"`
	Month       int  `gorm:"index:idx_checkpoint_user_month,unique;not null"`
	IncomeCent  int64
	OutcomeCent int64
	// 该月月末的余额快照，补记旧月份时后续月份会一并修正
	ClosingCent int64
	UpdatedAt   time.Time
}
