package models

import "time"

// Transaction kinds. Amounts are always stored positive; the kind carries
// the sign (income credits the saldo, outcome debits it).
const (
	KindIncome  = "income"
	KindOutcome = "outcome"
)

// Transaction 表示一笔收支记录
// 金额用分存储，避免浮点误差，比如 12.34 = 1234 分
type Transaction struct {
	ID         uint      `gorm:"primaryKey"`
	UserID     uint      `gorm:"index;not null"`
	Kind       string    `gorm:"size:16;index;not null"` // income / outcome
	Category   string    `gorm:"size:64;not null"`
	AmountCent int64     `gorm:"not null"`
	Note       string    `gorm:"size:255"`
	OccurredAt time.Time `gorm:"index;not null"` // 用户填写的交易日期
	CreatedAt  time.Time // 服务端写入时间，latest 按它排序
}
