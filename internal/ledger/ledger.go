package ledger

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/SustainWise/CC/internal/models"

	"gorm.io/gorm"
)

var (
	// ErrUserNotFound 调整余额时用户不存在
	ErrUserNotFound = errors.New("user not found")
	// ErrConflict 多次重试后余额更新仍然失败
	ErrConflict = errors.New("balance update conflict")
)

// RecordFunc runs inside the same store transaction as the balance
// adjustment. newBalanceCent is the saldo after the adjustment.
type RecordFunc func(tx *gorm.DB, newBalanceCent int64) error

// Ledger is the only writer of User.BalanceCent. Every adjustment and its
// transaction-record write happen in one store transaction, so a reader
// never observes one without the other.
type Ledger struct {
	db         *gorm.DB
	maxRetries int
}

func New(db *gorm.DB) *Ledger {
	return &Ledger{db: db, maxRetries: 5}
}

// SignedDelta returns the saldo effect of a transaction: income credits,
// outcome debits.
func SignedDelta(kind string, amountCent int64) int64 {
	if kind == models.KindIncome {
		return amountCent
	}
	return -amountCent
}

// ApplyCreate adjusts the saldo for a newly recorded transaction and runs
// record in the same store transaction. Returns the new saldo in cents.
func (l *Ledger) ApplyCreate(userID uint, kind string, amountCent int64, occurredAt time.Time, record RecordFunc) (int64, error) {
	return l.adjust(userID, kind, amountCent, occurredAt, record)
}

// ApplyDelete reverses the saldo effect of a deleted transaction. The
// kind and amount must come from the stored record, never from the
// caller's request, otherwise the saldo would drift.
func (l *Ledger) ApplyDelete(userID uint, kind string, amountCent int64, occurredAt time.Time, record RecordFunc) (int64, error) {
	return l.adjust(userID, kind, -amountCent, occurredAt, record)
}

// adjust 在一个事务里完成：余额更新、月度 checkpoint 更新、记录写入。
// kindDeltaCent 是该 kind 在当月汇总里的变化量（删除时为负）。
func (l *Ledger) adjust(userID uint, kind string, kindDeltaCent int64, occurredAt time.Time, record RecordFunc) (int64, error) {
	balanceDelta := SignedDelta(kind, kindDeltaCent)

	var newBalance int64
	for attempt := 0; ; attempt++ {
		err := l.db.Transaction(func(tx *gorm.DB) error {
			// 单条 UPDATE 完成读-改-写，避免并发丢失更新
			res := tx.Model(&models.User{}).
				Where("id = ?", userID).
				Update("balance_cent", gorm.Expr("balance_cent + ?", balanceDelta))
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				return ErrUserNotFound
			}

			var user models.User
			if err := tx.Select("balance_cent").First(&user, userID).Error; err != nil {
				return err
			}
			newBalance = user.BalanceCent

			if err := l.upsertCheckpoint(tx, userID, kind, kindDeltaCent, occurredAt); err != nil {
				return err
			}

			if record != nil {
				return record(tx, newBalance)
			}
			return nil
		})
		if err == nil {
			return newBalance, nil
		}
		// 只有 sqlite busy/locked 才重试
		if !isBusy(err) {
			return 0, err
		}
		if attempt >= l.maxRetries {
			return 0, fmt.Errorf("%w: %v", ErrConflict, err)
		}
		time.Sleep(time.Duration(attempt+1) * 5 * time.Millisecond)
	}
}

// upsertCheckpoint 维护 (user, year, month) 的 saldo 快照。
// closing_cent 是该月月末的余额：补记早先月份时，该月及之后所有
// 快照的 closing 都要随 delta 挪动，否则挪到的是当前全局余额。
func (l *Ledger) upsertCheckpoint(tx *gorm.DB, userID uint, kind string, deltaCent int64, occurredAt time.Time) error {
	year := occurredAt.Year()
	month := int(occurredAt.Month())

	var ck models.SaldoCheckpoint
	err := tx.Where("user_id = ? AND year = ? AND month = ?", userID, year, month).
		First(&ck).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		// 新月份的 closing 从最近一个更早的快照接过来；
		// 中间没有快照的月份也没有流水，余额不变
		var base int64
		var prev models.SaldoCheckpoint
		perr := tx.Where("user_id = ? AND (year < ? OR (year = ? AND month < ?))", userID, year, year, month).
			Order("year DESC, month DESC").
			First(&prev).Error
		if perr == nil {
			base = prev.ClosingCent
		} else if !errors.Is(perr, gorm.ErrRecordNotFound) {
			return perr
		}
		ck = models.SaldoCheckpoint{UserID: userID, Year: year, Month: month, ClosingCent: base}
		if err := tx.Create(&ck).Error; err != nil {
			return err
		}
	} else if err != nil {
		return err
	}

	col := "outcome_cent"
	if kind == models.KindIncome {
		col = "income_cent"
	}
	if err := tx.Model(&models.SaldoCheckpoint{}).Where("id = ?", ck.ID).
		Update(col, gorm.Expr(col+" + ?", deltaCent)).Error; err != nil {
		return err
	}

	return tx.Model(&models.SaldoCheckpoint{}).
		Where("user_id = ? AND (year > ? OR (year = ? AND month >= ?))", userID, year, year, month).
		Update("closing_cent", gorm.Expr("closing_cent + ?", SignedDelta(kind, deltaCent))).Error
}

func isBusy(err error) bool {
	if err == nil {
		return false
	}
	s := err.Error()
	return strings.Contains(s, "database is locked") ||
		strings.Contains(s, "database table is locked") ||
		strings.Contains(s, "SQLITE_BUSY")
}
