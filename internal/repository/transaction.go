package repository

import (
	"errors"
	"sort"
	"time"

	"github.com/SustainWise/CC/internal/ledger"
	"github.com/SustainWise/CC/internal/models"

	"gorm.io/gorm"
)

var (
	// ErrNotFound 记录不存在
	ErrNotFound = errors.New("transaction not found")
	// ErrForbidden 不是本人的记录
	ErrForbidden = errors.New("transaction belongs to another user")
	// ErrInvalidCategory 分类不存在
	ErrInvalidCategory = errors.New("category does not exist")
)

// TransactionRepo validates and persists transaction records. All saldo
// bookkeeping goes through the ledger so the record write and the balance
// adjustment land in one store transaction.
type TransactionRepo struct {
	db     *gorm.DB
	ledger *ledger.Ledger
}

func NewTransactionRepo(db *gorm.DB, l *ledger.Ledger) *TransactionRepo {
	return &TransactionRepo{db: db, ledger: l}
}

// CreateInput carries an already-validated create request. Kind must be
// normalized (models.KindIncome / models.KindOutcome) and AmountCent
// strictly positive.
type CreateInput struct {
	UserID     uint
	Kind       string
	Category   string
	AmountCent int64
	Note       string
	OccurredAt time.Time
}

// Create persists the transaction and applies its saldo effect.
// 分类校验：outcome 必须用已有分类；income 放宽，任意非空分类
// 标签都接受，客户端依赖这个行为。
func (r *TransactionRepo) Create(in CreateInput) (*models.Transaction, int64, error) {
	if in.Kind != models.KindIncome {
		exists, err := r.categoryExists(in.Category)
		if err != nil {
			return nil, 0, err
		}
		if !exists {
			return nil, 0, ErrInvalidCategory
		}
	}

	record := models.Transaction{
		UserID:     in.UserID,
		Kind:       in.Kind,
		Category:   in.Category,
		AmountCent: in.AmountCent,
		Note:       in.Note,
		OccurredAt: in.OccurredAt,
	}

	newBalance, err := r.ledger.ApplyCreate(in.UserID, in.Kind, in.AmountCent, in.OccurredAt,
		func(tx *gorm.DB, _ int64) error {
			return tx.Create(&record).Error
		})
	if err != nil {
		return nil, 0, err
	}
	return &record, newBalance, nil
}

// Get loads one transaction and enforces ownership.
func (r *TransactionRepo) Get(userID uint, id uint) (*models.Transaction, error) {
	var record models.Transaction
	if err := r.db.First(&record, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if record.UserID != userID {
		return nil, ErrForbidden
	}
	return &record, nil
}

// Delete removes the transaction and reverses its saldo effect, using the
// stored record's kind and amount. Returns the saldo after the delete.
func (r *TransactionRepo) Delete(userID uint, id uint) (int64, error) {
	record, err := r.Get(userID, id)
	if err != nil {
		return 0, err
	}

	newBalance, err := r.ledger.ApplyDelete(record.UserID, record.Kind, record.AmountCent, record.OccurredAt,
		func(tx *gorm.DB, _ int64) error {
			return tx.Delete(&models.Transaction{}, record.ID).Error
		})
	if err != nil {
		return 0, err
	}
	return newBalance, nil
}

// ListMonthly returns one kind's transactions whose occurred_at falls in
// the given month, oldest first.
func (r *TransactionRepo) ListMonthly(userID uint, kind string, year, month int) ([]models.Transaction, error) {
	start, end := monthRange(year, month)
	var records []models.Transaction
	err := r.db.
		Where("user_id = ? AND kind = ? AND occurred_at >= ? AND occurred_at < ?",
			userID, kind, start, end).
		Order("occurred_at ASC, id ASC").
		Find(&records).Error
	return records, err
}

// FetchMonth returns all of a month's transactions regardless of kind.
// 按 kind 分开查再归并：无论底层是平铺还是按 kind 分区存储，
// 统计引擎看到的都是同一份合并结果。
func (r *TransactionRepo) FetchMonth(userID uint, year, month int) ([]models.Transaction, error) {
	start, end := monthRange(year, month)

	var merged []models.Transaction
	for _, kind := range []string{models.KindIncome, models.KindOutcome} {
		var part []models.Transaction
		if err := r.db.
			Where("user_id = ? AND kind = ? AND occurred_at >= ? AND occurred_at < ?",
				userID, kind, start, end).
			Find(&part).Error; err != nil {
			return nil, err
		}
		merged = append(merged, part...)
	}

	sort.Slice(merged, func(i, j int) bool {
		if !merged[i].OccurredAt.Equal(merged[j].OccurredAt) {
			return merged[i].OccurredAt.Before(merged[j].OccurredAt)
		}
		return merged[i].ID < merged[j].ID
	})
	return merged, nil
}

// Latest returns the most recently recorded transactions, merged across
// kinds before truncation.
func (r *TransactionRepo) Latest(userID uint, limit int) ([]models.Transaction, error) {
	if limit <= 0 {
		limit = 5
	}

	var merged []models.Transaction
	for _, kind := range []string{models.KindIncome, models.KindOutcome} {
		var part []models.Transaction
		if err := r.db.
			Where("user_id = ? AND kind = ?", userID, kind).
			Order("created_at DESC, id DESC").
			Limit(limit).
			Find(&part).Error; err != nil {
			return nil, err
		}
		merged = append(merged, part...)
	}

	// 先归并再截断
	sort.Slice(merged, func(i, j int) bool {
		if !merged[i].CreatedAt.Equal(merged[j].CreatedAt) {
			return merged[i].CreatedAt.After(merged[j].CreatedAt)
		}
		return merged[i].ID > merged[j].ID
	})
	if len(merged) > limit {
		merged = merged[:limit]
	}
	return merged, nil
}

func (r *TransactionRepo) categoryExists(name string) (bool, error) {
	var count int64
	if err := r.db.Model(&models.Category{}).Where("name = ?", name).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// monthRange 返回 [月初, 下月初)
func monthRange(year, month int) (time.Time, time.Time) {
	start := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	return start, start.AddDate(0, 1, 0)
}
