package stats

import (
	"errors"

	"github.com/SustainWise/CC/internal/models"
)

// ErrNoData 查询范围内没有任何记录。调用方用它区分
// “没有数据”和“合计为零”。
var ErrNoData = errors.New("no transactions in range")

// UncategorizedLabel is the sentinel bucket for outcome records whose
// category is empty.
const UncategorizedLabel = "Uncategorized"

// TransactionSource feeds the engine a bounded, already-merged result
// set. The engine never assumes how transactions are partitioned in the
// store.
type TransactionSource interface {
	FetchMonth(userID uint, year, month int) ([]models.Transaction, error)
	Latest(userID uint, limit int) ([]models.Transaction, error)
}

// Engine computes read-only monthly/weekly/category summaries.
type Engine struct {
	src TransactionSource
}

func NewEngine(src TransactionSource) *Engine {
	return &Engine{src: src}
}

// MonthlyBreakdown is a month's totals. Savings = income − outcome;
// CategoryTotals sums outcome amounts only.
type MonthlyBreakdown struct {
	TotalIncomeCent  int64
	TotalOutcomeCent int64
	SavingsCent      int64
	CategoryTotals   map[string]int64
}

// MonthlyBreakdown sums one month's transactions per kind and per
// outcome category. Returns ErrNoData when the month is empty.
func (e *Engine) MonthlyBreakdown(userID uint, year, month int) (*MonthlyBreakdown, error) {
	records, err := e.src.FetchMonth(userID, year, month)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, ErrNoData
	}

	out := &MonthlyBreakdown{CategoryTotals: make(map[string]int64)}
	for i := range records {
		r := &records[i]
		if r.Kind == models.KindIncome {
			out.TotalIncomeCent += r.AmountCent
			continue
		}
		out.TotalOutcomeCent += r.AmountCent

		cat := r.Category
		if cat == "" {
			cat = UncategorizedLabel
		}
		out.CategoryTotals[cat] += r.AmountCent
	}
	out.SavingsCent = out.TotalIncomeCent - out.TotalOutcomeCent
	return out, nil
}

// WeekBucket is one of the four fixed expense buckets of a month.
type WeekBucket struct {
	Week             int
	TotalExpenseCent int64
}

// WeeklyExpenses buckets a month's outcome transactions into 4 fixed
// buckets by ceil(day/7); days 22–31 all land in bucket 4. Always
// returns exactly 4 entries, zero-filled. This is a deliberate
// simplification, not a calendar week count — keep it as is for
// compatibility with existing clients.
func (e *Engine) WeeklyExpenses(userID uint, year, month int) ([]WeekBucket, error) {
	records, err := e.src.FetchMonth(userID, year, month)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, ErrNoData
	}

	buckets := []WeekBucket{{Week: 1}, {Week: 2}, {Week: 3}, {Week: 4}}
	for i := range records {
		r := &records[i]
		if r.Kind != models.KindOutcome {
			continue
		}
		week := (r.OccurredAt.Day() + 6) / 7
		if week > 4 {
			week = 4
		}
		buckets[week-1].TotalExpenseCent += r.AmountCent
	}
	return buckets, nil
}

// LatestTransactions returns the newest records by recordedAt, merged
// across any storage partitioning before truncation.
func (e *Engine) LatestTransactions(userID uint, limit int) ([]models.Transaction, error) {
	records, err := e.src.Latest(userID, limit)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, ErrNoData
	}
	return records, nil
}
