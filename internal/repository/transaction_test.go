package repository

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/SustainWise/CC/internal/config"
	"github.com/SustainWise/CC/internal/database"
	"github.com/SustainWise/CC/internal/ledger"
	"github.com/SustainWise/CC/internal/models"

	"gorm.io/gorm"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	db, err := database.Init(config.DatabaseConfig{Path: path})
	if err != nil {
		t.Fatalf("init db: %v", err)
	}
	if err := database.AutoMigrate(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func newTestRepo(t *testing.T) (*TransactionRepo, *gorm.DB) {
	t.Helper()
	db := openTestDB(t)
	return NewTransactionRepo(db, ledger.New(db)), db
}

func seedUser(t *testing.T, db *gorm.DB, email string) *models.User {
	t.Helper()
	user := models.User{Email: email}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("seed user: %v", err)
	}
	return &user
}

func seedCategory(t *testing.T, db *gorm.DB, name string) {
	t.Helper()
	if err := db.Create(&models.Category{Name: name}).Error; err != nil {
		t.Fatalf("seed category: %v", err)
	}
}

func saldoOf(t *testing.T, db *gorm.DB, userID uint) int64 {
	t.Helper()
	var user models.User
	if err := db.First(&user, userID).Error; err != nil {
		t.Fatalf("load user: %v", err)
	}
	return user.BalanceCent
}

func day(d int) time.Time {
	return time.Date(2024, 3, d, 0, 0, 0, 0, time.UTC)
}

// TestCreate_IncomeThenOutcome 余额 0 → 收入 100 → 余额 100 → 支出 30 → 余额 70
func TestCreate_IncomeThenOutcome(t *testing.T) {
	repo, db := newTestRepo(t)
	user := seedUser(t, db, "a@example.com")
	seedCategory(t, db, "food")

	record, balance, err := repo.Create(CreateInput{
		UserID: user.ID, Kind: models.KindIncome, Category: "salary",
		AmountCent: 10000, OccurredAt: day(5),
	})
	if err != nil {
		t.Fatalf("create income: %v", err)
	}
	if balance != 10000 {
		t.Errorf("balance = %d, want 10000", balance)
	}
	if record.ID == 0 {
		t.Error("record not persisted")
	}

	_, balance, err = repo.Create(CreateInput{
		UserID: user.ID, Kind: models.KindOutcome, Category: "food",
		AmountCent: 3000, OccurredAt: day(10),
	})
	if err != nil {
		t.Fatalf("create outcome: %v", err)
	}
	if balance != 7000 {
		t.Errorf("balance = %d, want 7000", balance)
	}
}

// TestCreate_InvalidCategory 支出类交易分类必须已存在，
// 失败时不允许出现任何余额变动（不能有半次写入）
func TestCreate_InvalidCategory(t *testing.T) {
	repo, db := newTestRepo(t)
	user := seedUser(t, db, "a@example.com")

	_, _, err := repo.Create(CreateInput{
		UserID: user.ID, Kind: models.KindOutcome, Category: "ghost",
		AmountCent: 3000, OccurredAt: day(1),
	})
	if !errors.Is(err, ErrInvalidCategory) {
		t.Fatalf("err = %v, want ErrInvalidCategory", err)
	}

	if got := saldoOf(t, db, user.ID); got != 0 {
		t.Errorf("saldo = %d, want 0 (no partial write)", got)
	}
	var count int64
	db.Model(&models.Transaction{}).Count(&count)
	if count != 0 {
		t.Errorf("transactions = %d, want 0", count)
	}
}

// TestCreate_IncomeSkipsCategoryCheck 收入交易不校验分类是否存在
func TestCreate_IncomeSkipsCategoryCheck(t *testing.T) {
	repo, db := newTestRepo(t)
	user := seedUser(t, db, "a@example.com")

	_, balance, err := repo.Create(CreateInput{
		UserID: user.ID, Kind: models.KindIncome, Category: "anything-goes",
		AmountCent: 500, OccurredAt: day(1),
	})
	if err != nil {
		t.Fatalf("create income: %v", err)
	}
	if balance != 500 {
		t.Errorf("balance = %d, want 500", balance)
	}
}

// TestDelete_RoundTrip 删除一条记录，余额回到创建之前
func TestDelete_RoundTrip(t *testing.T) {
	repo, db := newTestRepo(t)
	user := seedUser(t, db, "a@example.com")
	seedCategory(t, db, "food")

	if _, _, err := repo.Create(CreateInput{
		UserID: user.ID, Kind: models.KindIncome, Category: "salary",
		AmountCent: 10000, OccurredAt: day(5),
	}); err != nil {
		t.Fatalf("create: %v", err)
	}
	record, _, err := repo.Create(CreateInput{
		UserID: user.ID, Kind: models.KindOutcome, Category: "food",
		AmountCent: 3000, OccurredAt: day(10),
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	balance, err := repo.Delete(user.ID, record.ID)
	if err != nil {
		t.Fatalf("delete: %v", err)
	}
	if balance != 10000 {
		t.Errorf("balance = %d, want 10000", balance)
	}

	if _, err := repo.Get(user.ID, record.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get after delete err = %v, want ErrNotFound", err)
	}
}

// TestDelete_Forbidden 不能删别人的记录，余额必须原样
func TestDelete_Forbidden(t *testing.T) {
	repo, db := newTestRepo(t)
	owner := seedUser(t, db, "owner@example.com")
	attacker := seedUser(t, db, "attacker@example.com")

	record, _, err := repo.Create(CreateInput{
		UserID: owner.ID, Kind: models.KindIncome, Category: "salary",
		AmountCent: 10000, OccurredAt: day(5),
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	if _, err := repo.Delete(attacker.ID, record.ID); !errors.Is(err, ErrForbidden) {
		t.Fatalf("err = %v, want ErrForbidden", err)
	}

	if got := saldoOf(t, db, owner.ID); got != 10000 {
		t.Errorf("owner saldo = %d, want 10000", got)
	}
	if _, err := repo.Get(owner.ID, record.ID); err != nil {
		t.Errorf("record should still exist: %v", err)
	}
}

// TestDelete_NotFound 删不存在的记录
func TestDelete_NotFound(t *testing.T) {
	repo, db := newTestRepo(t)
	user := seedUser(t, db, "a@example.com")

	if _, err := repo.Delete(user.ID, 999); !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

// TestBalanceMatchesReplay 任意创建/删除序列之后，
// 物化余额必须等于现存交易带符号金额之和
func TestBalanceMatchesReplay(t *testing.T) {
	repo, db := newTestRepo(t)
	user := seedUser(t, db, "a@example.com")
	seedCategory(t, db, "food")

	type op struct {
		kind   string
		amount int64
		del    bool // 删掉这一步创建的记录
	}
	ops := []op{
		{kind: models.KindIncome, amount: 50000},
		{kind: models.KindOutcome, amount: 1200},
		{kind: models.KindOutcome, amount: 800, del: true},
		{kind: models.KindIncome, amount: 2500, del: true},
		{kind: models.KindOutcome, amount: 45},
	}

	for i, o := range ops {
		record, _, err := repo.Create(CreateInput{
			UserID: user.ID, Kind: o.kind, Category: "food",
			AmountCent: o.amount, OccurredAt: day(i + 1),
		})
		if err != nil {
			t.Fatalf("op %d create: %v", i, err)
		}
		if o.del {
			if _, err := repo.Delete(user.ID, record.ID); err != nil {
				t.Fatalf("op %d delete: %v", i, err)
			}
		}

		// 每一步之后都全量重算一遍对账
		var remaining []models.Transaction
		if err := db.Where("user_id = ?", user.ID).Find(&remaining).Error; err != nil {
			t.Fatalf("op %d load: %v", i, err)
		}
		var sum int64
		for _, r := range remaining {
			sum += ledger.SignedDelta(r.Kind, r.AmountCent)
		}
		if got := saldoOf(t, db, user.ID); got != sum {
			t.Fatalf("op %d: saldo = %d, replay sum = %d", i, got, sum)
		}
	}
}

// TestListMonthly 只返回指定 kind 和月份的记录
func TestListMonthly(t *testing.T) {
	repo, db := newTestRepo(t)
	user := seedUser(t, db, "a@example.com")
	seedCategory(t, db, "food")

	mustCreate := func(kind string, occurredAt time.Time) {
		t.Helper()
		if _, _, err := repo.Create(CreateInput{
			UserID: user.ID, Kind: kind, Category: "food",
			AmountCent: 100, OccurredAt: occurredAt,
		}); err != nil {
			t.Fatalf("create: %v", err)
		}
	}

	mustCreate(models.KindOutcome, day(1))
	mustCreate(models.KindOutcome, day(31))
	mustCreate(models.KindIncome, day(15))
	mustCreate(models.KindOutcome, time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC))

	records, err := repo.ListMonthly(user.ID, models.KindOutcome, 2024, 3)
	if err != nil {
		t.Fatalf("ListMonthly: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("len = %d, want 2", len(records))
	}
	// 月初在前
	if records[0].OccurredAt.Day() != 1 || records[1].OccurredAt.Day() != 31 {
		t.Errorf("unexpected order: %v, %v", records[0].OccurredAt, records[1].OccurredAt)
	}
}

// TestLatest 跨 kind 归并后按写入时间倒序截断
func TestLatest(t *testing.T) {
	repo, db := newTestRepo(t)
	user := seedUser(t, db, "a@example.com")
	seedCategory(t, db, "food")

	kinds := []string{
		models.KindIncome, models.KindOutcome, models.KindIncome,
		models.KindOutcome, models.KindOutcome, models.KindIncome, models.KindOutcome,
	}
	var lastID uint
	for i, kind := range kinds {
		record, _, err := repo.Create(CreateInput{
			UserID: user.ID, Kind: kind, Category: "food",
			AmountCent: int64(100 * (i + 1)), OccurredAt: day(i + 1),
		})
		if err != nil {
			t.Fatalf("create: %v", err)
		}
		lastID = record.ID
	}

	records, err := repo.Latest(user.ID, 5)
	if err != nil {
		t.Fatalf("Latest: %v", err)
	}
	if len(records) != 5 {
		t.Fatalf("len = %d, want 5", len(records))
	}
	if records[0].ID != lastID {
		t.Errorf("first id = %d, want %d (most recent)", records[0].ID, lastID)
	}
	// 两种 kind 都要出现，证明是归并后的结果
	seen := map[string]bool{}
	for _, r := range records {
		seen[r.Kind] = true
	}
	if !seen[models.KindIncome] || !seen[models.KindOutcome] {
		t.Errorf("latest should merge both kinds, got %v", seen)
	}
}

// TestFetchMonth 合并两种 kind 且按交易日期排序
func TestFetchMonth(t *testing.T) {
	repo, db := newTestRepo(t)
	user := seedUser(t, db, "a@example.com")
	seedCategory(t, db, "food")

	for _, d := range []int{20, 3, 11} {
		kind := models.KindOutcome
		if d == 11 {
			kind = models.KindIncome
		}
		if _, _, err := repo.Create(CreateInput{
			UserID: user.ID, Kind: kind, Category: "food",
			AmountCent: 100, OccurredAt: day(d),
		}); err != nil {
			t.Fatalf("create: %v", err)
		}
	}

	records, err := repo.FetchMonth(user.ID, 2024, 3)
	if err != nil {
		t.Fatalf("FetchMonth: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("len = %d, want 3", len(records))
	}
	days := []int{records[0].OccurredAt.Day(), records[1].OccurredAt.Day(), records[2].OccurredAt.Day()}
	if days[0] != 3 || days[1] != 11 || days[2] != 20 {
		t.Errorf("order = %v, want [3 11 20]", days)
	}
}
