package handler

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/SustainWise/CC/internal/ledger"
	"github.com/SustainWise/CC/internal/models"
	"github.com/SustainWise/CC/internal/repository"
	"github.com/SustainWise/CC/internal/stats"
	"github.com/SustainWise/CC/internal/util"

	"github.com/gin-gonic/gin"
)

// TransactionHandler 负责收支记录接口
type TransactionHandler struct {
	Repo   *repository.TransactionRepo
	Engine *stats.Engine
	// GET /transactions/latest 返回条数
	LatestLimit int
}

func NewTransactionHandler(repo *repository.TransactionRepo, engine *stats.Engine, latestLimit int) *TransactionHandler {
	if latestLimit <= 0 {
		latestLimit = 5
	}
	return &TransactionHandler{Repo: repo, Engine: engine, LatestLimit: latestLimit}
}

// ---------- 请求/响应结构 ----------

type createTransactionReq struct {
	Kind     string `json:"type" binding:"required"`
	Category string `json:"category" binding:"required,max=64"`
	Amount   string `json:"amount" binding:"required"`
	Note     string `json:"note" binding:"max=255"`
	Date     string `json:"date" binding:"required"`
}

type transactionResp struct {
	ID         uint      `json:"id"`
	Kind       string    `json:"type"`
	Category   string    `json:"category"`
	AmountCent int64     `json:"amount_cent"`
	Amount     string    `json:"amount"`
	Note       string    `json:"note"`
	OccurredAt time.Time `json:"date"`
	RecordedAt time.Time `json:"recorded_at"`
}

func toTransactionResp(t *models.Transaction) transactionResp {
	return transactionResp{
		ID:         t.ID,
		Kind:       t.Kind,
		Category:   t.Category,
		AmountCent: t.AmountCent,
		Amount:     util.FormatCent(t.AmountCent),
		Note:       t.Note,
		OccurredAt: t.OccurredAt,
		RecordedAt: t.CreatedAt,
	}
}

// ---------- 记一笔 ----------

func (h *TransactionHandler) CreateTransaction(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	var req createTransactionReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "type, category, amount and date are required")
		return
	}

	kind, err := util.NormalizeKind(req.Kind)
	if err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, err.Error())
		return
	}

	req.Category = strings.TrimSpace(req.Category)
	if err := util.ValidateCategory(req.Category); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, err.Error())
		return
	}

	// 金额校验：>0，最多两位小数
	amountCent, err := util.ParseAmountCent(req.Amount)
	if err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, err.Error())
		return
	}

	occurredAt, err := util.ParseDate(req.Date)
	if err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, err.Error())
		return
	}

	record, newBalance, err := h.Repo.Create(repository.CreateInput{
		UserID:     user.ID,
		Kind:       kind,
		Category:   req.Category,
		AmountCent: amountCent,
		Note:       req.Note,
		OccurredAt: occurredAt,
	})
	if err != nil {
		writeTransactionErr(c, err)
		return
	}

	util.Created(c, util.Response{
		"message":     "transaction added successfully",
		"transaction": toTransactionResp(record),
		"newBalance":  util.FormatCent(newBalance),
	})
}

// ---------- 删除一条记录 ----------

func (h *TransactionHandler) DeleteTransaction(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	idStr := c.Param("id")
	id, err := strconv.Atoi(idStr)
	if err != nil || id <= 0 {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid transaction id")
		return
	}

	newBalance, err := h.Repo.Delete(user.ID, uint(id))
	if err != nil {
		writeTransactionErr(c, err)
		return
	}

	util.Success(c, util.Response{
		"message":        "transaction deleted successfully",
		"updatedBalance": util.FormatCent(newBalance),
	})
}

// ---------- 月度列表 ----------

// ListMonthly 按 type+month+year 查询当月记录，没有记录返回 404
func (h *TransactionHandler) ListMonthly(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	kindStr := c.Query("type")
	if kindStr == "" {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "type, month and year are required")
		return
	}
	kind, err := util.NormalizeKind(kindStr)
	if err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, err.Error())
		return
	}

	year, month, err := util.ParseMonthYear(c.Query("month"), c.Query("year"))
	if err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, err.Error())
		return
	}

	records, err := h.Repo.ListMonthly(user.ID, kind, year, month)
	if err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to query transactions")
		return
	}
	if len(records) == 0 {
		util.Error(c, http.StatusNotFound, util.CodeNotFound, "no transactions found for this month")
		return
	}

	items := make([]transactionResp, 0, len(records))
	for i := range records {
		items = append(items, toTransactionResp(&records[i]))
	}

	util.Success(c, util.Response{
		"transactions": items,
	})
}

// ---------- 最近记录 ----------

func (h *TransactionHandler) ListLatest(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	records, err := h.Engine.LatestTransactions(user.ID, h.LatestLimit)
	if err != nil {
		if errors.Is(err, stats.ErrNoData) {
			util.Error(c, http.StatusNotFound, util.CodeNotFound, "no transactions yet")
			return
		}
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to query transactions")
		return
	}

	items := make([]transactionResp, 0, len(records))
	for i := range records {
		items = append(items, toTransactionResp(&records[i]))
	}

	util.Success(c, util.Response{
		"transactions": items,
	})
}

// writeTransactionErr 把核心包的错误映射成统一的响应
func writeTransactionErr(c *gin.Context, err error) {
	switch {
	case errors.Is(err, repository.ErrInvalidCategory):
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid category")
	case errors.Is(err, repository.ErrNotFound):
		util.Error(c, http.StatusNotFound, util.CodeNotFound, "transaction not found")
	case errors.Is(err, repository.ErrForbidden):
		util.Error(c, http.StatusForbidden, util.CodeForbidden, "you are not authorized to modify this transaction")
	case errors.Is(err, ledger.ErrUserNotFound):
		util.Error(c, http.StatusNotFound, util.CodeNotFound, "user not found")
	case errors.Is(err, ledger.ErrConflict):
		util.Error(c, http.StatusConflict, util.CodeConflict, "balance update conflict, please retry")
	default:
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to save transaction")
	}
}
