package handler

import (
	"net/http"

	"github.com/SustainWise/CC/internal/models"
	"github.com/SustainWise/CC/internal/util"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// SaldoHandler 负责余额读取接口
type SaldoHandler struct {
	DB *gorm.DB
}

func NewSaldoHandler(db *gorm.DB) *SaldoHandler {
	return &SaldoHandler{DB: db}
}

// GetSaldo 读取当前余额。余额是物化好的字段，这里 O(1)，
// 不需要扫交易历史。
func (h *SaldoHandler) GetSaldo(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	// 重新读一次，拿到其他请求刚写入的最新值
	var fresh models.User
	if err := h.DB.Select("balance_cent").First(&fresh, user.ID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			util.Error(c, http.StatusNotFound, util.CodeNotFound, "user not found")
		} else {
			util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to query saldo")
		}
		return
	}

	util.Success(c, util.Response{
		"saldo_cent": fresh.BalanceCent,
		"saldo":      util.FormatCent(fresh.BalanceCent),
	})
}

// GetMonthlySaldo 读取某月的 saldo checkpoint，没有快照返回 404
func (h *SaldoHandler) GetMonthlySaldo(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	year, month, err := util.ParseMonthYear(c.Query("month"), c.Query("year"))
	if err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, err.Error())
		return
	}

	var ck models.SaldoCheckpoint
	if err := h.DB.
		Where("user_id = ? AND year = ? AND month = ?", user.ID, year, month).
		First(&ck).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			util.Error(c, http.StatusNotFound, util.CodeNotFound, "no saldo checkpoint for this month")
		} else {
			util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to query checkpoint")
		}
		return
	}

	util.Success(c, util.Response{
		"year":          ck.Year,
		"month":         ck.Month,
		"total_income":  util.FormatCent(ck.IncomeCent),
		"total_outcome": util.FormatCent(ck.OutcomeCent),
		"saldo":         util.FormatCent(ck.ClosingCent),
		"updated_at":    ck.UpdatedAt,
	})
}
