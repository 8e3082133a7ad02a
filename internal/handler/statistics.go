package handler

import (
	"errors"
	"net/http"

	"github.com/SustainWise/CC/internal/stats"
	"github.com/SustainWise/CC/internal/util"

	"github.com/gin-gonic/gin"
)

// StatisticsHandler 负责统计接口，全部只读
type StatisticsHandler struct {
	Engine *stats.Engine
}

func NewStatisticsHandler(engine *stats.Engine) *StatisticsHandler {
	return &StatisticsHandler{Engine: engine}
}

// MonthlyStatistics 返回某月收入/支出合计、结余和各分类支出
func (h *StatisticsHandler) MonthlyStatistics(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	year, month, err := util.ParseMonthYear(c.Query("month"), c.Query("year"))
	if err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, err.Error())
		return
	}

	breakdown, err := h.Engine.MonthlyBreakdown(user.ID, year, month)
	if err != nil {
		if errors.Is(err, stats.ErrNoData) {
			util.Error(c, http.StatusNotFound, util.CodeNotFound, "no transactions found for this month")
			return
		}
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to compute statistics")
		return
	}

	categories := make([]gin.H, 0, len(breakdown.CategoryTotals))
	for name, cent := range breakdown.CategoryTotals {
		categories = append(categories, gin.H{
			"category": name,
			"total":    util.FormatCent(cent),
		})
	}

	util.Success(c, util.Response{
		"year":          year,
		"month":         month,
		"total_income":  util.FormatCent(breakdown.TotalIncomeCent),
		"total_outcome": util.FormatCent(breakdown.TotalOutcomeCent),
		"savings":       util.FormatCent(breakdown.SavingsCent),
		"by_category":   categories,
	})
}

// WeeklyExpenses 返回某月按固定 4 周分桶的支出
func (h *StatisticsHandler) WeeklyExpenses(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	year, month, err := util.ParseMonthYear(c.Query("month"), c.Query("year"))
	if err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, err.Error())
		return
	}

	buckets, err := h.Engine.WeeklyExpenses(user.ID, year, month)
	if err != nil {
		if errors.Is(err, stats.ErrNoData) {
			util.Error(c, http.StatusNotFound, util.CodeNotFound, "no transactions found for this month")
			return
		}
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to compute statistics")
		return
	}

	weeks := make([]gin.H, 0, len(buckets))
	for _, b := range buckets {
		weeks = append(weeks, gin.H{
			"week":          b.Week,
			"total_expense": util.FormatCent(b.TotalExpenseCent),
		})
	}

	util.Success(c, util.Response{
		"year":   year,
		"month":  month,
		"weekly": weeks,
	})
}
