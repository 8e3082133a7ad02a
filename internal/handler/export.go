package handler

import (
	"encoding/csv"
	"fmt"
	"net/http"
	"time"

	"github.com/SustainWise/CC/internal/models"
	"github.com/SustainWise/CC/internal/repository"
	"github.com/SustainWise/CC/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/xuri/excelize/v2"
)

// ExportHandler 导出某月的收支明细
type ExportHandler struct {
	Repo *repository.TransactionRepo
}

func NewExportHandler(repo *repository.TransactionRepo) *ExportHandler {
	return &ExportHandler{Repo: repo}
}

// fetchMonth 解析参数并取出当月合并后的记录
func (h *ExportHandler) fetchMonth(c *gin.Context) ([]models.Transaction, bool) {
	user, ok := currentUser(c)
	if !ok {
		return nil, false
	}

	year, month, err := util.ParseMonthYear(c.Query("month"), c.Query("year"))
	if err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, err.Error())
		return nil, false
	}

	records, err := h.Repo.FetchMonth(user.ID, year, month)
	if err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to query transactions")
		return nil, false
	}
	if len(records) == 0 {
		util.Error(c, http.StatusNotFound, util.CodeNotFound, "no transactions found for this month")
		return nil, false
	}
	return records, true
}

// ExportCSV 导出当月明细为 CSV
func (h *ExportHandler) ExportCSV(c *gin.Context) {
	records, ok := h.fetchMonth(c)
	if !ok {
		return
	}

	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"transactions_%s.csv\"",
		time.Now().Format("20060102")))

	writer := csv.NewWriter(c.Writer)
	defer writer.Flush()

	writer.Write([]string{"Type", "Category", "Amount", "Note", "Date"})
	for i := range records {
		r := &records[i]
		writer.Write([]string{
			r.Kind,
			r.Category,
			util.FormatCent(r.AmountCent),
			r.Note,
			r.OccurredAt.Format("2006-01-02"),
		})
	}
}

// ExportXLSX 导出当月明细为 XLSX
func (h *ExportHandler) ExportXLSX(c *gin.Context) {
	records, ok := h.fetchMonth(c)
	if !ok {
		return
	}

	f := excelize.NewFile()
	sheetName := "Transactions"
	index, err := f.NewSheet(sheetName)
	if err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to create sheet")
		return
	}
	f.SetActiveSheet(index)
	f.DeleteSheet("Sheet1")

	headers := []string{"Type", "Category", "Amount", "Note", "Date"}
	for i, header := range headers {
		cell := fmt.Sprintf("%c1", 'A'+i)
		f.SetCellValue(sheetName, cell, header)
	}

	for idx := range records {
		r := &records[idx]
		row := idx + 2
		f.SetCellValue(sheetName, fmt.Sprintf("A%d", row), r.Kind)
		f.SetCellValue(sheetName, fmt.Sprintf("B%d", row), r.Category)
		f.SetCellValue(sheetName, fmt.Sprintf("C%d", row), util.FormatCent(r.AmountCent))
		f.SetCellValue(sheetName, fmt.Sprintf("D%d", row), r.Note)
		f.SetCellValue(sheetName, fmt.Sprintf("E%d", row), r.OccurredAt.Format("2006-01-02"))
	}

	// 设置列宽
	f.SetColWidth(sheetName, "A", "A", 10)
	f.SetColWidth(sheetName, "B", "B", 15)
	f.SetColWidth(sheetName, "C", "C", 12)
	f.SetColWidth(sheetName, "D", "D", 30)
	f.SetColWidth(sheetName, "E", "E", 12)

	c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"transactions_%s.xlsx\"",
		time.Now().Format("20060102")))

	if err := f.Write(c.Writer); err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to export")
	}
}
