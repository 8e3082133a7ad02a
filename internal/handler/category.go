package handler

import (
	"net/http"
	"strings"

	"github.com/SustainWise/CC/internal/models"
	"github.com/SustainWise/CC/internal/util"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// CategoryHandler 负责分类接口。
// 注意：创建分类在历史版本里一直不鉴权，客户端依赖这个行为，
// 先保持原样（见 DESIGN.md）。
type CategoryHandler struct {
	DB *gorm.DB
}

func NewCategoryHandler(db *gorm.DB) *CategoryHandler {
	return &CategoryHandler{DB: db}
}

type createCategoryReq struct {
	Name            string `json:"name" binding:"required,max=64"`
	DefaultCategory bool   `json:"defaultCategory"`
}

// CreateCategory 新建分类，名字就是主键，重复创建是幂等的
func (h *CategoryHandler) CreateCategory(c *gin.Context) {
	var req createCategoryReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "name is required")
		return
	}

	req.Name = strings.TrimSpace(req.Name)
	if err := util.ValidateCategory(req.Name); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, err.Error())
		return
	}

	category := models.Category{
		Name:      req.Name,
		IsDefault: req.DefaultCategory,
	}
	if err := h.DB.Where(&models.Category{Name: req.Name}).
		FirstOrCreate(&category).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to create category")
		return
	}

	util.Created(c, util.Response{
		"message": "category added successfully",
		"category": gin.H{
			"name":    category.Name,
			"default": category.IsDefault,
		},
	})
}

// ListCategories 返回全部分类
func (h *CategoryHandler) ListCategories(c *gin.Context) {
	var categories []models.Category
	if err := h.DB.Order("name ASC").Find(&categories).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to list categories")
		return
	}

	items := make([]gin.H, 0, len(categories))
	for _, cat := range categories {
		items = append(items, gin.H{
			"name":    cat.Name,
			"default": cat.IsDefault,
		})
	}

	util.Success(c, util.Response{
		"categories": items,
	})
}
