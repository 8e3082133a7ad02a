package handler

import (
	"net/http"
	"strings"
	"time"

	"github.com/SustainWise/CC/internal/models"
	"github.com/SustainWise/CC/internal/util"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// AuthHandler 负责注册/登录相关接口，是身份网关的全部入口。
// 普通注册走 email+password，Google 登录只认 email（前端已经
// 过了 Google 那一关，这里只负责找到或建立本地用户）。
type AuthHandler struct {
	DB         *gorm.DB
	JWTSecret  string
	TokenTTL   time.Duration
	BcryptCost int
}

// NewAuthHandler 构造函数
func NewAuthHandler(db *gorm.DB, jwtSecret string, ttlHours, bcryptCost int) *AuthHandler {
	if ttlHours <= 0 {
		ttlHours = 24
	}
	if bcryptCost < bcrypt.MinCost || bcryptCost > bcrypt.MaxCost {
		bcryptCost = bcrypt.DefaultCost
	}
	return &AuthHandler{
		DB:         db,
		JWTSecret:  jwtSecret,
		TokenTTL:   time.Duration(ttlHours) * time.Hour,
		BcryptCost: bcryptCost,
	}
}

// ---------- 注册 ----------

type registerReq struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required,min=6,max=64"`
	Username string `json:"username" binding:"required,max=64"`
	Phone    string `json:"phone" binding:"max=32"`
}

func (h *AuthHandler) Register(c *gin.Context) {
	var req registerReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "email, password and username are required")
		return
	}

	req.Email = strings.TrimSpace(strings.ToLower(req.Email))
	req.Username = strings.TrimSpace(req.Username)

	if err := util.ValidateEmail(req.Email); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid email format")
		return
	}

	// 邮箱唯一
	var count int64
	if err := h.DB.Model(&models.User{}).Where("email = ?", req.Email).Count(&count).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to query user")
		return
	}
	if count > 0 {
		util.Error(c, http.StatusConflict, util.CodeConflict, "email already registered")
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), h.BcryptCost)
	if err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to hash password")
		return
	}

	// 新用户 saldo 从 0 开始
	user := models.User{
		Email:        req.Email,
		Username:     req.Username,
		Phone:        req.Phone,
		PasswordHash: string(hash),
		BalanceCent:  0,
	}
	if err := h.DB.Create(&user).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to create user")
		return
	}

	util.Created(c, util.Response{
		"message": "user registered successfully",
		"user": gin.H{
			"id":       user.ID,
			"email":    user.Email,
			"username": user.Username,
		},
	})
}

// ---------- 登录 ----------

type loginReq struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req loginReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "email and password are required")
		return
	}

	req.Email = strings.TrimSpace(strings.ToLower(req.Email))

	var user models.User
	if err := h.DB.Where("email = ?", req.Email).First(&user).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			util.Error(c, http.StatusUnauthorized, util.CodeAuth, "invalid email or password")
		} else {
			util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to query user")
		}
		return
	}

	// Google-only 账号没有密码，不能走这里
	if user.PasswordHash == "" ||
		bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)) != nil {
		util.Error(c, http.StatusUnauthorized, util.CodeAuth, "invalid email or password")
		return
	}

	h.touchLogin(c, &user)

	token, err := util.GenerateToken(h.JWTSecret, user.ID, user.Email, h.TokenTTL)
	if err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to generate token")
		return
	}

	util.Success(c, util.Response{
		"token": token,
		"user": gin.H{
			"id":       user.ID,
			"email":    user.Email,
			"username": user.Username,
		},
	})
}

// ---------- Google 身份 ----------

type googleReq struct {
	Email string `json:"email" binding:"required"`
}

// RegisterGoogle 用 Google 身份注册：已存在则提示直接登录，
// 不存在则建一个无密码账号。
func (h *AuthHandler) RegisterGoogle(c *gin.Context) {
	var req googleReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "email is required")
		return
	}

	req.Email = strings.TrimSpace(strings.ToLower(req.Email))
	if err := util.ValidateEmail(req.Email); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid email format")
		return
	}

	var user models.User
	err := h.DB.Where("email = ?", req.Email).First(&user).Error
	if err == nil {
		util.Success(c, util.Response{
			"message": "user already exists, proceed to login",
			"user": gin.H{
				"id":    user.ID,
				"email": user.Email,
			},
		})
		return
	}
	if err != gorm.ErrRecordNotFound {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to query user")
		return
	}

	user = models.User{
		Email:       req.Email,
		BalanceCent: 0,
	}
	if err := h.DB.Create(&user).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to create user")
		return
	}

	util.Created(c, util.Response{
		"message": "user registered successfully",
		"user": gin.H{
			"id":    user.ID,
			"email": user.Email,
		},
	})
}

// LoginGoogle 用 Google 身份登录：找不到用户返回 404，提示先注册。
func (h *AuthHandler) LoginGoogle(c *gin.Context) {
	var req googleReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "email is required")
		return
	}

	req.Email = strings.TrimSpace(strings.ToLower(req.Email))

	var user models.User
	if err := h.DB.Where("email = ?", req.Email).First(&user).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			util.Error(c, http.StatusNotFound, util.CodeNotFound, "user not found, please register first")
		} else {
			util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to query user")
		}
		return
	}

	h.touchLogin(c, &user)

	token, err := util.GenerateToken(h.JWTSecret, user.ID, user.Email, h.TokenTTL)
	if err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to generate token")
		return
	}

	util.Success(c, util.Response{
		"message": "login successful",
		"token":   token,
		"user": gin.H{
			"id":       user.ID,
			"email":    user.Email,
			"username": user.Username,
		},
	})
}

// touchLogin 记录最近登录时间和 IP，失败不影响登录流程
func (h *AuthHandler) touchLogin(c *gin.Context, user *models.User) {
	now := time.Now()
	user.LastLoginAt = &now
	user.LastLoginIP = c.ClientIP()
	_ = h.DB.Model(user).Updates(map[string]interface{}{
		"last_login_at": now,
		"last_login_ip": user.LastLoginIP,
	}).Error
}
