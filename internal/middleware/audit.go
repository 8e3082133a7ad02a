package middleware

import (
	"bytes"
	"io"
	"strings"

	"github.com/SustainWise/CC/internal/models"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// AuditMiddleware 记录登录用户的写操作，方便排查 saldo 异常
func AuditMiddleware(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		// 获取用户 ID
		var userID uint
		if v, ok := c.Get("currentUser"); ok {
			if user, ok := v.(*models.User); ok && user != nil {
				userID = user.ID
			}
		}

		// 读取请求体
		var bodyBytes []byte
		if c.Request.Body != nil {
			bodyBytes, _ = io.ReadAll(c.Request.Body)
			c.Request.Body = io.NopCloser(bytes.NewBuffer(bodyBytes))
		}

		// 执行请求
		c.Next()

		// 只记录登录用户的操作
		if userID == 0 {
			return
		}

		path := c.Request.URL.Path
		action := c.Request.Method + " " + path
		// 带凭据的请求体绝不落库，密码只能以 bcrypt 哈希的形式存在
		if len(bodyBytes) > 0 && len(bodyBytes) < 2000 && !carriesCredential(path, bodyBytes) {
			action += " " + string(bodyBytes)
		}

		entry := models.AuditLog{
			UserID:    &userID,
			Path:      path,
			Method:    c.Request.Method,
			Action:    action,
			IP:        c.ClientIP(),
			UserAgent: c.Request.UserAgent(),
		}

		_ = db.Create(&entry).Error
	}
}

// carriesCredential 判断请求是否携带凭据，改密接口之外也按字段名兜底
func carriesCredential(path string, body []byte) bool {
	if strings.Contains(path, "password") {
		return true
	}
	return bytes.Contains(bytes.ToLower(body), []byte("password"))
}
