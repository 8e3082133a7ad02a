package handler

import (
	"net/http"

	"github.com/SustainWise/CC/internal/models"
	"github.com/SustainWise/CC/internal/util"

	"github.com/gin-gonic/gin"
)

// currentUser 取出 AuthMiddleware 放进 context 的用户；
// 取不到时直接写 401 并返回 false。
func currentUser(c *gin.Context) (*models.User, bool) {
	v, ok := c.Get("currentUser")
	if !ok {
		util.Error(c, http.StatusUnauthorized, util.CodeAuth, "not logged in")
		return nil, false
	}
	user, ok := v.(*models.User)
	if !ok || user == nil {
		util.Error(c, http.StatusUnauthorized, util.CodeAuth, "not logged in")
		return nil, false
	}
	return user, true
}

// GetUser 返回当前登录用户的资料（需要经过 AuthMiddleware）
func GetUser(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	util.Success(c, util.Response{
		"user": gin.H{
			"id":         user.ID,
			"email":      user.Email,
			"username":   user.Username,
			"phone":      user.Phone,
			"saldo":      util.FormatCent(user.BalanceCent),
			"photo":      user.PhotoPath,
			"created_at": user.CreatedAt,
		},
	})
}
