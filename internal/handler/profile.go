package handler

import (
	"net/http"
	"os"
	"strings"

	"github.com/SustainWise/CC/internal/media"
	"github.com/SustainWise/CC/internal/util"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// ProfileHandler 负责资料编辑和头像管理
type ProfileHandler struct {
	DB     *gorm.DB
	Photos media.Store
}

func NewProfileHandler(db *gorm.DB, photos media.Store) *ProfileHandler {
	return &ProfileHandler{DB: db, Photos: photos}
}

type editUserReq struct {
	Username string `json:"username" binding:"max=64"`
	Phone    string `json:"phone" binding:"max=32"`
}

// EditUser 更新用户名/手机号，multipart 请求时还可以带头像文件。
// username、phone、photo 三者至少要有一个，否则 400。
func (h *ProfileHandler) EditUser(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	var (
		username string
		phone    string
		hasPhoto bool
	)

	if strings.HasPrefix(c.ContentType(), "multipart/") {
		username = strings.TrimSpace(c.PostForm("username"))
		phone = strings.TrimSpace(c.PostForm("phone"))

		file, err := c.FormFile("photo")
		if err == nil && file != nil {
			key, err := h.Photos.Save(file)
			if err != nil {
				util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, err.Error())
				return
			}
			// 旧头像文件尽量清掉，失败不阻塞
			if user.PhotoPath != "" {
				_ = h.Photos.Remove(user.PhotoPath)
			}
			user.PhotoPath = key
			hasPhoto = true
		}
	} else {
		var req editUserReq
		if err := c.ShouldBindJSON(&req); err != nil {
			util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid request body")
			return
		}
		username = strings.TrimSpace(req.Username)
		phone = strings.TrimSpace(req.Phone)
	}

	if username == "" && phone == "" && !hasPhoto {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "at least one of username, phone or photo must be provided")
		return
	}

	updates := map[string]interface{}{}
	if username != "" {
		updates["username"] = username
		user.Username = username
	}
	if phone != "" {
		updates["phone"] = phone
		user.Phone = phone
	}
	if hasPhoto {
		updates["photo_path"] = user.PhotoPath
	}

	if err := h.DB.Model(user).Updates(updates).Error; err != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to update user")
		return
	}

	util.Success(c, util.Response{
		"message": "user updated successfully",
		"updatedFields": gin.H{
			"username": user.Username,
			"phone":    user.Phone,
			"photo":    user.PhotoPath,
		},
	})
}

// GetPhoto 回传当前用户头像文件
func (h *ProfileHandler) GetPhoto(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	if user.PhotoPath == "" {
		util.Error(c, http.StatusNotFound, util.CodeNotFound, "no photo uploaded")
		return
	}

	path := h.Photos.Path(user.PhotoPath)
	if _, err := os.Stat(path); err != nil {
		util.Error(c, http.StatusNotFound, util.CodeNotFound, "photo file is missing")
		return
	}

	c.File(path)
}

// DeletePhoto 删除当前用户头像：清字段 + 删文件
func (h *ProfileHandler) DeletePhoto(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}

	if user.PhotoPath == "" {
		util.Error(c, http.StatusNotFound, util.CodeNotFound, "no photo to delete")
		return
	}

	err := h.Photos.Remove(user.PhotoPath)
	if err != nil && err != media.ErrNoPhoto {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to delete photo file")
		return
	}

	if dbErr := h.DB.Model(user).Update("photo_path", "").Error; dbErr != nil {
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to update user")
		return
	}
	user.PhotoPath = ""

	if err == media.ErrNoPhoto {
		// 字段已清，但文件本来就不在了
		util.Error(c, http.StatusNotFound, util.CodeNotFound, "photo file was already missing")
		return
	}

	util.Success(c, util.Response{
		"message": "photo deleted successfully",
	})
}

// ChangePasswordReq 修改密码请求
type ChangePasswordReq struct {
	OldPassword string `json:"old_password" binding:"required"`
	NewPassword string `json:"new_password" binding:"required,min=6,max=64"`
}

// ChangePassword 修改当前用户密码
func ChangePassword(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := currentUser(c)
		if !ok {
			return
		}

		var req ChangePasswordReq
		if err := c.ShouldBindJSON(&req); err != nil {
			util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "invalid request body")
			return
		}

		// Google-only 账号没有旧密码可验
		if user.PasswordHash == "" {
			util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "account has no password")
			return
		}

		if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.OldPassword)); err != nil {
			util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "old password is incorrect")
			return
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
		if err != nil {
			util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to hash password")
			return
		}

		if err := db.Model(user).Update("password_hash", string(hash)).Error; err != nil {
			util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "failed to update password")
			return
		}

		util.Success(c, util.Response{
			"message": "password changed, please login again",
		})
	}
}
