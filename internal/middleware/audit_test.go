package middleware

import (
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/SustainWise/CC/internal/config"
	"github.com/SustainWise/CC/internal/database"
	"github.com/SustainWise/CC/internal/models"

	"github.com/gin-gonic/gin"
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

func auditTestRouter(t *testing.T, db *gorm.DB) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	user := models.User{Email: "audit@example.com", Username: "auditor"}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("create user: %v", err)
	}
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set("currentUser", &user)
	}, AuditMiddleware(db))
	r.POST("/profile/password", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.POST("/transaction", func(c *gin.Context) { c.Status(http.StatusOK) })
	return r
}

func lastAuditLog(t *testing.T, db *gorm.DB) models.AuditLog {
	t.Helper()
	var entry models.AuditLog
	if err := db.Order("id DESC").First(&entry).Error; err != nil {
		t.Fatalf("load audit log: %v", err)
	}
	return entry
}

// TestAuditMiddleware_RedactsPassword 改密请求落库后不能出现明文密码
func TestAuditMiddleware_RedactsPassword(t *testing.T) {
	db := openTestDB(t)
	r := auditTestRouter(t, db)

	body := `{"old_password":"hunter2","new_password":"correct horse"}`
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/profile/password", strings.NewReader(body))
	r.ServeHTTP(w, req)

	entry := lastAuditLog(t, db)
	if strings.Contains(entry.Action, "hunter2") || strings.Contains(entry.Action, "correct horse") {
		t.Fatalf("plaintext credential persisted: %q", entry.Action)
	}
	if entry.Action != "POST /profile/password" {
		t.Fatalf("unexpected action: %q", entry.Action)
	}
}

// TestAuditMiddleware_RedactsPasswordField 路径之外，字段名带 password 的请求体也要挡住
func TestAuditMiddleware_RedactsPasswordField(t *testing.T) {
	db := openTestDB(t)
	r := auditTestRouter(t, db)

	body := `{"Password":"hunter2"}`
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/transaction", strings.NewReader(body))
	r.ServeHTTP(w, req)

	entry := lastAuditLog(t, db)
	if strings.Contains(entry.Action, "hunter2") {
		t.Fatalf("plaintext credential persisted: %q", entry.Action)
	}
}

// TestAuditMiddleware_KeepsNormalBody 普通写操作的请求体照常记录
func TestAuditMiddleware_KeepsNormalBody(t *testing.T) {
	db := openTestDB(t)
	r := auditTestRouter(t, db)

	body := `{"type":"outcome","category":"Food","amount":"12.50"}`
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/transaction", strings.NewReader(body))
	r.ServeHTTP(w, req)

	entry := lastAuditLog(t, db)
	if !strings.Contains(entry.Action, `"category":"Food"`) {
		t.Fatalf("transaction body not recorded: %q", entry.Action)
	}
}
