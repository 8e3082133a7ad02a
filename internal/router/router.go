package router

import (
	"net/http"

	"github.com/SustainWise/CC/internal/config"
	"github.com/SustainWise/CC/internal/handler"
	"github.com/SustainWise/CC/internal/ledger"
	"github.com/SustainWise/CC/internal/media"
	"github.com/SustainWise/CC/internal/middleware"
	"github.com/SustainWise/CC/internal/repository"
	"github.com/SustainWise/CC/internal/stats"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// SetupRouter wires every handler to its route. All dependencies are
// constructed here once and injected; nothing reaches for globals.
func SetupRouter(cfg *config.Config, db *gorm.DB, photos media.Store) *gin.Engine {
	if cfg.Server.Mode != "" {
		gin.SetMode(cfg.Server.Mode)
	}
	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery(), corsMiddleware())

	// 核心组件：ledger -> repository -> stats
	ledgerSvc := ledger.New(db)
	txRepo := repository.NewTransactionRepo(db, ledgerSvc)
	engine := stats.NewEngine(txRepo)

	jwtSecret := cfg.JWT.Secret

	// 注册/登录接口（不需要鉴权）
	authHandler := handler.NewAuthHandler(db, jwtSecret, cfg.JWT.ExpireHours, cfg.Security.BcryptCost)
	r.POST("/register", authHandler.Register)
	r.POST("/login", authHandler.Login)
	r.POST("/register-google", authHandler.RegisterGoogle)
	r.POST("/login-google", authHandler.LoginGoogle)

	// 分类接口历史上一直没有鉴权，客户端依赖它，保持原样
	categoryHandler := handler.NewCategoryHandler(db)
	r.POST("/category", categoryHandler.CreateCategory)
	r.GET("/categories", categoryHandler.ListCategories)

	// 需要登录才能访问的接口
	protected := r.Group("")
	protected.Use(
		middleware.AuthMiddleware(jwtSecret, db),
		middleware.AuditMiddleware(db),
	)

	protected.GET("/user", handler.GetUser)

	profileHandler := handler.NewProfileHandler(db, photos)
	protected.PATCH("/edit-user", profileHandler.EditUser)
	protected.GET("/user/photo", profileHandler.GetPhoto)
	protected.DELETE("/delete-photo", profileHandler.DeletePhoto)
	protected.POST("/profile/password", handler.ChangePassword(db))

	txHandler := handler.NewTransactionHandler(txRepo, engine, cfg.App.LatestLimit)
	protected.POST("/transaction", txHandler.CreateTransaction)
	protected.DELETE("/transaction/:id", txHandler.DeleteTransaction)
	protected.GET("/transactions/monthly", txHandler.ListMonthly)
	protected.GET("/transactions/latest", txHandler.ListLatest)

	saldoHandler := handler.NewSaldoHandler(db)
	protected.GET("/saldo", saldoHandler.GetSaldo)
	protected.GET("/saldo/monthly", saldoHandler.GetMonthlySaldo)

	statsHandler := handler.NewStatisticsHandler(engine)
	protected.GET("/transaction/weekly-expenses", statsHandler.WeeklyExpenses)
	protected.GET("/statistics/monthly", statsHandler.MonthlyStatistics)

	exportHandler := handler.NewExportHandler(txRepo)
	protected.GET("/export/csv", exportHandler.ExportCSV)
	protected.GET("/export/xlsx", exportHandler.ExportXLSX)

	logHandler := handler.NewLogHandler(db)
	protected.GET("/logs", logHandler.ListLogs)

	return r
}

// corsMiddleware 客户端是独立部署的前端，全放开
func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, PATCH, PUT, DELETE, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Authorization, Content-Type")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}
