package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"Paystone/internal/api/middleware"
	"Paystone/internal/pkg/logger"
)

func SetupRouter(group *HandlersGroup) *gin.Engine {
	r := gin.New()
	_ = r.SetTrustedProxies([]string{"localhost"})

	// TraceId & Logger & CORS
	r.Use(middleware.TraceMiddleware())
	r.Use(middleware.AuditMiddleware())
	r.Use(middleware.CORSMiddleware())
	logger.SetupGin(r)

	apiGroup := r.Group("/api")
	{
		apiGroup.GET("/ping", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{
				"Code":    200,
				"Message": "pong",
				"Data":    nil,
			})
		})

		payoutGroup := apiGroup.Group("/payouts")
		payoutGroup.Use(middleware.AuthMiddleware())
		{
			// 创作者本人查看当月实时预览
			payoutGroup.GET("/month-to-date", group.PayoutHandler.MonthToDate)

			adminGroup := payoutGroup.Group("")
			adminGroup.Use(middleware.CheckRoles("ADMIN"))
			{
				adminGroup.GET("", group.PayoutHandler.List)
				adminGroup.GET("/:creator_id/:year/:month", group.PayoutHandler.Get)
				adminGroup.POST("/:creator_id/:year/:month/recompute", group.PayoutHandler.Recompute)
				adminGroup.POST("/:creator_id/:year/:month/approve", group.PayoutHandler.Approve)
				adminGroup.POST("/:creator_id/:year/:month/revert", group.PayoutHandler.Revert)
				adminGroup.GET("/:creator_id/:year/:month/audit", group.PayoutHandler.Audits)
			}

			// 打款确认需要财务角色
			financeGroup := payoutGroup.Group("")
			financeGroup.Use(middleware.CheckRoles("ADMIN", "FINANCE"))
			{
				financeGroup.POST("/:creator_id/:year/:month/pay", group.PayoutHandler.Pay)
			}
		}

		postGroup := apiGroup.Group("/posts")
		postGroup.Use(middleware.AuthMiddleware(), middleware.CheckRoles("ADMIN"))
		{
			postGroup.GET("/:post_id/attribution/:year/:month", group.PayoutHandler.PostAttribution)
		}

		snapshotGroup := apiGroup.Group("/snapshots")
		snapshotGroup.Use(middleware.AuthMiddleware())
		{
			snapshotGroup.POST("", group.SnapshotHandler.Ingest)
			snapshotGroup.GET("/:post_id", group.SnapshotHandler.Series)
		}

		statementGroup := apiGroup.Group("/statements")
		statementGroup.Use(middleware.AuthMiddleware(), middleware.CheckRoles("ADMIN"))
		{
			statementGroup.POST("/:year/:month/export", group.StatementHandler.Export)
		}
	}

	return r
}
