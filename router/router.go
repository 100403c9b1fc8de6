package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/marcuschin/poolhall-pos/controllers"
	"github.com/marcuschin/poolhall-pos/hub"
	"github.com/marcuschin/poolhall-pos/middlewares"
	"github.com/marcuschin/poolhall-pos/services"
)

// SetupRouter wires every endpoint. The front-of-house console talks to
// /tables and /ws, everything else backs the admin pages.
func SetupRouter(db *gorm.DB, h *hub.Hub, tables *services.TableService, merges *services.MergeService, fees *services.FeeService) *gin.Engine {
	r := gin.Default()

	r.Use(middlewares.SecurityHeaders())
	r.Use(middlewares.CORSMiddlewares())
	r.Use(middlewares.LoggerMiddleware())

	userCtrl := controllers.NewUserController(db)
	tableCtrl := controllers.NewTableController(db, tables, merges, fees, h)
	pricingCtrl := controllers.NewPricingController(db)
	promoCtrl := controllers.NewPromotionController(db)
	reservationCtrl := controllers.NewReservationController(db, h)
	memberCtrl := controllers.NewMemberController(db)
	inventoryCtrl := controllers.NewInventoryController(db)
	txnCtrl := controllers.NewTransactionController(db, h)
	queueCtrl := controllers.NewQueueController(db, h)
	roleCtrl := controllers.NewRoleController(db)
	settingCtrl := controllers.NewSettingController(db)
	auditCtrl := controllers.NewAuditController(db)
	wsCtrl := controllers.NewWSController(db, h)

	r.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"service": "poolhall-pos", "status": "running"})
	})
	r.GET("/health", func(c *gin.Context) {
		sqlDB, err := db.DB()
		if err != nil || sqlDB.Ping() != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok", "ws_clients": h.ClientCount()})
	})
	r.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

	public := r.Group("/")
	public.Use(middlewares.NewStrictRateLimiter())
	{
		public.POST("/register", userCtrl.Register)
		public.POST("/login", userCtrl.Login)
	}

	// WebSocket feed for the floor display. Token comes via query string
	// because browsers cannot set headers on WebSocket upgrades.
	r.GET("/ws", middlewares.AuthMiddleware(), wsCtrl.Handle)

	auth := r.Group("/")
	auth.Use(middlewares.AuthMiddleware())
	{
		auth.GET("/profile", userCtrl.GetProfile)

		auth.GET("/tables", tableCtrl.GetAllTables)
		auth.POST("/tables", tableCtrl.CreateTable)
		auth.GET("/tables/stats", tableCtrl.GetDashboardStats)
		auth.GET("/tables/:table_id", tableCtrl.GetTableByID)
		auth.POST("/tables/:table_id/start", tableCtrl.StartSession)
		auth.POST("/tables/:table_id/stop", tableCtrl.StopSession)
		auth.GET("/tables/:table_id/fee", tableCtrl.PreviewFee)
		auth.POST("/tables/:table_id/cleaning", tableCtrl.MarkCleaning)
		auth.POST("/tables/:table_id/cleaning/done", tableCtrl.ClearCleaning)
		auth.POST("/tables/:table_id/reserve", tableCtrl.ReserveTable)
		auth.POST("/tables/:table_id/unreserve", tableCtrl.UnreserveTable)
		auth.POST("/tables/:table_id/service", tableCtrl.RequestService)
		auth.POST("/tables/:table_id/service/done", tableCtrl.ResolveService)
		auth.POST("/tables/merge", tableCtrl.MergeTables)
		auth.POST("/tables/:table_id/unmerge", tableCtrl.UnmergeTable)

		auth.GET("/pricing-rules", pricingCtrl.GetAllRules)
		auth.GET("/promotions", promoCtrl.GetAllPromotions)

		auth.GET("/reservations", reservationCtrl.GetAllReservations)
		auth.POST("/reservations", reservationCtrl.CreateReservation)
		auth.PATCH("/reservations/:reservation_id", reservationCtrl.UpdateReservationStatus)

		auth.GET("/members", memberCtrl.GetAllMembers)
		auth.POST("/members", memberCtrl.CreateMember)
		auth.POST("/members/:member_id/topup", memberCtrl.TopupMember)
		auth.GET("/membership-tiers", memberCtrl.GetAllTiers)

		auth.GET("/inventory", inventoryCtrl.GetAllItems)
		auth.POST("/inventory", inventoryCtrl.CreateItem)
		auth.POST("/inventory/:item_id/outbound", inventoryCtrl.Outbound)
		auth.POST("/inventory/:item_id/restock", inventoryCtrl.Restock)

		auth.GET("/transactions", txnCtrl.GetAllTransactions)
		auth.POST("/transactions", txnCtrl.CreateTransaction)
		auth.GET("/transactions/stats", txnCtrl.GetStats)
		auth.GET("/transactions/export", txnCtrl.ExportCSV)

		auth.GET("/queue", queueCtrl.GetQueue)
		auth.POST("/queue", queueCtrl.AddToQueue)
		auth.POST("/queue/call-next", queueCtrl.CallNext)
		auth.DELETE("/queue/:queue_id", queueCtrl.RemoveFromQueue)

		auth.GET("/settings/business", settingCtrl.GetBusinessSettings)
	}

	// Price changes are restricted, everything billable hangs off them.
	priced := r.Group("/")
	priced.Use(middlewares.AuthMiddleware(), middlewares.RequirePermission(db, "manage_prices"))
	{
		priced.POST("/pricing-rules", pricingCtrl.CreateRule)
		priced.PATCH("/pricing-rules/:rule_id", pricingCtrl.UpdateRule)
		priced.DELETE("/pricing-rules/:rule_id", pricingCtrl.DeleteRule)
		priced.POST("/promotions", promoCtrl.CreatePromotion)
		priced.POST("/membership-tiers", memberCtrl.CreateTier)
	}

	admin := r.Group("/admin")
	admin.Use(middlewares.AuthMiddleware(), middlewares.RequirePermission(db, "manage_staff"))
	{
		admin.GET("/users", userCtrl.GetAllUsers)
		admin.PATCH("/users/:user_id/status", userCtrl.UpdateUserStatus)
		admin.DELETE("/users/:user_id", userCtrl.DeleteUser)
		admin.GET("/roles", roleCtrl.GetAllRoles)
		admin.POST("/roles", roleCtrl.CreateRole)
		admin.PATCH("/roles/:role_name", roleCtrl.UpdateRole)
		admin.GET("/settings", settingCtrl.GetAllSettings)
		admin.POST("/settings", settingCtrl.SetSetting)
		admin.PATCH("/settings/business", settingCtrl.UpdateBusinessSettings)
		admin.GET("/audit-logs", auditCtrl.GetAuditLogs)
	}

	return r
}
