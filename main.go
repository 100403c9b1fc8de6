package main

import (
	"log"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"gorm.io/gorm"

	"github.com/marcuschin/poolhall-pos/config"
	"github.com/marcuschin/poolhall-pos/database"
	"github.com/marcuschin/poolhall-pos/hub"
	"github.com/marcuschin/poolhall-pos/models"
	"github.com/marcuschin/poolhall-pos/router"
	"github.com/marcuschin/poolhall-pos/services"
	"github.com/marcuschin/poolhall-pos/utils"
)

func init() {
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env file not found or error loading: %v", err)
	}
	utils.InitLogger()
}

func main() {
	db, err := config.InitDB()
	if err != nil {
		utils.ErrorLogger.Fatalf("Failed to connect to database: %v", err)
	}
	utils.InitDB(db)

	if os.Getenv("GIN_MODE") == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	autoMigrate(db)
	if err := database.Seed(db); err != nil {
		utils.ErrorLogger.Fatalf("Failed to seed database: %v", err)
	}

	h := hub.New()
	clock := utils.SystemClock{}

	tables := services.NewTableService(db, h, clock)
	merges := services.NewMergeService(db, h, clock, tables)
	fees := services.NewFeeService(db, clock)

	ticker, err := services.NewSessionTicker(tables)
	if err != nil {
		utils.ErrorLogger.Fatalf("Failed to create session ticker: %v", err)
	}
	ticker.Start()
	defer ticker.Stop()

	sweeper, err := services.NewReservationSweeper(db, h, clock)
	if err != nil {
		utils.ErrorLogger.Fatalf("Failed to create reservation sweeper: %v", err)
	}
	sweeper.Start()
	defer sweeper.Stop()

	r := router.SetupRouter(db, h, tables, merges, fees)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	utils.InfoLogger.Printf("Pool hall POS listening on :%s", port)
	if err := r.Run(":" + port); err != nil {
		utils.ErrorLogger.Fatalf("Server exited: %v", err)
	}
}

func autoMigrate(db *gorm.DB) {
	err := db.AutoMigrate(
		&models.User{},
		&models.Role{},
		&models.Table{},
		&models.PricingRule{},
		&models.Promotion{},
		&models.Transaction{},
		&models.Reservation{},
		&models.Member{},
		&models.MembershipTier{},
		&models.InventoryItem{},
		&models.QueueEntry{},
		&models.Setting{},
		&models.BusinessSetting{},
		&models.AuditLog{},
	)
	if err != nil {
		utils.ErrorLogger.Fatalf("Auto migration failed: %v", err)
	}
}
