package database

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/marcuschin/poolhall-pos/models"
	"github.com/marcuschin/poolhall-pos/services"
	"github.com/marcuschin/poolhall-pos/utils"
)

// DefaultTableCount is how many tables a fresh install starts with.
const DefaultTableCount = 12

// Seed populates a fresh database with the rows the console needs on day
// one: tables, roles, a default rate, membership tiers and the business
// profile. It is idempotent and safe to run on every boot.
func Seed(db *gorm.DB) error {
	if err := seedTables(db); err != nil {
		return err
	}
	if err := seedRoles(db); err != nil {
		return err
	}
	if err := seedAdmin(db); err != nil {
		return err
	}
	if err := seedPricing(db); err != nil {
		return err
	}
	if err := seedTiers(db); err != nil {
		return err
	}
	return seedBusinessSettings(db)
}

func seedTables(db *gorm.DB) error {
	var count int64
	if err := db.Model(&models.Table{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	for i := 1; i <= DefaultTableCount; i++ {
		table := models.Table{
			TableNumber: fmt.Sprintf("T%02d", i),
			Status:      models.TableStatusIdle,
		}
		if err := db.Create(&table).Error; err != nil {
			return err
		}
	}
	utils.InfoLogger.Printf("Seeded %d tables", DefaultTableCount)
	return nil
}

func seedRoles(db *gorm.DB) error {
	defaults := []models.Role{
		{Name: "admin", Permissions: models.PermissionList{"all"}},
		{Name: "manager", Permissions: models.PermissionList{
			"manage_tables", "manage_prices", "manage_members",
			"manage_inventory", "view_reports", "manage_queue",
		}},
		{Name: "staff", Permissions: models.PermissionList{
			"manage_tables", "manage_queue",
		}},
	}
	for _, role := range defaults {
		var existing models.Role
		err := db.Where("name = ?", role.Name).First(&existing).Error
		if err == nil {
			continue
		}
		if err != gorm.ErrRecordNotFound {
			return err
		}
		if err := db.Create(&role).Error; err != nil {
			return err
		}
	}
	return nil
}

func seedAdmin(db *gorm.DB) error {
	var count int64
	if err := db.Model(&models.User{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte("admin123"), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	admin := models.User{
		Name:     "Administrator",
		Email:    "admin@poolhall.local",
		Password: string(hashed),
		Role:     "admin",
		Status:   "active",
	}
	if err := db.Create(&admin).Error; err != nil {
		return err
	}
	utils.InfoLogger.Println("Seeded default admin account, change the password before going live")
	return nil
}

func seedPricing(db *gorm.DB) error {
	var count int64
	if err := db.Model(&models.PricingRule{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	rule := models.PricingRule{
		ID:                 uuid.NewString(),
		Name:               "Standard hourly",
		Mode:               models.PricingModeHourly,
		BaseRate:           decimal.NewFromFloat(0.50),
		MinChargeMinutes:   30,
		GracePeriodMinutes: 5,
	}
	if err := db.Create(&rule).Error; err != nil {
		return err
	}

	setting := models.Setting{
		SettingKey:   services.DefaultRuleSettingKey,
		SettingValue: rule.ID,
		Category:     "billing",
	}
	return db.Where("setting_key = ?", setting.SettingKey).
		FirstOrCreate(&setting).Error
}

func seedTiers(db *gorm.DB) error {
	var count int64
	if err := db.Model(&models.MembershipTier{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	tiers := []models.MembershipTier{
		{ID: uuid.NewString(), Name: "Silver", DiscountPct: decimal.Zero, PointsRate: decimal.NewFromInt(1), ValidityDays: 365},
		{ID: uuid.NewString(), Name: "Gold", DiscountPct: decimal.NewFromInt(5), PointsRate: decimal.NewFromFloat(1.5), ValidityDays: 365, BirthdayDiscountPct: decimal.NewFromInt(10)},
		{ID: uuid.NewString(), Name: "Platinum", DiscountPct: decimal.NewFromInt(10), PointsRate: decimal.NewFromInt(2), ValidityDays: 365, BirthdayDiscountPct: decimal.NewFromInt(20)},
	}
	for i := range tiers {
		if err := db.Create(&tiers[i]).Error; err != nil {
			return err
		}
	}
	return nil
}

func seedBusinessSettings(db *gorm.DB) error {
	var count int64
	if err := db.Model(&models.BusinessSetting{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	business := models.BusinessSetting{
		Name:          "Pool Hall",
		Currency:      "RM",
		ServiceFeePct: decimal.Zero,
		OpeningHours:  "12:00-02:00",
	}
	return db.Create(&business).Error
}
