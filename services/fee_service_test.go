package services_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/marcuschin/poolhall-pos/models"
	"github.com/marcuschin/poolhall-pos/services"
	"github.com/marcuschin/poolhall-pos/utils"
)

func setupFeeService(t *testing.T) (*services.FeeService, *gorm.DB, *fakeClock) {
	t.Helper()
	utils.InitLogger()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.Table{},
		&models.PricingRule{},
		&models.Promotion{},
		&models.Setting{},
		&models.BusinessSetting{},
	))

	clock := &fakeClock{now: time.Date(2025, 6, 1, 15, 0, 0, 0, time.UTC)}
	return services.NewFeeService(db, clock), db, clock
}

func seedHourlyRule(t *testing.T, db *gorm.DB) models.PricingRule {
	t.Helper()
	rule := models.PricingRule{
		ID:                 uuid.NewString(),
		Name:               "Standard hourly",
		Mode:               models.PricingModeHourly,
		BaseRate:           decimal.NewFromFloat(0.50),
		MinChargeMinutes:   30,
		GracePeriodMinutes: 5,
	}
	require.NoError(t, db.Create(&rule).Error)
	return rule
}

func frozenTable(elapsedSec int64) *models.Table {
	return &models.Table{
		ID:          1,
		TableNumber: "T01",
		Status:      models.TableStatusIdle,
		ElapsedSec:  elapsedSec,
	}
}

func TestQuoteWithExplicitRule(t *testing.T) {
	svc, db, _ := setupFeeService(t)
	rule := seedHourlyRule(t, db)

	fee, used, err := svc.Quote(frozenTable(1200), rule.ID, decimal.Zero)
	require.NoError(t, err)
	assert.Equal(t, rule.ID, used.ID)
	assert.True(t, fee.Total.Equal(decimal.NewFromFloat(15.00)), fee.Total.String())
}

func TestQuoteResolvesDefaultRuleSetting(t *testing.T) {
	svc, db, _ := setupFeeService(t)
	rule := seedHourlyRule(t, db)

	// A decoy so "latest rule" fallback would pick the wrong one.
	decoy := models.PricingRule{
		ID:       uuid.NewString(),
		Name:     "Flat night",
		Mode:     models.PricingModeFlat,
		BaseRate: decimal.NewFromFloat(99.00),
	}
	decoy.CreatedAt = time.Now().Add(time.Hour)
	require.NoError(t, db.Create(&decoy).Error)

	require.NoError(t, db.Create(&models.Setting{
		SettingKey:   services.DefaultRuleSettingKey,
		SettingValue: rule.ID,
		Category:     "billing",
	}).Error)

	_, used, err := svc.Quote(frozenTable(1200), "", decimal.Zero)
	require.NoError(t, err)
	assert.Equal(t, rule.ID, used.ID)
}

func TestQuoteUnknownRule(t *testing.T) {
	svc, db, _ := setupFeeService(t)
	seedHourlyRule(t, db)

	_, _, err := svc.Quote(frozenTable(600), "no-such-rule", decimal.Zero)
	assert.ErrorIs(t, err, services.ErrRuleNotFound)
}

func TestQuoteNoRulesConfigured(t *testing.T) {
	svc, _, _ := setupFeeService(t)
	_, _, err := svc.Quote(frozenTable(600), "", decimal.Zero)
	assert.ErrorIs(t, err, services.ErrRuleNotFound)
}

func TestQuoteAppliesTierDiscountAndServiceFee(t *testing.T) {
	svc, db, _ := setupFeeService(t)
	rule := seedHourlyRule(t, db)

	require.NoError(t, db.Create(&models.BusinessSetting{
		Name:          "Pool Hall",
		Currency:      "RM",
		ServiceFeePct: decimal.NewFromInt(5),
	}).Error)

	fee, _, err := svc.Quote(frozenTable(1200), rule.ID, decimal.NewFromInt(10))
	require.NoError(t, err)

	// Subtotal 15.00, 10% tier discount, 5% service fee on 13.50.
	assert.True(t, fee.Discount.Equal(decimal.NewFromFloat(1.50)), fee.Discount.String())
	assert.True(t, fee.ServiceFee.Equal(decimal.NewFromFloat(0.675)), fee.ServiceFee.String())
	assert.True(t, fee.Total.Equal(decimal.NewFromFloat(14.175)), fee.Total.String())
}

func TestQuoteIncludesActivePromotions(t *testing.T) {
	svc, db, _ := setupFeeService(t)
	rule := seedHourlyRule(t, db)

	require.NoError(t, db.Create(&models.Promotion{
		ID:     uuid.NewString(),
		Name:   "happy hour",
		Active: true,
		Config: models.PromotionConfig{DiscountPct: decimal.NewFromInt(20)},
	}).Error)
	require.NoError(t, db.Create(&models.Promotion{
		ID:     uuid.NewString(),
		Name:   "disabled",
		Active: false,
		Config: models.PromotionConfig{DiscountPct: decimal.NewFromInt(50)},
	}).Error)

	fee, _, err := svc.Quote(frozenTable(1200), rule.ID, decimal.Zero)
	require.NoError(t, err)
	assert.True(t, fee.Total.Equal(decimal.NewFromFloat(12.00)), fee.Total.String())
}
