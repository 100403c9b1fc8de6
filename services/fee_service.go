package services

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/marcuschin/poolhall-pos/models"
	"github.com/marcuschin/poolhall-pos/pricing"
	"github.com/marcuschin/poolhall-pos/utils"
)

// DefaultRuleSettingKey names the setting that points at the hall's
// default pricing rule.
const DefaultRuleSettingKey = "default_pricing_rule_id"

// FeeService gathers the inputs the fee engine needs: the pricing rule,
// active promotions and the configured service fee percentage.
type FeeService struct {
	DB    *gorm.DB
	Clock utils.Clock
}

func NewFeeService(db *gorm.DB, clock utils.Clock) *FeeService {
	return &FeeService{DB: db, Clock: clock}
}

// Quote computes the receipt-ready fee for a table. An empty ruleID
// resolves through the default-rule setting. A positive tierDiscountPct
// (membership tier benefit) joins the active promotions, so it discounts
// the subtotal before the service fee like any other promotion.
func (s *FeeService) Quote(table *models.Table, ruleID string, tierDiscountPct decimal.Decimal) (pricing.FeeBreakdown, *models.PricingRule, error) {
	rule, err := s.resolveRule(ruleID)
	if err != nil {
		return pricing.FeeBreakdown{}, nil, err
	}

	now := s.Clock.Now()

	var promotions []models.Promotion
	if err := s.DB.Where("active = ?", true).Find(&promotions).Error; err != nil {
		return pricing.FeeBreakdown{}, nil, &PersistenceError{Op: "load promotions", Err: err}
	}
	if tierDiscountPct.IsPositive() {
		promotions = append(promotions, models.Promotion{
			Name:   "membership tier discount",
			Active: true,
			Config: models.PromotionConfig{DiscountPct: tierDiscountPct},
		})
	}

	serviceFeePct := decimal.Zero
	var business models.BusinessSetting
	if err := s.DB.Order("id").First(&business).Error; err == nil {
		serviceFeePct = business.ServiceFeePct
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return pricing.FeeBreakdown{}, nil, &PersistenceError{Op: "load business settings", Err: err}
	}

	fee, err := pricing.ComputeFee(table, rule, promotions, serviceFeePct, now)
	if err != nil {
		return pricing.FeeBreakdown{}, nil, err
	}
	return fee, rule, nil
}

func (s *FeeService) resolveRule(ruleID string) (*models.PricingRule, error) {
	if ruleID == "" {
		var setting models.Setting
		if err := s.DB.First(&setting, "setting_key = ?", DefaultRuleSettingKey).Error; err == nil {
			ruleID = setting.SettingValue
		}
	}

	var rule models.PricingRule
	if ruleID != "" {
		if err := s.DB.First(&rule, "id = ?", ruleID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, fmt.Errorf("%w: id %s", ErrRuleNotFound, ruleID)
			}
			return nil, &PersistenceError{Op: "read pricing rule", Err: err}
		}
		return &rule, nil
	}

	// No explicit rule and no default configured: fall back to the most
	// recently created rule.
	if err := s.DB.Order("created_at DESC").First(&rule).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: no pricing rules configured", ErrRuleNotFound)
		}
		return nil, &PersistenceError{Op: "read pricing rule", Err: err}
	}
	return &rule, nil
}
