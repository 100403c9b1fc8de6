package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/marcuschin/poolhall-pos/models"
	"github.com/marcuschin/poolhall-pos/pricing"
	"github.com/marcuschin/poolhall-pos/utils"
)

type PricingController struct {
	DB *gorm.DB
}

func NewPricingController(db *gorm.DB) *PricingController {
	return &PricingController{DB: db}
}

type pricingRuleRequest struct {
	Name                  string            `json:"name" binding:"required"`
	Mode                  string            `json:"mode"`
	BaseRate              decimal.Decimal   `json:"base_rate"`
	MinChargeMinutes      *int              `json:"min_charge_minutes"`
	GracePeriodMinutes    *int              `json:"grace_period_minutes"`
	OvertimeRatePerMinute decimal.Decimal   `json:"overtime_rate_per_minute"`
	TimeSlots             []models.TimeSlot `json:"time_slots"`
}

func (req *pricingRuleRequest) apply(rule *models.PricingRule) {
	rule.Name = req.Name
	rule.Mode = req.Mode
	if rule.Mode == "" {
		rule.Mode = models.PricingModeHourly
	}
	rule.BaseRate = req.BaseRate
	rule.MinChargeMinutes = 30
	if req.MinChargeMinutes != nil {
		rule.MinChargeMinutes = *req.MinChargeMinutes
	}
	rule.GracePeriodMinutes = 5
	if req.GracePeriodMinutes != nil {
		rule.GracePeriodMinutes = *req.GracePeriodMinutes
	}
	rule.OvertimeRatePerMinute = req.OvertimeRatePerMinute
	rule.Config = models.RuleConfig{TimeSlots: req.TimeSlots}
}

func (pc *PricingController) GetAllRules(c *gin.Context) {
	var rules []models.PricingRule
	if err := pc.DB.Order("created_at DESC").Find(&rules).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "List of pricing rules", rules)
}

// CreateRule validates the rule before anything is persisted; a rule with
// overlapping time slots never reaches the store.
func (pc *PricingController) CreateRule(c *gin.Context) {
	var req pricingRuleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	rule := models.PricingRule{ID: uuid.NewString()}
	req.apply(&rule)

	if err := pricing.ValidateRule(&rule); err != nil {
		respondServiceError(c, err)
		return
	}

	if err := pc.DB.Create(&rule).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	writeAudit(pc.DB, c, "create_pricing_rule", "pricing_rules", rule.ID, nil, rule)
	utils.InfoLogger.Printf("Pricing rule created: %s (%s)", rule.Name, rule.Mode)
	utils.RespondJSON(c, http.StatusCreated, "Pricing rule created", rule)
}

// UpdateRule re-runs the full validation before the edit is saved.
func (pc *PricingController) UpdateRule(c *gin.Context) {
	id := c.Param("rule_id")

	var rule models.PricingRule
	if err := pc.DB.First(&rule, "id = ?", id).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, err)
		return
	}
	before := rule

	var req pricingRuleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	req.apply(&rule)

	if err := pricing.ValidateRule(&rule); err != nil {
		respondServiceError(c, err)
		return
	}

	if err := pc.DB.Save(&rule).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	writeAudit(pc.DB, c, "update_pricing_rule", "pricing_rules", rule.ID, before, rule)
	utils.RespondJSON(c, http.StatusOK, "Pricing rule updated", rule)
}

func (pc *PricingController) DeleteRule(c *gin.Context) {
	id := c.Param("rule_id")

	var rule models.PricingRule
	if err := pc.DB.First(&rule, "id = ?", id).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, err)
		return
	}

	if err := pc.DB.Delete(&rule).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	writeAudit(pc.DB, c, "delete_pricing_rule", "pricing_rules", rule.ID, rule, nil)
	utils.RespondJSON(c, http.StatusOK, "Pricing rule deleted", gin.H{"id": rule.ID})
}
