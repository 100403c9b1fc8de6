package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/marcuschin/poolhall-pos/models"
	"github.com/marcuschin/poolhall-pos/utils"
)

type SettingController struct {
	DB *gorm.DB
}

func NewSettingController(db *gorm.DB) *SettingController {
	return &SettingController{DB: db}
}

func (sc *SettingController) GetAllSettings(c *gin.Context) {
	var settings []models.Setting
	query := sc.DB.Order("setting_key")
	if category := c.Query("category"); category != "" {
		query = query.Where("category = ?", category)
	}
	if err := query.Find(&settings).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "List of settings", settings)
}

// SetSetting upserts a key/value pair.
func (sc *SettingController) SetSetting(c *gin.Context) {
	var req struct {
		Key      string `json:"key" binding:"required"`
		Value    string `json:"value"`
		Category string `json:"category"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	if req.Category == "" {
		req.Category = "general"
	}

	setting := models.Setting{
		SettingKey:   req.Key,
		SettingValue: req.Value,
		Category:     req.Category,
	}
	err := sc.DB.Where("setting_key = ?", req.Key).
		Assign(models.Setting{SettingValue: req.Value, Category: req.Category}).
		FirstOrCreate(&setting).Error
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	writeAudit(sc.DB, c, "setting.set", "setting", req.Key, nil, setting)
	utils.RespondJSON(c, http.StatusOK, "Setting saved", setting)
}

// GetBusinessSettings returns the singleton billing profile, creating a
// default row on first read.
func (sc *SettingController) GetBusinessSettings(c *gin.Context) {
	var business models.BusinessSetting
	err := sc.DB.Order("id").First(&business).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		business = models.BusinessSetting{Name: "Pool Hall", Currency: "RM"}
		err = sc.DB.Create(&business).Error
	}
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Business settings", business)
}

func (sc *SettingController) UpdateBusinessSettings(c *gin.Context) {
	var req struct {
		Name          *string          `json:"name"`
		OpeningHours  *string          `json:"opening_hours"`
		Timezone      *string          `json:"timezone"`
		Currency      *string          `json:"currency"`
		ServiceFeePct *decimal.Decimal `json:"service_fee_pct"`
		TaxRatePct    *decimal.Decimal `json:"tax_rate_pct"`
		ReceiptHeader *string          `json:"receipt_header"`
		ReceiptFooter *string          `json:"receipt_footer"`
		Address       *string          `json:"address"`
		Phone         *string          `json:"phone"`
		Email         *string          `json:"email"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	if req.ServiceFeePct != nil && (req.ServiceFeePct.IsNegative() || req.ServiceFeePct.GreaterThan(decimal.NewFromInt(100))) {
		utils.RespondError(c, http.StatusBadRequest, errors.New("service_fee_pct must be between 0 and 100"))
		return
	}

	var business models.BusinessSetting
	if err := sc.DB.Order("id").FirstOrCreate(&business, models.BusinessSetting{}).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	before := business
	if req.Name != nil {
		business.Name = *req.Name
	}
	if req.OpeningHours != nil {
		business.OpeningHours = *req.OpeningHours
	}
	if req.Timezone != nil {
		business.Timezone = *req.Timezone
	}
	if req.Currency != nil {
		business.Currency = *req.Currency
	}
	if req.ServiceFeePct != nil {
		business.ServiceFeePct = *req.ServiceFeePct
	}
	if req.TaxRatePct != nil {
		business.TaxRatePct = *req.TaxRatePct
	}
	if req.ReceiptHeader != nil {
		business.ReceiptHeader = *req.ReceiptHeader
	}
	if req.ReceiptFooter != nil {
		business.ReceiptFooter = *req.ReceiptFooter
	}
	if req.Address != nil {
		business.Address = *req.Address
	}
	if req.Phone != nil {
		business.Phone = *req.Phone
	}
	if req.Email != nil {
		business.Email = *req.Email
	}

	if err := sc.DB.Save(&business).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	writeAudit(sc.DB, c, "settings.business_update", "business_setting", "1", before, business)
	utils.RespondJSON(c, http.StatusOK, "Business settings updated", business)
}
