package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/marcuschin/poolhall-pos/models"
	"github.com/marcuschin/poolhall-pos/utils"
)

type PromotionController struct {
	DB *gorm.DB
}

func NewPromotionController(db *gorm.DB) *PromotionController {
	return &PromotionController{DB: db}
}

func (pc *PromotionController) GetAllPromotions(c *gin.Context) {
	var promotions []models.Promotion
	if err := pc.DB.Order("created_at DESC").Find(&promotions).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "List of promotions", promotions)
}

func (pc *PromotionController) CreatePromotion(c *gin.Context) {
	var req struct {
		Name        string          `json:"name" binding:"required"`
		Type        string          `json:"type"`
		DiscountPct decimal.Decimal `json:"discount_pct"`
		StartAt     *time.Time      `json:"start_at"`
		EndAt       *time.Time      `json:"end_at"`
		Active      bool            `json:"active"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	promo := models.Promotion{
		ID:      uuid.NewString(),
		Name:    req.Name,
		Type:    req.Type,
		Config:  models.PromotionConfig{DiscountPct: req.DiscountPct},
		StartAt: req.StartAt,
		EndAt:   req.EndAt,
		Active:  req.Active,
	}
	if promo.Type == "" {
		promo.Type = "discount"
	}

	if err := pc.DB.Create(&promo).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.InfoLogger.Printf("Promotion created: %s (%s%%)", promo.Name, req.DiscountPct)
	utils.RespondJSON(c, http.StatusCreated, "Promotion created", promo)
}
