package controllers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/marcuschin/poolhall-pos/models"
	"github.com/marcuschin/poolhall-pos/utils"
)

type MemberController struct {
	DB *gorm.DB
}

func NewMemberController(db *gorm.DB) *MemberController {
	return &MemberController{DB: db}
}

func (mc *MemberController) GetAllMembers(c *gin.Context) {
	var members []models.Member
	if err := mc.DB.Order("created_at DESC").Find(&members).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "List of members", members)
}

func (mc *MemberController) CreateMember(c *gin.Context) {
	var req struct {
		Name  string `json:"name" binding:"required"`
		Phone string `json:"phone"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	member := models.Member{
		ID:       uuid.NewString(),
		Name:     req.Name,
		Phone:    req.Phone,
		Tier:     "Silver",
		JoinDate: time.Now(),
	}
	if err := mc.DB.Create(&member).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.InfoLogger.Printf("New member registered: %s", member.Name)
	utils.RespondJSON(c, http.StatusCreated, "Member created", member)
}

// TopupMember adds balance and records the top-up as a transaction.
func (mc *MemberController) TopupMember(c *gin.Context) {
	id := c.Param("member_id")
	var req struct {
		Amount decimal.Decimal `json:"amount"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	if !req.Amount.IsPositive() {
		utils.RespondError(c, http.StatusBadRequest, errors.New("amount must be greater than zero"))
		return
	}

	var member models.Member
	if err := mc.DB.First(&member, "id = ?", id).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, err)
		return
	}

	now := time.Now()
	member.Balance = member.Balance.Add(req.Amount)
	member.LastVisited = &now

	err := mc.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(&member).Error; err != nil {
			return err
		}
		return tx.Create(&models.Transaction{
			ID:            uuid.NewString(),
			Subtotal:      req.Amount,
			Amount:        req.Amount,
			PaymentMethod: "card",
			PaymentStatus: "paid",
			Notes:         "member top-up: " + member.Name,
		}).Error
	})
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Member topped up", member)
}

func (mc *MemberController) GetAllTiers(c *gin.Context) {
	var tiers []models.MembershipTier
	if err := mc.DB.Order("created_at").Find(&tiers).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "List of membership tiers", tiers)
}

func (mc *MemberController) CreateTier(c *gin.Context) {
	var req struct {
		Name                string          `json:"name" binding:"required"`
		DiscountPct         decimal.Decimal `json:"discount_pct"`
		PointsRate          decimal.Decimal `json:"points_rate"`
		ValidityDays        int             `json:"validity_days"`
		BirthdayDiscountPct decimal.Decimal `json:"birthday_discount_pct"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	tier := models.MembershipTier{
		ID:                  uuid.NewString(),
		Name:                req.Name,
		DiscountPct:         req.DiscountPct,
		PointsRate:          req.PointsRate,
		ValidityDays:        req.ValidityDays,
		BirthdayDiscountPct: req.BirthdayDiscountPct,
	}
	if tier.PointsRate.IsZero() {
		tier.PointsRate = decimal.NewFromInt(1)
	}
	if tier.ValidityDays == 0 {
		tier.ValidityDays = 365
	}

	if err := mc.DB.Create(&tier).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusCreated, "Membership tier created", tier)
}
