package controllers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/marcuschin/poolhall-pos/models"
	"github.com/marcuschin/poolhall-pos/utils"
)

type InventoryController struct {
	DB *gorm.DB
}

func NewInventoryController(db *gorm.DB) *InventoryController {
	return &InventoryController{DB: db}
}

func (ic *InventoryController) GetAllItems(c *gin.Context) {
	var items []models.InventoryItem
	if err := ic.DB.Order("category, name").Find(&items).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "List of inventory items", items)
}

func (ic *InventoryController) CreateItem(c *gin.Context) {
	var req struct {
		Name     string `json:"name" binding:"required"`
		Unit     string `json:"unit"`
		Qty      int64  `json:"qty"`
		MinQty   int64  `json:"min_qty"`
		Category string `json:"category"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	now := time.Now()
	item := models.InventoryItem{
		ID:            uuid.NewString(),
		Name:          req.Name,
		Unit:          req.Unit,
		Qty:           req.Qty,
		MinQty:        req.MinQty,
		Category:      req.Category,
		LastRestocked: &now,
	}
	if err := ic.DB.Create(&item).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusCreated, "Inventory item created", item)
}

// Outbound deducts stock, e.g. when drinks leave the bar.
func (ic *InventoryController) Outbound(c *gin.Context) {
	id := c.Param("item_id")
	var req struct {
		Amount int64 `json:"amount"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	if req.Amount <= 0 {
		utils.RespondError(c, http.StatusBadRequest, errors.New("amount must be greater than zero"))
		return
	}

	var item models.InventoryItem
	if err := ic.DB.First(&item, "id = ?", id).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, err)
		return
	}
	if item.Qty < req.Amount {
		utils.RespondError(c, http.StatusBadRequest, errors.New("insufficient stock"))
		return
	}

	item.Qty -= req.Amount
	if err := ic.DB.Save(&item).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	if item.Qty < item.MinQty {
		utils.InfoLogger.Printf("Inventory low: %s (%d %s left)", item.Name, item.Qty, item.Unit)
	}
	utils.RespondJSON(c, http.StatusOK, "Stock deducted", item)
}

// Restock tops the item up to three times its minimum quantity.
func (ic *InventoryController) Restock(c *gin.Context) {
	id := c.Param("item_id")

	var item models.InventoryItem
	if err := ic.DB.First(&item, "id = ?", id).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, err)
		return
	}

	now := time.Now()
	item.Qty = item.MinQty * 3
	item.LastRestocked = &now
	if err := ic.DB.Save(&item).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Item restocked", item)
}
