package controllers

import (
	"bytes"
	"encoding/csv"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/marcuschin/poolhall-pos/hub"
	"github.com/marcuschin/poolhall-pos/models"
	"github.com/marcuschin/poolhall-pos/utils"
)

type TransactionController struct {
	DB  *gorm.DB
	Hub *hub.Hub
}

func NewTransactionController(db *gorm.DB, h *hub.Hub) *TransactionController {
	return &TransactionController{DB: db, Hub: h}
}

func (tc *TransactionController) GetAllTransactions(c *gin.Context) {
	limit := 100
	offset := 0
	if v, err := strconv.Atoi(c.Query("limit")); err == nil && v > 0 {
		limit = v
	}
	if v, err := strconv.Atoi(c.Query("offset")); err == nil && v >= 0 {
		offset = v
	}

	var transactions []models.Transaction
	if err := tc.DB.Order("created_at DESC").Limit(limit).Offset(offset).Find(&transactions).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "List of transactions", transactions)
}

// CreateTransaction records a counter sale not tied to a table session.
func (tc *TransactionController) CreateTransaction(c *gin.Context) {
	var req struct {
		TableID       *uint                    `json:"table_id"`
		Items         []models.TransactionItem `json:"items"`
		Subtotal      decimal.Decimal          `json:"subtotal"`
		Discount      decimal.Decimal          `json:"discount"`
		ServiceFee    decimal.Decimal          `json:"service_fee"`
		Amount        decimal.Decimal          `json:"amount" binding:"required"`
		PaymentMethod string                   `json:"payment_method"`
		Notes         string                   `json:"notes"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	if req.PaymentMethod == "" {
		req.PaymentMethod = "cash"
	}

	txn := models.Transaction{
		ID:            uuid.NewString(),
		TableID:       req.TableID,
		Items:         req.Items,
		Subtotal:      req.Subtotal,
		Discount:      req.Discount,
		ServiceFee:    req.ServiceFee,
		Amount:        req.Amount,
		PaymentMethod: req.PaymentMethod,
		PaymentStatus: "paid",
		Notes:         req.Notes,
	}
	if err := tc.DB.Create(&txn).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	tc.Hub.Broadcast(hub.EventTransactionCreated, txn)
	utils.RespondJSON(c, http.StatusCreated, "Transaction recorded", txn)
}

// GetStats aggregates paid transactions for the reports page.
func (tc *TransactionController) GetStats(c *gin.Context) {
	var transactions []models.Transaction
	if err := tc.DB.Where("payment_status = ?", "paid").Find(&transactions).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	totalRevenue := decimal.Zero
	activeDays := map[string]bool{}
	for _, t := range transactions {
		totalRevenue = totalRevenue.Add(t.Amount)
		activeDays[t.CreatedAt.Format("2006-01-02")] = true
	}

	avgOrder := decimal.Zero
	if len(transactions) > 0 {
		avgOrder = totalRevenue.DivRound(decimal.NewFromInt(int64(len(transactions))), 2)
	}

	utils.RespondJSON(c, http.StatusOK, "Transaction stats", gin.H{
		"total_transactions": len(transactions),
		"total_revenue":      totalRevenue.Round(2),
		"avg_order_value":    avgOrder,
		"active_days":        len(activeDays),
	})
}

// ExportCSV streams the transaction log as a UTF-8 CSV with a BOM so
// spreadsheet apps detect the encoding.
func (tc *TransactionController) ExportCSV(c *gin.Context) {
	var transactions []models.Transaction
	if err := tc.DB.Order("created_at DESC").Limit(10000).Find(&transactions).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	var currency string
	var business models.BusinessSetting
	if err := tc.DB.Order("id").First(&business).Error; err == nil {
		currency = business.Currency
	}

	var buf bytes.Buffer
	buf.WriteString("\uFEFF")
	w := csv.NewWriter(&buf)
	_ = w.Write([]string{"Time", "Method", "Amount", "Table", "Notes"})
	for _, t := range transactions {
		table := "-"
		if t.TableID != nil {
			table = strconv.FormatUint(uint64(*t.TableID), 10)
		}
		_ = w.Write([]string{
			t.CreatedAt.Format("2006-01-02 15:04:05"),
			t.PaymentMethod,
			utils.FormatAmount(t.Amount, currency),
			table,
			t.Notes,
		})
	}
	w.Flush()
	if err := w.Error(); err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="transactions.csv"`)
	c.Data(http.StatusOK, "text/csv; charset=utf-8", buf.Bytes())
}
