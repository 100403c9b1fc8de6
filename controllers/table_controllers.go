package controllers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/marcuschin/poolhall-pos/hub"
	"github.com/marcuschin/poolhall-pos/models"
	"github.com/marcuschin/poolhall-pos/services"
	"github.com/marcuschin/poolhall-pos/utils"
)

type TableController struct {
	DB     *gorm.DB
	Tables *services.TableService
	Merges *services.MergeService
	Fees   *services.FeeService
	Hub    *hub.Hub
}

func NewTableController(db *gorm.DB, tables *services.TableService, merges *services.MergeService, fees *services.FeeService, h *hub.Hub) *TableController {
	return &TableController{DB: db, Tables: tables, Merges: merges, Fees: fees, Hub: h}
}

func parseTableID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("table_id"), 10, 32)
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, errors.New("invalid table id"))
		return 0, false
	}
	return uint(id), true
}

// CreateTable registers a new billing table; used at hall setup only.
func (tc *TableController) CreateTable(c *gin.Context) {
	var req struct {
		TableNumber string `json:"table_number" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	table := models.Table{
		TableNumber: req.TableNumber,
		Status:      models.TableStatusIdle,
	}
	if err := tc.DB.Create(&table).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	tc.Hub.Broadcast(hub.EventTableUpdate, table)
	utils.InfoLogger.Printf("New table created: %s", table.TableNumber)
	utils.RespondJSON(c, http.StatusCreated, "Table created successfully", table)
}

// GetAllTables lists every table with its live state.
func (tc *TableController) GetAllTables(c *gin.Context) {
	tables, err := tc.Tables.List()
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "List of tables", tables)
}

func (tc *TableController) GetTableByID(c *gin.Context) {
	id, ok := parseTableID(c)
	if !ok {
		return
	}
	table, err := tc.Tables.Get(id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Table detail", table)
}

// StartSession opens a billing session on a table.
func (tc *TableController) StartSession(c *gin.Context) {
	id, ok := parseTableID(c)
	if !ok {
		return
	}
	table, err := tc.Tables.Start(id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Session started", table)
}

// StopSession closes the session, computes the fee off the frozen
// elapsed time, and writes the transaction in one response.
func (tc *TableController) StopSession(c *gin.Context) {
	id, ok := parseTableID(c)
	if !ok {
		return
	}

	var req struct {
		RuleID        string                   `json:"rule_id"`
		PaymentMethod string                   `json:"payment_method"`
		MemberID      string                   `json:"member_id"`
		Items         []models.TransactionItem `json:"items"`
		Notes         string                   `json:"notes"`
	}
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			utils.RespondError(c, http.StatusBadRequest, err)
			return
		}
	}
	if req.PaymentMethod == "" {
		req.PaymentMethod = "cash"
	}

	tierDiscount, member, err := tc.memberTierDiscount(req.MemberID)
	if err != nil {
		utils.RespondError(c, http.StatusNotFound, err)
		return
	}

	table, sessionID, err := tc.Tables.Stop(id)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	fee, rule, err := tc.Fees.Quote(&table, req.RuleID, tierDiscount)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	fee = fee.Rounded()

	itemsTotal := decimal.Zero
	for _, item := range req.Items {
		itemsTotal = itemsTotal.Add(item.Price.Mul(decimal.NewFromInt(int64(item.Qty))))
	}

	txn := models.Transaction{
		ID:            uuid.NewString(),
		TableID:       &table.ID,
		Items:         req.Items,
		Subtotal:      fee.Subtotal,
		Discount:      fee.Discount,
		ServiceFee:    fee.ServiceFee,
		Amount:        fee.Total.Add(itemsTotal),
		PaymentMethod: req.PaymentMethod,
		PaymentStatus: "paid",
		Notes:         req.Notes,
	}
	if sessionID != "" {
		txn.SessionID = &sessionID
	}
	if err := tc.DB.Create(&txn).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	if member != nil {
		tc.recordMemberVisit(member, txn.Amount)
	}

	tc.Hub.Broadcast(hub.EventTransactionCreated, txn)
	utils.InfoLogger.Printf("Table %d checked out: %s minutes=%d total=%s (rule=%s)",
		table.ID, sessionID, fee.Minutes, fee.Total.StringFixed(2), rule.Name)

	utils.RespondJSON(c, http.StatusOK, "Session stopped", gin.H{
		"table":       table,
		"fee":         fee,
		"transaction": txn,
	})
}

// PreviewFee quotes the running session without stopping it.
func (tc *TableController) PreviewFee(c *gin.Context) {
	id, ok := parseTableID(c)
	if !ok {
		return
	}
	table, err := tc.Tables.Get(id)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	fee, rule, err := tc.Fees.Quote(&table, c.Query("rule_id"), decimal.Zero)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Fee preview", gin.H{
		"fee":  fee.Rounded(),
		"rule": rule,
	})
}

func (tc *TableController) MarkCleaning(c *gin.Context) {
	id, ok := parseTableID(c)
	if !ok {
		return
	}
	table, err := tc.Tables.MarkCleaning(id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Table marked for cleaning", table)
}

func (tc *TableController) ClearCleaning(c *gin.Context) {
	id, ok := parseTableID(c)
	if !ok {
		return
	}
	table, err := tc.Tables.ClearCleaning(id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Table marked as clean", table)
}

func (tc *TableController) ReserveTable(c *gin.Context) {
	id, ok := parseTableID(c)
	if !ok {
		return
	}
	table, err := tc.Tables.Reserve(id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Table reserved", table)
}

func (tc *TableController) UnreserveTable(c *gin.Context) {
	id, ok := parseTableID(c)
	if !ok {
		return
	}
	table, err := tc.Tables.Unreserve(id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Reservation released", table)
}

func (tc *TableController) RequestService(c *gin.Context) {
	id, ok := parseTableID(c)
	if !ok {
		return
	}
	table, err := tc.Tables.RequestService(id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Service requested", table)
}

func (tc *TableController) ResolveService(c *gin.Context) {
	id, ok := parseTableID(c)
	if !ok {
		return
	}
	table, err := tc.Tables.ResolveService(id)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Service resolved", table)
}

// MergeTables folds a set of secondary tables into a primary.
func (tc *TableController) MergeTables(c *gin.Context) {
	var req struct {
		PrimaryTableID    uint   `json:"primary_table_id" binding:"required"`
		SecondaryTableIDs []uint `json:"secondary_table_ids" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	result, err := tc.Merges.Merge(req.PrimaryTableID, req.SecondaryTableIDs)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	writeAudit(tc.DB, c, "merge_tables", "tables",
		strconv.FormatUint(uint64(req.PrimaryTableID), 10), req.SecondaryTableIDs, result.Primary)
	utils.RespondJSON(c, http.StatusOK, "Tables merged", result)
}

// UnmergeTable dissolves a merge group.
func (tc *TableController) UnmergeTable(c *gin.Context) {
	id, ok := parseTableID(c)
	if !ok {
		return
	}

	result, err := tc.Merges.Unmerge(id)
	if err != nil {
		respondServiceError(c, err)
		return
	}

	writeAudit(tc.DB, c, "unmerge_tables", "tables",
		strconv.FormatUint(uint64(id), 10), nil, result)
	utils.RespondJSON(c, http.StatusOK, "Tables unmerged", result)
}

// GetDashboardStats returns status counts for the floor overview.
func (tc *TableController) GetDashboardStats(c *gin.Context) {
	stats := map[string]int64{}
	total := int64(0)
	for _, status := range []string{
		models.TableStatusIdle,
		models.TableStatusOccupied,
		models.TableStatusCleaning,
		models.TableStatusReserved,
		models.TableStatusMerged,
	} {
		var count int64
		tc.DB.Model(&models.Table{}).Where("status = ?", status).Count(&count)
		stats[status] = count
		total += count
	}
	stats["total"] = total

	utils.RespondJSON(c, http.StatusOK, "Dashboard stats", stats)
}

func (tc *TableController) memberTierDiscount(memberID string) (decimal.Decimal, *models.Member, error) {
	if memberID == "" {
		return decimal.Zero, nil, nil
	}

	var member models.Member
	if err := tc.DB.First(&member, "id = ?", memberID).Error; err != nil {
		return decimal.Zero, nil, errors.New("member not found")
	}

	var tier models.MembershipTier
	if err := tc.DB.First(&tier, "name = ?", member.Tier).Error; err != nil {
		return decimal.Zero, &member, nil
	}
	return tier.DiscountPct, &member, nil
}

func (tc *TableController) recordMemberVisit(member *models.Member, amount decimal.Decimal) {
	now := time.Now()
	member.TotalSpent = member.TotalSpent.Add(amount)
	member.LastVisited = &now
	member.Points += amount.IntPart()
	if err := tc.DB.Save(member).Error; err != nil {
		utils.ErrorLogger.Printf("Failed to record member visit %s: %v", member.ID, err)
	}
}
