package controllers_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/marcuschin/poolhall-pos/controllers"
	"github.com/marcuschin/poolhall-pos/hub"
	"github.com/marcuschin/poolhall-pos/models"
	"github.com/marcuschin/poolhall-pos/services"
	"github.com/marcuschin/poolhall-pos/utils"
)

type fakeClock struct {
	now time.Time
}

func (f *fakeClock) Now() time.Time {
	return f.now
}

func (f *fakeClock) Advance(d time.Duration) {
	f.now = f.now.Add(d)
}

type testEnv struct {
	db     *gorm.DB
	router *gin.Engine
	clock  *fakeClock
}

func setupTableEnv(t *testing.T) *testEnv {
	t.Helper()
	utils.InitLogger()
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.Table{},
		&models.PricingRule{},
		&models.Promotion{},
		&models.Transaction{},
		&models.Member{},
		&models.MembershipTier{},
		&models.Setting{},
		&models.BusinessSetting{},
		&models.AuditLog{},
	))

	clock := &fakeClock{now: time.Date(2025, 6, 1, 19, 0, 0, 0, time.UTC)}
	h := hub.New()
	tables := services.NewTableService(db, h, clock)
	merges := services.NewMergeService(db, h, clock, tables)
	fees := services.NewFeeService(db, clock)
	ctrl := controllers.NewTableController(db, tables, merges, fees, h)

	r := gin.New()
	r.GET("/tables", ctrl.GetAllTables)
	r.GET("/tables/:table_id", ctrl.GetTableByID)
	r.POST("/tables/:table_id/start", ctrl.StartSession)
	r.POST("/tables/:table_id/stop", ctrl.StopSession)
	r.GET("/tables/:table_id/fee", ctrl.PreviewFee)
	r.POST("/tables/:table_id/cleaning", ctrl.MarkCleaning)
	r.POST("/tables/merge", ctrl.MergeTables)
	r.POST("/tables/:table_id/unmerge", ctrl.UnmergeTable)
	r.GET("/stats", ctrl.GetDashboardStats)

	return &testEnv{db: db, router: r, clock: clock}
}

func (e *testEnv) seedTable(t *testing.T, number string) models.Table {
	t.Helper()
	table := models.Table{TableNumber: number, Status: models.TableStatusIdle}
	require.NoError(t, e.db.Create(&table).Error)
	return table
}

func (e *testEnv) seedDefaultRule(t *testing.T) models.PricingRule {
	t.Helper()
	rule := models.PricingRule{
		ID:                 uuid.NewString(),
		Name:               "Standard hourly",
		Mode:               models.PricingModeHourly,
		BaseRate:           decimal.NewFromFloat(0.50),
		MinChargeMinutes:   30,
		GracePeriodMinutes: 5,
	}
	require.NoError(t, e.db.Create(&rule).Error)
	require.NoError(t, e.db.Create(&models.Setting{
		SettingKey:   services.DefaultRuleSettingKey,
		SettingValue: rule.ID,
		Category:     "billing",
	}).Error)
	return rule
}

func (e *testEnv) do(t *testing.T, method, url string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Buffer
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewBuffer(raw)
	} else {
		reader = bytes.NewBuffer(nil)
	}

	req := httptest.NewRequest(method, url, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func decodeResponse(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func TestStartAndStopSessionOverHTTP(t *testing.T) {
	env := setupTableEnv(t)
	env.seedDefaultRule(t)
	table := env.seedTable(t, "T01")
	url := "/tables/" + strconv.Itoa(int(table.ID))

	w := env.do(t, http.MethodPost, url+"/start", nil)
	require.Equal(t, http.StatusOK, w.Code)
	resp := decodeResponse(t, w)
	assert.Equal(t, "Session started", resp["message"])

	env.clock.Advance(20 * time.Minute)

	w = env.do(t, http.MethodPost, url+"/stop", nil)
	require.Equal(t, http.StatusOK, w.Code)
	resp = decodeResponse(t, w)

	data := resp["data"].(map[string]interface{})
	fee := data["fee"].(map[string]interface{})
	assert.Equal(t, float64(20), fee["minutes"])
	assert.Equal(t, "15", fee["total"])

	// The checkout wrote a transaction tied to the table.
	var txns []models.Transaction
	require.NoError(t, env.db.Find(&txns).Error)
	require.Len(t, txns, 1)
	require.NotNil(t, txns[0].TableID)
	assert.Equal(t, table.ID, *txns[0].TableID)
	assert.True(t, txns[0].Amount.Equal(decimal.NewFromFloat(15.00)))
}

func TestStartSessionConflict(t *testing.T) {
	env := setupTableEnv(t)
	table := env.seedTable(t, "T01")
	url := "/tables/" + strconv.Itoa(int(table.ID)) + "/start"

	w := env.do(t, http.MethodPost, url, nil)
	require.Equal(t, http.StatusOK, w.Code)

	w = env.do(t, http.MethodPost, url, nil)
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestStopSessionRequiresRunningSession(t *testing.T) {
	env := setupTableEnv(t)
	env.seedDefaultRule(t)
	table := env.seedTable(t, "T01")

	w := env.do(t, http.MethodPost, "/tables/"+strconv.Itoa(int(table.ID))+"/stop", nil)
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestTableNotFoundOverHTTP(t *testing.T) {
	env := setupTableEnv(t)

	w := env.do(t, http.MethodPost, "/tables/999/start", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = env.do(t, http.MethodGet, "/tables/abc", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestPreviewFeeDoesNotStopSession(t *testing.T) {
	env := setupTableEnv(t)
	env.seedDefaultRule(t)
	table := env.seedTable(t, "T01")
	url := "/tables/" + strconv.Itoa(int(table.ID))

	env.do(t, http.MethodPost, url+"/start", nil)
	env.clock.Advance(10 * time.Minute)

	w := env.do(t, http.MethodGet, url+"/fee", nil)
	require.Equal(t, http.StatusOK, w.Code)

	var check models.Table
	require.NoError(t, env.db.First(&check, table.ID).Error)
	assert.Equal(t, models.TableStatusOccupied, check.Status)
}

func TestMergeAndUnmergeOverHTTP(t *testing.T) {
	env := setupTableEnv(t)
	primary := env.seedTable(t, "T01")
	secondary := env.seedTable(t, "T02")

	env.do(t, http.MethodPost, "/tables/"+strconv.Itoa(int(primary.ID))+"/start", nil)
	env.do(t, http.MethodPost, "/tables/"+strconv.Itoa(int(secondary.ID))+"/start", nil)
	env.clock.Advance(15 * time.Minute)

	w := env.do(t, http.MethodPost, "/tables/merge", gin.H{
		"primary_table_id":    primary.ID,
		"secondary_table_ids": []uint{secondary.ID},
	})
	require.Equal(t, http.StatusOK, w.Code)

	var check models.Table
	require.NoError(t, env.db.First(&check, secondary.ID).Error)
	assert.Equal(t, models.TableStatusMerged, check.Status)

	// Merging again conflicts while the group exists.
	w = env.do(t, http.MethodPost, "/tables/merge", gin.H{
		"primary_table_id":    primary.ID,
		"secondary_table_ids": []uint{secondary.ID},
	})
	assert.Equal(t, http.StatusConflict, w.Code)

	w = env.do(t, http.MethodPost, "/tables/"+strconv.Itoa(int(primary.ID))+"/unmerge", nil)
	require.Equal(t, http.StatusOK, w.Code)

	require.NoError(t, env.db.First(&check, secondary.ID).Error)
	assert.Equal(t, models.TableStatusOccupied, check.Status)

	// Merge operations are audited.
	var audits []models.AuditLog
	require.NoError(t, env.db.Find(&audits).Error)
	assert.Len(t, audits, 2)
}

func TestUnmergeWithoutGroupOverHTTP(t *testing.T) {
	env := setupTableEnv(t)
	table := env.seedTable(t, "T01")

	w := env.do(t, http.MethodPost, "/tables/"+strconv.Itoa(int(table.ID))+"/unmerge", nil)
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestStopWithMemberAppliesTierDiscount(t *testing.T) {
	env := setupTableEnv(t)
	env.seedDefaultRule(t)
	table := env.seedTable(t, "T01")

	require.NoError(t, env.db.Create(&models.MembershipTier{
		ID:          uuid.NewString(),
		Name:        "Gold",
		DiscountPct: decimal.NewFromInt(10),
		PointsRate:  decimal.NewFromInt(1),
	}).Error)
	member := models.Member{
		ID:       uuid.NewString(),
		Name:     "Lena",
		Tier:     "Gold",
		JoinDate: time.Now(),
	}
	require.NoError(t, env.db.Create(&member).Error)

	url := "/tables/" + strconv.Itoa(int(table.ID))
	env.do(t, http.MethodPost, url+"/start", nil)
	env.clock.Advance(20 * time.Minute)

	w := env.do(t, http.MethodPost, url+"/stop", gin.H{"member_id": member.ID})
	require.Equal(t, http.StatusOK, w.Code)

	var txns []models.Transaction
	require.NoError(t, env.db.Find(&txns).Error)
	require.Len(t, txns, 1)
	// 15.00 minus the 10% Gold discount.
	assert.True(t, txns[0].Amount.Equal(decimal.NewFromFloat(13.50)), txns[0].Amount.String())

	var check models.Member
	require.NoError(t, env.db.First(&check, "id = ?", member.ID).Error)
	assert.True(t, check.TotalSpent.Equal(decimal.NewFromFloat(13.50)))
	assert.NotNil(t, check.LastVisited)
}

func TestDashboardStats(t *testing.T) {
	env := setupTableEnv(t)
	env.seedTable(t, "T01")
	env.seedTable(t, "T02")
	occupied := env.seedTable(t, "T03")
	env.do(t, http.MethodPost, "/tables/"+strconv.Itoa(int(occupied.ID))+"/start", nil)

	w := env.do(t, http.MethodGet, "/stats", nil)
	require.Equal(t, http.StatusOK, w.Code)
	resp := decodeResponse(t, w)

	data := resp["data"].(map[string]interface{})
	assert.Equal(t, float64(2), data["idle"])
	assert.Equal(t, float64(1), data["occupied"])
	assert.Equal(t, float64(3), data["total"])
}
