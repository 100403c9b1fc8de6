package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/marcuschin/poolhall-pos/database"
	"github.com/marcuschin/poolhall-pos/hub"
	"github.com/marcuschin/poolhall-pos/models"
	"github.com/marcuschin/poolhall-pos/router"
	"github.com/marcuschin/poolhall-pos/services"
	"github.com/marcuschin/poolhall-pos/utils"
)

func TestMain(m *testing.M) {
	utils.InitLogger()
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

// TestEndToEndCheckout walks the main floor flow: login, open a session,
// merge a second table in, unmerge, and check out with a fee.
func TestEndToEndCheckout(t *testing.T) {
	db := setupIntegrationDB(t)
	r := setupIntegrationRouter(db)

	token := loginTest(t, r)

	// Open sessions on the first two seeded tables.
	startTableTest(t, r, token, 1)
	startTableTest(t, r, token, 2)

	// Fold table 2 into table 1 and dissolve the group again.
	mergeTablesTest(t, r, token, 1, []uint{2})
	unmergeTableTest(t, r, token, 1)

	// Check out table 1; the seeded hourly rule bills the 30-minute
	// minimum even though the session just opened.
	total := stopTableTest(t, r, token, 1)
	assert.Equal(t, "15", total)

	var txns []models.Transaction
	require.NoError(t, db.Find(&txns).Error)
	require.Len(t, txns, 1)

	var table models.Table
	require.NoError(t, db.First(&table, 1).Error)
	assert.Equal(t, models.TableStatusIdle, table.Status)
}

func setupIntegrationDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Role{},
		&models.Table{},
		&models.PricingRule{},
		&models.Promotion{},
		&models.Transaction{},
		&models.Reservation{},
		&models.Member{},
		&models.MembershipTier{},
		&models.InventoryItem{},
		&models.QueueEntry{},
		&models.Setting{},
		&models.BusinessSetting{},
		&models.AuditLog{},
	))
	require.NoError(t, database.Seed(db))
	return db
}

func setupIntegrationRouter(db *gorm.DB) *gin.Engine {
	h := hub.New()
	clock := utils.SystemClock{}
	tables := services.NewTableService(db, h, clock)
	merges := services.NewMergeService(db, h, clock, tables)
	fees := services.NewFeeService(db, clock)
	return router.SetupRouter(db, h, tables, merges, fees)
}

func loginTest(t *testing.T, r *gin.Engine) string {
	t.Helper()
	body, _ := json.Marshal(map[string]string{
		"email":    "admin@poolhall.local",
		"password": "admin123",
	})

	req := httptest.NewRequest(http.MethodPost, "/login", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp struct {
		Data struct {
			Token string `json:"token"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Data.Token)
	return resp.Data.Token
}

func authedRequest(t *testing.T, r *gin.Engine, token, method, url string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, url, &buf)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func startTableTest(t *testing.T, r *gin.Engine, token string, id uint) {
	t.Helper()
	w := authedRequest(t, r, token, http.MethodPost, fmt.Sprintf("/tables/%d/start", id), nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
}

func mergeTablesTest(t *testing.T, r *gin.Engine, token string, primary uint, secondaries []uint) {
	t.Helper()
	w := authedRequest(t, r, token, http.MethodPost, "/tables/merge", gin.H{
		"primary_table_id":    primary,
		"secondary_table_ids": secondaries,
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
}

func unmergeTableTest(t *testing.T, r *gin.Engine, token string, primary uint) {
	t.Helper()
	w := authedRequest(t, r, token, http.MethodPost, fmt.Sprintf("/tables/%d/unmerge", primary), nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
}

func stopTableTest(t *testing.T, r *gin.Engine, token string, id uint) string {
	t.Helper()
	w := authedRequest(t, r, token, http.MethodPost, fmt.Sprintf("/tables/%d/stop", id), nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp struct {
		Data struct {
			Fee struct {
				Total string `json:"total"`
			} `json:"fee"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp.Data.Fee.Total
}

func TestEndpointsRequireAuth(t *testing.T) {
	db := setupIntegrationDB(t)
	r := setupIntegrationRouter(db)

	req := httptest.NewRequest(http.MethodGet, "/tables", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestPermissionGateOnPricing(t *testing.T) {
	db := setupIntegrationDB(t)
	r := setupIntegrationRouter(db)

	// Register a plain staff account; staff lacks manage_prices.
	body, _ := json.Marshal(map[string]string{
		"name":     "Floor Staff",
		"email":    "staff@poolhall.local",
		"password": "staff123",
	})
	req := httptest.NewRequest(http.MethodPost, "/register", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	loginBody, _ := json.Marshal(map[string]string{
		"email":    "staff@poolhall.local",
		"password": "staff123",
	})
	req = httptest.NewRequest(http.MethodPost, "/login", bytes.NewBuffer(loginBody))
	req.Header.Set("Content-Type", "application/json")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Data struct {
			Token string `json:"token"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))

	w = authedRequest(t, r, resp.Data.Token, http.MethodPost, "/pricing-rules", gin.H{
		"name":      "Sneaky",
		"base_rate": "0.01",
	})
	assert.Equal(t, http.StatusForbidden, w.Code, w.Body.String())
}
