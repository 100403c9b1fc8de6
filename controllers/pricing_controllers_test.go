package controllers_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/marcuschin/poolhall-pos/controllers"
	"github.com/marcuschin/poolhall-pos/models"
	"github.com/marcuschin/poolhall-pos/utils"
)

func setupPricingRouter(t *testing.T) (*gin.Engine, *gorm.DB) {
	t.Helper()
	utils.InitLogger()
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.PricingRule{}, &models.AuditLog{}))

	ctrl := controllers.NewPricingController(db)
	r := gin.New()
	r.GET("/pricing-rules", ctrl.GetAllRules)
	r.POST("/pricing-rules", ctrl.CreateRule)
	r.PATCH("/pricing-rules/:rule_id", ctrl.UpdateRule)
	r.DELETE("/pricing-rules/:rule_id", ctrl.DeleteRule)
	return r, db
}

func postJSON(t *testing.T, r *gin.Engine, method, url string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	raw, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(method, url, bytes.NewBuffer(raw))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestCreateRuleAppliesDefaults(t *testing.T) {
	r, db := setupPricingRouter(t)

	w := postJSON(t, r, http.MethodPost, "/pricing-rules", gin.H{
		"name":      "Standard",
		"base_rate": "0.50",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	var rule models.PricingRule
	require.NoError(t, db.First(&rule).Error)
	assert.Equal(t, models.PricingModeHourly, rule.Mode)
	assert.Equal(t, 30, rule.MinChargeMinutes)
	assert.Equal(t, 5, rule.GracePeriodMinutes)
}

func TestCreateRuleRejectsOverlappingSlots(t *testing.T) {
	r, db := setupPricingRouter(t)

	w := postJSON(t, r, http.MethodPost, "/pricing-rules", gin.H{
		"name":      "Peak",
		"mode":      models.PricingModeTimeSlot,
		"base_rate": "0.30",
		"time_slots": []gin.H{
			{"start": "09:00", "end": "12:00", "rate_per_min": "0.40"},
			{"start": "11:00", "end": "13:00", "rate_per_min": "0.60"},
		},
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// Nothing was persisted.
	var count int64
	db.Model(&models.PricingRule{}).Count(&count)
	assert.Equal(t, int64(0), count)
}

func TestCreateRuleRejectsUnknownMode(t *testing.T) {
	r, _ := setupPricingRouter(t)

	w := postJSON(t, r, http.MethodPost, "/pricing-rules", gin.H{
		"name":      "Per game",
		"mode":      "per_game",
		"base_rate": "3.00",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUpdateRuleRevalidates(t *testing.T) {
	r, db := setupPricingRouter(t)

	w := postJSON(t, r, http.MethodPost, "/pricing-rules", gin.H{
		"name":      "Evening",
		"mode":      models.PricingModeTimeSlot,
		"base_rate": "0.30",
		"time_slots": []gin.H{
			{"start": "18:00", "end": "22:00", "rate_per_min": "0.80"},
		},
	})
	require.Equal(t, http.StatusCreated, w.Code)

	var rule models.PricingRule
	require.NoError(t, db.First(&rule).Error)

	// An edit that introduces an overlap is rejected and the stored rule
	// keeps its old slots.
	w = postJSON(t, r, http.MethodPatch, "/pricing-rules/"+rule.ID, gin.H{
		"name":      "Evening",
		"mode":      models.PricingModeTimeSlot,
		"base_rate": "0.30",
		"time_slots": []gin.H{
			{"start": "18:00", "end": "22:00", "rate_per_min": "0.80"},
			{"start": "21:00", "end": "23:00", "rate_per_min": "1.00"},
		},
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	var check models.PricingRule
	require.NoError(t, db.First(&check, "id = ?", rule.ID).Error)
	assert.Len(t, check.Config.TimeSlots, 1)
}

func TestDeleteRule(t *testing.T) {
	r, db := setupPricingRouter(t)

	w := postJSON(t, r, http.MethodPost, "/pricing-rules", gin.H{
		"name":      "Old",
		"base_rate": "1.00",
	})
	require.Equal(t, http.StatusCreated, w.Code)

	var rule models.PricingRule
	require.NoError(t, db.First(&rule).Error)

	req := httptest.NewRequest(http.MethodDelete, "/pricing-rules/"+rule.ID, nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var count int64
	db.Model(&models.PricingRule{}).Count(&count)
	assert.Equal(t, int64(0), count)
}
