package controllers_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/marcuschin/poolhall-pos/controllers"
	"github.com/marcuschin/poolhall-pos/hub"
	"github.com/marcuschin/poolhall-pos/models"
	"github.com/marcuschin/poolhall-pos/utils"
)

func setupQueueRouter(t *testing.T) (*gin.Engine, *gorm.DB) {
	t.Helper()
	utils.InitLogger()
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.QueueEntry{}))

	ctrl := controllers.NewQueueController(db, hub.New())
	r := gin.New()
	r.GET("/queue", ctrl.GetQueue)
	r.POST("/queue", ctrl.AddToQueue)
	r.POST("/queue/call-next", ctrl.CallNext)
	r.DELETE("/queue/:queue_id", ctrl.RemoveFromQueue)
	return r, db
}

func TestQueuePositionsAssignedSequentially(t *testing.T) {
	r, db := setupQueueRouter(t)

	for _, name := range []string{"Ana", "Bo", "Cy"} {
		w := postJSON(t, r, http.MethodPost, "/queue", gin.H{"name": name, "pax": 2})
		require.Equal(t, http.StatusCreated, w.Code)
	}

	var entries []models.QueueEntry
	require.NoError(t, db.Order("position").Find(&entries).Error)
	require.Len(t, entries, 3)
	for i, entry := range entries {
		assert.Equal(t, i+1, entry.Position)
		assert.Equal(t, models.QueueStatusWaiting, entry.Status)
	}
}

func TestCallNextNotifiesFrontOfLine(t *testing.T) {
	r, db := setupQueueRouter(t)

	postJSON(t, r, http.MethodPost, "/queue", gin.H{"name": "Ana"})
	postJSON(t, r, http.MethodPost, "/queue", gin.H{"name": "Bo"})

	w := postJSON(t, r, http.MethodPost, "/queue/call-next", gin.H{})
	require.Equal(t, http.StatusOK, w.Code)

	var front models.QueueEntry
	require.NoError(t, db.Where("position = ?", 1).First(&front).Error)
	assert.Equal(t, models.QueueStatusNotified, front.Status)
	assert.NotNil(t, front.NotifiedAt)
}

func TestCallNextOnEmptyQueue(t *testing.T) {
	r, _ := setupQueueRouter(t)

	w := postJSON(t, r, http.MethodPost, "/queue/call-next", gin.H{})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRemoveFromQueueRenumbers(t *testing.T) {
	r, db := setupQueueRouter(t)

	postJSON(t, r, http.MethodPost, "/queue", gin.H{"name": "Ana"})
	postJSON(t, r, http.MethodPost, "/queue", gin.H{"name": "Bo"})
	postJSON(t, r, http.MethodPost, "/queue", gin.H{"name": "Cy"})

	var first models.QueueEntry
	require.NoError(t, db.Where("position = ?", 1).First(&first).Error)

	req := httptest.NewRequest(http.MethodDelete, "/queue/"+first.ID, nil)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	// Everyone behind the removed party moves up one spot.
	var entries []models.QueueEntry
	require.NoError(t, db.Order("position").Find(&entries).Error)
	require.Len(t, entries, 2)
	assert.Equal(t, 1, entries[0].Position)
	assert.Equal(t, "Bo", entries[0].Name)
	assert.Equal(t, 2, entries[1].Position)
	assert.Equal(t, "Cy", entries[1].Name)
}
