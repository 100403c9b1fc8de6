package controllers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/marcuschin/poolhall-pos/hub"
	"github.com/marcuschin/poolhall-pos/models"
	"github.com/marcuschin/poolhall-pos/utils"
)

type QueueController struct {
	DB  *gorm.DB
	Hub *hub.Hub
}

func NewQueueController(db *gorm.DB, h *hub.Hub) *QueueController {
	return &QueueController{DB: db, Hub: h}
}

func (qc *QueueController) GetQueue(c *gin.Context) {
	var entries []models.QueueEntry
	err := qc.DB.
		Where("status NOT IN ?", []string{models.QueueStatusCompleted, models.QueueStatusCancelled}).
		Order("position ASC").
		Find(&entries).Error
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Waiting queue", entries)
}

// AddToQueue appends a party at the back of the waiting line.
func (qc *QueueController) AddToQueue(c *gin.Context) {
	var req struct {
		Name  string `json:"name" binding:"required"`
		Phone string `json:"phone"`
		Pax   int    `json:"pax"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	var entry models.QueueEntry
	err := qc.DB.Transaction(func(tx *gorm.DB) error {
		var maxPos int
		row := tx.Model(&models.QueueEntry{}).
			Where("status IN ?", []string{models.QueueStatusWaiting, models.QueueStatusNotified}).
			Select("COALESCE(MAX(position), 0)").
			Row()
		if err := row.Scan(&maxPos); err != nil {
			return err
		}

		entry = models.QueueEntry{
			ID:       uuid.NewString(),
			Name:     req.Name,
			Phone:    req.Phone,
			Pax:      req.Pax,
			Position: maxPos + 1,
			Status:   models.QueueStatusWaiting,
			AddedAt:  time.Now(),
		}
		return tx.Create(&entry).Error
	})
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	qc.Hub.Broadcast(hub.EventQueueUpdate, entry)
	utils.RespondJSON(c, http.StatusCreated, "Added to queue", entry)
}

// CallNext notifies the party at the front of the line.
func (qc *QueueController) CallNext(c *gin.Context) {
	var entry models.QueueEntry
	err := qc.DB.
		Where("position = ? AND status = ?", 1, models.QueueStatusWaiting).
		First(&entry).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondError(c, http.StatusNotFound, errors.New("queue is empty"))
			return
		}
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	now := time.Now()
	entry.Status = models.QueueStatusNotified
	entry.NotifiedAt = &now
	if err := qc.DB.Save(&entry).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	qc.Hub.Broadcast(hub.EventQueueUpdate, entry)
	utils.RespondJSON(c, http.StatusOK, "Next party called", entry)
}

// RemoveFromQueue drops an entry and renumbers everyone behind it.
func (qc *QueueController) RemoveFromQueue(c *gin.Context) {
	id := c.Param("queue_id")

	var entry models.QueueEntry
	if err := qc.DB.First(&entry, "id = ?", id).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, err)
		return
	}

	err := qc.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&entry).Error; err != nil {
			return err
		}
		return tx.Model(&models.QueueEntry{}).
			Where("position > ?", entry.Position).
			Update("position", gorm.Expr("position - 1")).Error
	})
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	qc.Hub.Broadcast(hub.EventQueueUpdate, gin.H{"removed": entry.ID})
	utils.RespondJSON(c, http.StatusOK, "Removed from queue", gin.H{"id": entry.ID})
}
