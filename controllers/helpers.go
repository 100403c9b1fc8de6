package controllers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/marcuschin/poolhall-pos/models"
	"github.com/marcuschin/poolhall-pos/pricing"
	"github.com/marcuschin/poolhall-pos/services"
	"github.com/marcuschin/poolhall-pos/utils"
)

// respondServiceError maps core errors to HTTP statuses so the console
// can tell a bad request from a retryable store failure.
func respondServiceError(c *gin.Context, err error) {
	var validationErr *pricing.ValidationError
	var persistenceErr *services.PersistenceError

	switch {
	case errors.Is(err, services.ErrTableNotFound),
		errors.Is(err, services.ErrRuleNotFound):
		utils.RespondError(c, http.StatusNotFound, err)
	case errors.Is(err, services.ErrInvalidTransition),
		errors.Is(err, services.ErrInvalidMerge),
		errors.Is(err, services.ErrNothingToUnmerge):
		utils.RespondError(c, http.StatusConflict, err)
	case errors.As(err, &validationErr):
		utils.RespondError(c, http.StatusBadRequest, err)
	case errors.As(err, &persistenceErr):
		utils.RespondError(c, http.StatusInternalServerError, err)
	default:
		utils.RespondError(c, http.StatusInternalServerError, err)
	}
}

// writeAudit records a before/after snapshot of a sensitive mutation.
// Audit failures are logged, never surfaced.
func writeAudit(db *gorm.DB, c *gin.Context, action, entity, entityID string, before, after interface{}) {
	var userID *uint
	username := "anonymous"
	if v, ok := c.Get("user_id"); ok {
		if id, ok := v.(uint); ok {
			userID = &id
		}
	}
	if v, ok := c.Get("role"); ok {
		if role, ok := v.(string); ok {
			username = role
		}
	}

	entry := models.AuditLog{
		ID:       uuid.NewString(),
		UserID:   userID,
		Username: username,
		Action:   action,
		Entity:   entity,
		EntityID: entityID,
		IP:       c.ClientIP(),
	}
	if before != nil {
		if b, err := json.Marshal(before); err == nil {
			entry.BeforeState = string(b)
		}
	}
	if after != nil {
		if b, err := json.Marshal(after); err == nil {
			entry.AfterState = string(b)
		}
	}

	if err := db.Create(&entry).Error; err != nil {
		utils.ErrorLogger.Printf("Audit log failed for %s: %v", action, err)
	}
}
