package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/marcuschin/poolhall-pos/hub"
	"github.com/marcuschin/poolhall-pos/models"
	"github.com/marcuschin/poolhall-pos/utils"
)

type ReservationController struct {
	DB  *gorm.DB
	Hub *hub.Hub
}

func NewReservationController(db *gorm.DB, h *hub.Hub) *ReservationController {
	return &ReservationController{DB: db, Hub: h}
}

func (rc *ReservationController) GetAllReservations(c *gin.Context) {
	var reservations []models.Reservation
	if err := rc.DB.Order("created_at DESC").Find(&reservations).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "List of reservations", reservations)
}

func (rc *ReservationController) CreateReservation(c *gin.Context) {
	var req struct {
		Name      string          `json:"name" binding:"required"`
		Phone     string          `json:"phone"`
		Date      string          `json:"date" binding:"required"`
		Time      string          `json:"time" binding:"required"`
		TableType string          `json:"table_type"`
		Pax       int             `json:"pax"`
		Deposit   decimal.Decimal `json:"deposit"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	reservation := models.Reservation{
		ID:        uuid.NewString(),
		Name:      req.Name,
		Phone:     req.Phone,
		Date:      req.Date,
		Time:      req.Time,
		TableType: req.TableType,
		Pax:       req.Pax,
		Deposit:   req.Deposit,
		Status:    "pending",
	}

	if err := rc.DB.Create(&reservation).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	rc.Hub.Broadcast(hub.EventReservationUpdate, reservation)
	utils.RespondJSON(c, http.StatusCreated, "Reservation created", reservation)
}

func (rc *ReservationController) UpdateReservationStatus(c *gin.Context) {
	id := c.Param("reservation_id")
	var req struct {
		Status string `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	var reservation models.Reservation
	if err := rc.DB.First(&reservation, "id = ?", id).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, err)
		return
	}

	reservation.Status = req.Status
	if err := rc.DB.Save(&reservation).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	rc.Hub.Broadcast(hub.EventReservationUpdate, reservation)
	utils.RespondJSON(c, http.StatusOK, "Reservation updated", reservation)
}
