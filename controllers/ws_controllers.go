package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"gorm.io/gorm"

	"github.com/marcuschin/poolhall-pos/hub"
	"github.com/marcuschin/poolhall-pos/models"
	"github.com/marcuschin/poolhall-pos/utils"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

type WSController struct {
	DB  *gorm.DB
	Hub *hub.Hub
}

func NewWSController(db *gorm.DB, h *hub.Hub) *WSController {
	return &WSController{DB: db, Hub: h}
}

// Handle upgrades the connection, sends the full table snapshot and then
// keeps the client registered until the read loop ends.
func (wc *WSController) Handle(c *gin.Context) {
	if _, exists := c.Get("user_id"); !exists {
		c.AbortWithStatus(http.StatusUnauthorized)
		return
	}

	ws, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		utils.ErrorLogger.Printf("ws upgrade failed: %v", err)
		return
	}

	cl := wc.Hub.Register(ws)

	var tables []models.Table
	if err := wc.DB.Order("table_number").Find(&tables).Error; err != nil {
		utils.ErrorLogger.Printf("ws init snapshot failed: %v", err)
	} else {
		cl.Send(hub.Message{Event: hub.EventInit, Data: tables})
	}

	for {
		if _, _, err := ws.ReadMessage(); err != nil {
			break
		}
	}

	wc.Hub.Unregister(cl)
}
