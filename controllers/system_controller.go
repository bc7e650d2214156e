package controllers

import (
	"net/http"

	"github.com/campus-lostfound/api-go/notify"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const Version = "1.0.0"

type SystemController struct {
	Hub    *notify.Hub
	logger *zap.Logger
}

func NewSystemController(hub *notify.Hub, logger *zap.Logger) *SystemController {
	return &SystemController{Hub: hub, logger: logger.Named("system-controller")}
}

func (sc *SystemController) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "version": Version})
}

// WebSocket upgrades the connection for the admin dashboard feed.
func (sc *SystemController) WebSocket(c *gin.Context) {
	if err := sc.Hub.ServeWS(c.Writer, c.Request); err != nil {
		sc.logger.Debug("WebSocket not accepted", zap.Error(err))
	}
}
