package api

import (
	"net/http" // HTTP status codes

	"gecko_rack/internal/service" // Alert service

	"github.com/gin-gonic/gin" // Gin web framework
)

// ListAlertsHandler lists the caller's geckos with overdue care
func ListAlertsHandler(alerts *service.AlertService) gin.HandlerFunc {
	return func(c *gin.Context) {
		list, err := alerts.List(c.Request.Context(), ownerFrom(c))
		if err != nil {
			HandleServiceError(c, err)
			return
		}
		c.JSON(http.StatusOK, list)
	}
}
