package api

import (
	"net/http" // HTTP status codes

	"gecko_rack/internal/domain"  // Domain models
	"gecko_rack/internal/service" // Care log service

	"github.com/gin-gonic/gin" // Gin web framework
)

// CareLogRequest records a care event
type CareLogRequest struct {
	Type      string  `json:"type" binding:"required"`
	Note      *string `json:"note"`
	Value     *string `json:"value"`
	CreatedAt *string `json:"createdAt"` // Defaults to now
}

// ListCareLogsHandler lists a gecko's care history, newest first
func ListCareLogsHandler(logs *service.CareLogService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := idParam(c, "id")
		if !ok {
			return
		}
		list, err := logs.List(c.Request.Context(), ownerFrom(c), id)
		if err != nil {
			HandleServiceError(c, err)
			return
		}
		c.JSON(http.StatusOK, list)
	}
}

// CreateCareLogHandler appends a care log to a gecko
func CreateCareLogHandler(logs *service.CareLogService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := idParam(c, "id")
		if !ok {
			return
		}
		var req CareLogRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			ErrorResponse(c, http.StatusBadRequest, "type is required")
			return
		}
		at, ok := parseDate(req.CreatedAt)
		if !ok {
			ErrorResponse(c, http.StatusBadRequest, "createdAt must be RFC3339 or YYYY-MM-DD")
			return
		}
		entry, err := logs.Append(c.Request.Context(), ownerFrom(c), id, service.CareLogInput{
			Type:      domain.CareType(req.Type),
			Note:      req.Note,
			Value:     req.Value,
			CreatedAt: at,
		})
		if err != nil {
			HandleServiceError(c, err)
			return
		}
		c.JSON(http.StatusCreated, entry)
	}
}

// WeightHistoryHandler returns the gecko's weight series, oldest first
func WeightHistoryHandler(logs *service.CareLogService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := idParam(c, "id")
		if !ok {
			return
		}
		points, err := logs.Weights(c.Request.Context(), ownerFrom(c), id)
		if err != nil {
			HandleServiceError(c, err)
			return
		}
		c.JSON(http.StatusOK, points)
	}
}

// DeleteCareLogHandler removes a care log
func DeleteCareLogHandler(logs *service.CareLogService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := idParam(c, "id")
		if !ok {
			return
		}
		if err := logs.Delete(c.Request.Context(), ownerFrom(c), id); err != nil {
			HandleServiceError(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	}
}
