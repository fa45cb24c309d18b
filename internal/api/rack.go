package api

import (
	"net/http" // HTTP status codes

	"gecko_rack/internal/service" // Rack service

	"github.com/gin-gonic/gin" // Gin web framework
)

// RackRequest creates a rack
type RackRequest struct {
	Name    string `json:"name"`
	Rows    int    `json:"rows"`
	Columns int    `json:"columns"`
}

// RackUpdateRequest changes the supplied fields of a rack
type RackUpdateRequest struct {
	Name    *string `json:"name"`
	Rows    *int    `json:"rows"`
	Columns *int    `json:"columns"`
}

// ListRacksHandler lists the caller's racks with their geckos
func ListRacksHandler(racks *service.RackService) gin.HandlerFunc {
	return func(c *gin.Context) {
		list, err := racks.List(c.Request.Context(), ownerFrom(c))
		if err != nil {
			HandleServiceError(c, err)
			return
		}
		c.JSON(http.StatusOK, list)
	}
}

// GetRackHandler returns one rack
func GetRackHandler(racks *service.RackService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := idParam(c, "id")
		if !ok {
			return
		}
		rack, err := racks.Get(c.Request.Context(), ownerFrom(c), id)
		if err != nil {
			HandleServiceError(c, err)
			return
		}
		c.JSON(http.StatusOK, rack)
	}
}

// RackGridHandler returns the rack laid out cell by cell
func RackGridHandler(racks *service.RackService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := idParam(c, "id")
		if !ok {
			return
		}
		grid, err := racks.Grid(c.Request.Context(), ownerFrom(c), id)
		if err != nil {
			HandleServiceError(c, err)
			return
		}
		c.JSON(http.StatusOK, grid)
	}
}

// CreateRackHandler adds a rack
func CreateRackHandler(racks *service.RackService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req RackRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			ErrorResponse(c, http.StatusBadRequest, "Invalid request")
			return
		}
		rack, err := racks.Create(c.Request.Context(), ownerFrom(c), service.RackInput{Name: req.Name, Rows: req.Rows, Columns: req.Columns})
		if err != nil {
			HandleServiceError(c, err)
			return
		}
		c.JSON(http.StatusCreated, rack)
	}
}

// UpdateRackHandler renames or resizes a rack
func UpdateRackHandler(racks *service.RackService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := idParam(c, "id")
		if !ok {
			return
		}
		var req RackUpdateRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			ErrorResponse(c, http.StatusBadRequest, "Invalid request")
			return
		}
		rack, err := racks.Update(c.Request.Context(), ownerFrom(c), id, service.RackUpdate{Name: req.Name, Rows: req.Rows, Columns: req.Columns})
		if err != nil {
			HandleServiceError(c, err)
			return
		}
		c.JSON(http.StatusOK, rack)
	}
}

// DeleteRackHandler removes a rack and everything in it
func DeleteRackHandler(racks *service.RackService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := idParam(c, "id")
		if !ok {
			return
		}
		if err := racks.Delete(c.Request.Context(), ownerFrom(c), id); err != nil {
			HandleServiceError(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	}
}
