package api

import (
	"net/http" // HTTP status codes

	"gecko_rack/internal/domain"  // Domain models
	"gecko_rack/internal/service" // Gecko service

	"github.com/gin-gonic/gin" // Gin web framework
)

// GeckoRequest creates or updates a gecko. On update the position is optional
// but rackId, row and column must be given together.
type GeckoRequest struct {
	Name      string   `json:"name"`
	Morph     *string  `json:"morph"`
	BirthDate *string  `json:"birthDate"` // RFC3339 or YYYY-MM-DD
	Gender    string   `json:"gender"`
	Weight    *float64 `json:"weight"`
	Notes     *string  `json:"notes"`
	RackID    *uint    `json:"rackId"`
	Row       *int     `json:"row"`
	Column    *int     `json:"column"`
}

// MoveRequest relocates a gecko
type MoveRequest struct {
	RackID *uint `json:"rackId" binding:"required"`
	Row    *int  `json:"row" binding:"required"`
	Column *int  `json:"column" binding:"required"`
}

// SwapRequest exchanges the cells of two geckos
type SwapRequest struct {
	GeckoID1 uint `json:"geckoId1" binding:"required"`
	GeckoID2 uint `json:"geckoId2" binding:"required"`
}

// fields converts the request, answering 400 on a malformed date
func (r *GeckoRequest) fields(c *gin.Context) (service.GeckoFields, bool) {
	born, ok := parseDate(r.BirthDate)
	if !ok {
		ErrorResponse(c, http.StatusBadRequest, "birthDate must be RFC3339 or YYYY-MM-DD")
		return service.GeckoFields{}, false
	}
	return service.GeckoFields{
		Name:      r.Name,
		Morph:     r.Morph,
		BirthDate: born,
		Gender:    domain.Gender(r.Gender),
		Weight:    r.Weight,
		Notes:     r.Notes,
	}, true
}

// position returns nil when no part of the position was sent
func (r *GeckoRequest) position(c *gin.Context) (*service.Position, bool) {
	if r.RackID == nil && r.Row == nil && r.Column == nil {
		return nil, true
	}
	if r.RackID == nil || r.Row == nil || r.Column == nil {
		ErrorResponse(c, http.StatusBadRequest, "rackId, row and column must be given together")
		return nil, false
	}
	return &service.Position{RackID: *r.RackID, Row: *r.Row, Column: *r.Column}, true
}

// ListGeckosHandler lists every gecko of the caller
func ListGeckosHandler(geckos *service.GeckoService) gin.HandlerFunc {
	return func(c *gin.Context) {
		list, err := geckos.List(c.Request.Context(), ownerFrom(c))
		if err != nil {
			HandleServiceError(c, err)
			return
		}
		c.JSON(http.StatusOK, list)
	}
}

// GetGeckoHandler returns one gecko with its care history
func GetGeckoHandler(geckos *service.GeckoService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := idParam(c, "id")
		if !ok {
			return
		}
		gecko, err := geckos.Get(c.Request.Context(), ownerFrom(c), id)
		if err != nil {
			HandleServiceError(c, err)
			return
		}
		c.JSON(http.StatusOK, gecko)
	}
}

// CreateGeckoHandler places a new gecko on a free cell
func CreateGeckoHandler(geckos *service.GeckoService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req GeckoRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			ErrorResponse(c, http.StatusBadRequest, "Invalid request")
			return
		}
		fields, ok := req.fields(c)
		if !ok {
			return
		}
		pos, ok := req.position(c)
		if !ok {
			return
		}
		if pos == nil {
			ErrorResponse(c, http.StatusBadRequest, "rackId, row and column are required")
			return
		}
		gecko, err := geckos.Create(c.Request.Context(), ownerFrom(c), fields, *pos)
		if err != nil {
			HandleServiceError(c, err)
			return
		}
		c.JSON(http.StatusCreated, gecko)
	}
}

// UpdateGeckoHandler replaces a gecko's fields and optionally moves it
func UpdateGeckoHandler(geckos *service.GeckoService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := idParam(c, "id")
		if !ok {
			return
		}
		var req GeckoRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			ErrorResponse(c, http.StatusBadRequest, "Invalid request")
			return
		}
		fields, ok := req.fields(c)
		if !ok {
			return
		}
		pos, ok := req.position(c)
		if !ok {
			return
		}
		gecko, err := geckos.Update(c.Request.Context(), ownerFrom(c), id, fields, pos)
		if err != nil {
			HandleServiceError(c, err)
			return
		}
		c.JSON(http.StatusOK, gecko)
	}
}

// MoveGeckoHandler relocates a gecko to another free cell
func MoveGeckoHandler(geckos *service.GeckoService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := idParam(c, "id")
		if !ok {
			return
		}
		var req MoveRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			ErrorResponse(c, http.StatusBadRequest, "rackId, row and column are required")
			return
		}
		gecko, err := geckos.Move(c.Request.Context(), ownerFrom(c), id, service.Position{RackID: *req.RackID, Row: *req.Row, Column: *req.Column})
		if err != nil {
			HandleServiceError(c, err)
			return
		}
		c.JSON(http.StatusOK, gecko)
	}
}

// SwapGeckosHandler exchanges the cells of two geckos
func SwapGeckosHandler(geckos *service.GeckoService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req SwapRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			ErrorResponse(c, http.StatusBadRequest, "geckoId1 and geckoId2 are required")
			return
		}
		if err := geckos.Swap(c.Request.Context(), ownerFrom(c), req.GeckoID1, req.GeckoID2); err != nil {
			HandleServiceError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"success": true})
	}
}

// DeleteGeckoHandler removes a gecko with its logs and photos
func DeleteGeckoHandler(geckos *service.GeckoService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := idParam(c, "id")
		if !ok {
			return
		}
		if err := geckos.Delete(c.Request.Context(), ownerFrom(c), id); err != nil {
			HandleServiceError(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	}
}
