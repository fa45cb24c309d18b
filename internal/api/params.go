package api

import (
	"net/http" // HTTP status codes
	"strconv"  // ID parsing
	"strings"  // Trimming
	"time"     // Date parsing

	"gecko_rack/internal/middleware" // Context keys
	"gecko_rack/internal/service"    // Owner capability

	"github.com/gin-gonic/gin" // Gin web framework
)

// ownerFrom builds the ownership capability from the authenticated request
func ownerFrom(c *gin.Context) service.Owner {
	return service.Owner{UserID: c.GetUint(middleware.UserIDKey)}
}

// idParam reads a positive numeric path parameter, answering 400 otherwise
func idParam(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		ErrorResponse(c, http.StatusBadRequest, "Invalid "+name)
		return 0, false
	}
	return uint(id), true
}

// parseDate accepts RFC3339 timestamps and plain YYYY-MM-DD dates. Empty means unset.
func parseDate(value *string) (*time.Time, bool) {
	if value == nil || strings.TrimSpace(*value) == "" {
		return nil, true
	}
	v := strings.TrimSpace(*value)
	for _, layout := range []string{time.RFC3339Nano, "2006-01-02"} {
		if t, err := time.Parse(layout, v); err == nil {
			t = t.UTC()
			return &t, true
		}
	}
	return nil, false
}
