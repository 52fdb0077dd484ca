package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"
)

// paginationParams reads limit/offset query params with sane bounds.
func paginationParams(c *gin.Context) (limit, offset int) {
	limit = 50
	offset = 0
	if v, err := strconv.Atoi(c.Query("limit")); err == nil && v > 0 && v <= 200 {
		limit = v
	}
	if v, err := strconv.Atoi(c.Query("offset")); err == nil && v >= 0 {
		offset = v
	}
	return limit, offset
}

// stageIDParam parses the :stageID path parameter.
func stageIDParam(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("stageID"), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}
