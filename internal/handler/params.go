package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/electrokart/electrokart_api/internal/middleware"
	"github.com/electrokart/electrokart_api/internal/utils"
)

// paramID parses a positive integer path parameter, answering 400 when it is not one.
func paramID(c *gin.Context, name, what string) (int, bool) {
	id, err := strconv.Atoi(c.Param(name))
	if err != nil || id <= 0 {
		utils.Error(c, 400, "INVALID_ID", "Invalid "+what+" ID")
		return 0, false
	}
	return id, true
}

// queryInt returns a query parameter as an int, or def when absent or malformed.
func queryInt(c *gin.Context, name string, def int) int {
	if v := c.Query(name); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

// currentUser returns the authenticated user id. Routes using it sit behind the JWT middleware.
func currentUser(c *gin.Context) (int, bool) {
	id, ok := middleware.UserID(c)
	if !ok {
		utils.Error(c, 401, "UNAUTHORIZED", "Not authorized")
		return 0, false
	}
	return id, true
}
