package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"

	apierrors "github.com/vizlab/dataviz-api/internal/errors"
	"github.com/vizlab/dataviz-api/internal/middleware"
)

// parseIDParam reads a numeric path parameter. On failure it writes a 400 and
// returns false.
func parseIDParam(c *gin.Context, name string) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil {
		apierrors.BadRequest(c, "Invalid "+name+" parameter")
		return 0, false
	}
	return id, true
}

// currentUserID reads the authenticated user's id set by RequireAuth. On
// failure it writes a 401 and returns false.
func currentUserID(c *gin.Context) (uint64, bool) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		apierrors.Unauthorized(c, "Not authenticated")
		return 0, false
	}
	return userID, true
}
