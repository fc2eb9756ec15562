package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"
)

// parseIDParam reads a positive numeric path parameter; responds 400 and
// returns false when it is not one.
func parseIDParam(ctx *gin.Context, name string) (int64, bool) {
	raw := ctx.Param(name)

	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		RespondBadRequest(ctx, "Invalid "+name+" parameter", gin.H{name: raw})
		return 0, false
	}

	return id, true
}

func parseQueryInt(ctx *gin.Context, name string, fallback int) int {
	raw := ctx.Query(name)
	if raw == "" {
		return fallback
	}

	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return fallback
	}
	return n
}
