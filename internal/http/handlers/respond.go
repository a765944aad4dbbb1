package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Failure envelope is always {"error": ..., "message"|"details": ...} with
// a 4xx/5xx status; nothing internal leaks into the body.

func RespondValidation(ctx *gin.Context, details interface{}) {
	ctx.JSON(http.StatusBadRequest, gin.H{
		"error":   "Validation failed",
		"details": details,
	})
}

func RespondBadRequest(ctx *gin.Context, errTag, message string) {
	ctx.JSON(http.StatusBadRequest, gin.H{
		"error":   errTag,
		"message": message,
	})
}

func RespondUnauthorized(ctx *gin.Context, errTag, message string) {
	ctx.JSON(http.StatusUnauthorized, gin.H{
		"error":   errTag,
		"message": message,
	})
}

func RespondForbidden(ctx *gin.Context, message string) {
	ctx.JSON(http.StatusForbidden, gin.H{
		"error":   "Forbidden",
		"message": message,
	})
}

func RespondNotFound(ctx *gin.Context, errTag, message string) {
	ctx.JSON(http.StatusNotFound, gin.H{
		"error":   errTag,
		"message": message,
	})
}

func RespondInternal(ctx *gin.Context, message string) {
	ctx.JSON(http.StatusInternalServerError, gin.H{
		"error":   "Internal server error",
		"message": message,
	})
}
