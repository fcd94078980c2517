package handler

import (
	"github.com/gin-gonic/gin"
)

// The diary frontend consumes the original API's response shapes verbatim,
// so errors go out as {"error": ...} rather than a richer envelope.
func fail(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{"error": message})
}
