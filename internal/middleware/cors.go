package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// CORS allows browser tooling (the log page, merchant test consoles) to call
// the emulator from any origin. This is a local test double; there is nothing
// to protect.
func CORS() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type, Idempotency-Key")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}
