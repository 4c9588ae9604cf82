package middlewares

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/table-reservation/utils"
	"golang.org/x/time/rate"
)

// PaymentSecurityHeaders adds security headers for the deposit callback
func PaymentSecurityHeaders() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("X-Frame-Options", "DENY")
		c.Header("X-Content-Type-Options", "nosniff")
		c.Header("Cache-Control", "no-store")
		c.Header("Referrer-Policy", "no-referrer")
		c.Next()
	}
}

// PaymentRateLimiter caps provider callbacks across all callers
func PaymentRateLimiter(perSecond int) gin.HandlerFunc {
	if perSecond < 1 {
		perSecond = 10
	}
	limiter := rate.NewLimiter(rate.Limit(perSecond), perSecond)
	return func(c *gin.Context) {
		if !limiter.Allow() {
			c.JSON(429, gin.H{
				"error":   "Too many requests",
				"message": "Please retry the notification later",
			})
			c.Abort()
			return
		}
		c.Next()
	}
}

// LogPaymentRequest logs deposit callback details
func LogPaymentRequest() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		method := c.Request.Method

		c.Next()

		utils.InfoLogger.Printf(
			"Payment Request - Method: %s, Path: %s, Status: %d, Duration: %v",
			method, path, c.Writer.Status(), time.Since(start),
		)
	}
}
