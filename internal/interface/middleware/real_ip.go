package middleware

import (
	"net"
	"strings"

	"github.com/gin-gonic/gin"
)

const realIPKey = "real_ip"

// RealIP sets the client IP into Gin context (key: "real_ip").
// With trustForwarded the priority is:
// 1) CF-Connecting-IP (Cloudflare)
// 2) X-Forwarded-For (left-most)
// 3) fallback to c.ClientIP()
// Otherwise the socket peer address is used as is.
func RealIP(trustForwarded bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !trustForwarded {
			c.Set(realIPKey, c.RemoteIP())
			c.Next()
			return
		}
		// 1) Cloudflare header
		if cf := strings.TrimSpace(c.GetHeader("CF-Connecting-IP")); cf != "" {
			if ip := net.ParseIP(cf); ip != nil {
				c.Set(realIPKey, ip.String())
				c.Next()
				return
			}
		}
		// 2) X-Forwarded-For: take left-most
		if xff := c.GetHeader("X-Forwarded-For"); xff != "" {
			first := strings.TrimSpace(strings.Split(xff, ",")[0])
			if ip := net.ParseIP(first); ip != nil {
				c.Set(realIPKey, ip.String())
				c.Next()
				return
			}
		}
		// 3) Fallback
		c.Set(realIPKey, c.ClientIP())
		c.Next()
	}
}

// ClientAddress returns the address RealIP stored, falling back to Gin's view of the client.
func ClientAddress(c *gin.Context) string {
	if ip := c.GetString(realIPKey); ip != "" {
		return ip
	}
	return c.ClientIP()
}
