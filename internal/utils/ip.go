package utils

import (
	"net/netip"

	"github.com/gin-gonic/gin"
)

// GetRealIP returns the client address used for rate limiting and audit
// lines. X-Real-IP and X-Forwarded-For count only when the request came
// through a proxy the engine trusts.
func GetRealIP(c *gin.Context) string {
	ip := c.ClientIP()
	if ip == "" {
		return "unknown"
	}
	// IPv4-mapped IPv6 peers share a bucket with their IPv4 form
	if addr, err := netip.ParseAddr(ip); err == nil {
		return addr.Unmap().WithZone("").String()
	}
	return ip
}
