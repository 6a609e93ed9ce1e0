package middleware

import (
	"context"
	"net/http"
	"slices"

	"github.com/cloudwego/hertz/pkg/app"
)

const (
	corsAllowMethods  = "GET, POST, DELETE, OPTIONS"
	corsAllowHeaders  = "Content-Type, X-Request-ID"
	corsExposeHeaders = "X-Request-ID, Content-Length"
)

// CORS allows browser clients from origins to call the API.
// No origins, or "*", allows any origin.
func CORS(origins ...string) app.HandlerFunc {
	anyOrigin := len(origins) == 0 || slices.Contains(origins, "*")

	return func(ctx context.Context, c *app.RequestContext) {
		origin := string(c.GetHeader("Origin"))
		switch {
		case anyOrigin:
			c.Response.Header.Set("Access-Control-Allow-Origin", "*")
		case origin != "" && slices.Contains(origins, origin):
			c.Response.Header.Set("Access-Control-Allow-Origin", origin)
			c.Response.Header.Add("Vary", "Origin")
		}
		c.Response.Header.Set("Access-Control-Allow-Methods", corsAllowMethods)
		c.Response.Header.Set("Access-Control-Allow-Headers", corsAllowHeaders)
		c.Response.Header.Set("Access-Control-Expose-Headers", corsExposeHeaders)
		c.Response.Header.Set("Access-Control-Max-Age", "86400")

		// preflight
		if string(c.Method()) == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next(ctx)
	}
}
