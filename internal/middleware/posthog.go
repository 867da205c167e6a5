package middleware

import (
	"net/http"
	"strings"

	"github.com/KabriAcid/ammamricemill-sub002/internal/utils"
	"github.com/gin-gonic/gin"
)

// PosthogMiddleware records one usage event per successful write request.
// Reads are not tracked, and nothing is sent when the client is disabled.
func PosthogMiddleware(posthogClient *utils.PosthogClientWrapper) gin.HandlerFunc {
	return func(c *gin.Context) {
		if posthogClient == nil || !posthogClient.IsInitialized() || c.Request.Method == http.MethodGet {
			c.Next()
			return
		}

		c.Next()

		if len(c.Errors) > 0 || c.Writer.Status() >= http.StatusBadRequest {
			return
		}

		userID, exists := GetUserIDFromContext(c)
		if !exists {
			return
		}

		// "/api/v1/purchase/paddy/:id/cancel" -> "post_purchase_paddy_id_cancel"
		route := strings.TrimPrefix(c.FullPath(), "/api/v1/")
		if route == "" {
			return
		}
		route = strings.NewReplacer("/", "_", ":", "", "-", "_").Replace(route)
		eventName := strings.ToLower(c.Request.Method) + "_" + route

		props := map[string]any{
			"method":      c.Request.Method,
			"route":       c.FullPath(),
			"status_code": c.Writer.Status(),
		}
		if id := c.Param("id"); id != "" {
			props["entity_id"] = id
		}

		posthogClient.Enqueue(userID, eventName, props)
	}
}
