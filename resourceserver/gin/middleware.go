// Package gin adapts resourceserver.Wrap to Gin's middleware signature,
// translating gin.Context to the stdlib http.Handler chain the shared
// gating logic expects.
package gin

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/402labs/facilitator/resourceserver"
)

// NewMiddleware builds a gin.HandlerFunc that gates the route behind a
// valid receipt token. The verified *resourceserver.Payment is stored in
// the request context, reachable from the protected handler via
// resourceserver.FromContext(c.Request.Context()).
//
//	r := gin.Default()
//	r.Use(ginx402.NewMiddleware(cfg))
//	r.GET("/article", articleHandler)
func NewMiddleware(cfg resourceserver.Config) gin.HandlerFunc {
	wrapped := resourceserver.Wrap(cfg)

	return func(c *gin.Context) {
		aborted := true
		next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			aborted = false
			c.Request = r
			c.Next()
		})

		wrapped(next).ServeHTTP(c.Writer, c.Request)
		if aborted {
			c.Abort()
		}
	}
}
