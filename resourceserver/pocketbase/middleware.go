// Package pocketbase adapts resourceserver.Wrap to PocketBase's router hook
// signature, func(*core.RequestEvent) error, translating between the
// framework's RequestEvent and the stdlib http.Handler chain the shared
// gating logic expects.
package pocketbase

import (
	"net/http"

	"github.com/pocketbase/pocketbase/core"

	"github.com/402labs/facilitator/resourceserver"
)

// NewMiddleware builds a PocketBase route hook that gates the route behind
// a valid receipt token. On success the verified *resourceserver.Payment is
// stashed in the request context, reachable from the protected handler via
// resourceserver.FromContext(e.Request.Context()).
//
//	app.OnServe().BindFunc(func(se *core.ServeEvent) error {
//	    se.Router.GET("/article", articleHandler).BindFunc(pbx402.NewMiddleware(cfg))
//	    return se.Next()
//	})
func NewMiddleware(cfg resourceserver.Config) func(*core.RequestEvent) error {
	wrapped := resourceserver.Wrap(cfg)

	return func(e *core.RequestEvent) error {
		var nextErr error
		passed := false

		next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			passed = true
			e.Request = r
			nextErr = e.Next()
		})

		wrapped(next).ServeHTTP(e.Response, e.Request)
		if !passed {
			// send402 already wrote the 402 body to e.Response; nothing
			// more to do, and no downstream hook ran.
			return nil
		}
		return nextErr
	}
}
