// Package layers applies the dispatch layers a request asks for. The
// X-Flywheel-Layers header names collect contexts, most specific first; the
// resolved contexts are put in front of the request's lookup chain for the
// lifetime of the request only.
package layers

import (
	"context"
	"net/http"

	"flywheel/pkg/platform/httputil"
	"flywheel/pkg/platform/strings"
	"flywheel/pkg/requestcontext"
)

// Header carries the comma separated layer names.
const Header = "X-Flywheel-Layers"

// Binder installs named layers on a context. Unknown names are an error.
type Binder interface {
	Bind(ctx context.Context, names []string) (context.Context, error)
}

// Middleware binds the layers named in the request header through b. Requests
// naming an unknown layer are rejected.
func Middleware(b Binder) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			names := strings.SplitList(r.Header.Get(Header))
			ctx, err := b.Bind(r.Context(), names)
			if err != nil {
				httputil.WriteError(w, err)
				return
			}
			ctx = requestcontext.WithLayers(ctx, names)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
