package layers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	dErrors "flywheel/pkg/domain-errors"
	"flywheel/pkg/requestcontext"
)

type bindKey struct{}

type binderFunc func(ctx context.Context, names []string) (context.Context, error)

func (f binderFunc) Bind(ctx context.Context, names []string) (context.Context, error) {
	return f(ctx, names)
}

func TestMiddleware(t *testing.T) {
	binder := binderFunc(func(ctx context.Context, names []string) (context.Context, error) {
		for _, n := range names {
			if n == "missing" {
				return nil, dErrors.New(dErrors.CodeNotFound, "unknown layer missing")
			}
		}
		return context.WithValue(ctx, bindKey{}, len(names)), nil
	})

	t.Run("binds header layers", func(t *testing.T) {
		var bound int
		var names []string
		h := Middleware(binder)(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
			bound, _ = r.Context().Value(bindKey{}).(int)
			names = requestcontext.Layers(r.Context())
		}))

		req := httptest.NewRequest(http.MethodGet, "/greet/Teague", nil)
		req.Header.Set(Header, "holiday, beta, holiday")
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, 2, bound)
		assert.Equal(t, []string{"holiday", "beta"}, names)
	})

	t.Run("no header still binds", func(t *testing.T) {
		called := false
		h := Middleware(binder)(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
			called = true
			assert.Nil(t, requestcontext.Layers(r.Context()))
		}))
		h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
		assert.True(t, called)
	})

	t.Run("unknown layer is rejected", func(t *testing.T) {
		h := Middleware(binder)(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
			t.Fatal("handler must not run")
		}))
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set(Header, "missing")
		rr := httptest.NewRecorder()
		h.ServeHTTP(rr, req)

		assert.Equal(t, http.StatusNotFound, rr.Code)
	})
}
