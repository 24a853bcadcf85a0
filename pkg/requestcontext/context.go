// Package requestcontext provides HTTP-independent context accessors for request-scoped values.
//
// Middleware sets these values; the greeter service and handlers read them
// without importing net/http.
//
//	requestID := requestcontext.RequestID(ctx)
//	client := requestcontext.ClientFamily(ctx)
//	layers := requestcontext.Layers(ctx)
//
// Tests inject values directly:
//
//	ctx = requestcontext.WithClientFamily(ctx, "Firefox")
package requestcontext

import (
	"context"
	"slices"
)

// Context key types (unexported for encapsulation).
type (
	requestIDKey    struct{}
	clientIPKey     struct{}
	userAgentKey    struct{}
	clientFamilyKey struct{}
	layersKey       struct{}
)

// -----------------------------------------------------------------------------
// Client metadata (IP, User-Agent, browser family)
// -----------------------------------------------------------------------------

// ClientIP retrieves the client IP address from the context.
func ClientIP(ctx context.Context) string {
	if ip, ok := ctx.Value(clientIPKey{}).(string); ok {
		return ip
	}
	return ""
}

// UserAgent retrieves the raw User-Agent from the context.
func UserAgent(ctx context.Context) string {
	if ua, ok := ctx.Value(userAgentKey{}).(string); ok {
		return ua
	}
	return ""
}

// WithClientMetadata injects client IP and User-Agent into a context.
func WithClientMetadata(ctx context.Context, clientIP, userAgent string) context.Context {
	ctx = context.WithValue(ctx, clientIPKey{}, clientIP)
	return context.WithValue(ctx, userAgentKey{}, userAgent)
}

// ClientFamily retrieves the browser family derived from the User-Agent, e.g.
// "Firefox". Empty when unknown.
func ClientFamily(ctx context.Context) string {
	if family, ok := ctx.Value(clientFamilyKey{}).(string); ok {
		return family
	}
	return ""
}

// WithClientFamily injects a browser family into the context.
func WithClientFamily(ctx context.Context, family string) context.Context {
	return context.WithValue(ctx, clientFamilyKey{}, family)
}

// -----------------------------------------------------------------------------
// Request metadata
// -----------------------------------------------------------------------------

// RequestID retrieves the request ID from the context.
func RequestID(ctx context.Context) string {
	if requestID, ok := ctx.Value(requestIDKey{}).(string); ok {
		return requestID
	}
	return ""
}

// WithRequestID injects a request ID into the context.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, requestID)
}

// -----------------------------------------------------------------------------
// Dispatch layers
// -----------------------------------------------------------------------------

// Layers returns the names of the collect contexts the request asked to be
// layered in front of the root, most specific first.
func Layers(ctx context.Context) []string {
	if layers, ok := ctx.Value(layersKey{}).([]string); ok {
		return slices.Clone(layers)
	}
	return nil
}

// WithLayers records the requested layer names.
func WithLayers(ctx context.Context, layers []string) context.Context {
	return context.WithValue(ctx, layersKey{}, slices.Clone(layers))
}
