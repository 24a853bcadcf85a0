package requestcontext

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAccessorsDefaultToZero(t *testing.T) {
	ctx := context.Background()
	assert.Empty(t, RequestID(ctx))
	assert.Empty(t, ClientIP(ctx))
	assert.Empty(t, UserAgent(ctx))
	assert.Empty(t, ClientFamily(ctx))
	assert.Nil(t, Layers(ctx))
}

func TestAccessorsRoundTrip(t *testing.T) {
	ctx := WithRequestID(context.Background(), "req-1")
	ctx = WithClientMetadata(ctx, "10.0.0.1", "curl/8.0")
	ctx = WithClientFamily(ctx, "curl")

	assert.Equal(t, "req-1", RequestID(ctx))
	assert.Equal(t, "10.0.0.1", ClientIP(ctx))
	assert.Equal(t, "curl/8.0", UserAgent(ctx))
	assert.Equal(t, "curl", ClientFamily(ctx))
}

func TestLayersAreCopied(t *testing.T) {
	in := []string{"holiday", "beta"}
	ctx := WithLayers(context.Background(), in)
	in[0] = "changed"

	got := Layers(ctx)
	assert.Equal(t, []string{"holiday", "beta"}, got)
	got[1] = "changed"
	assert.Equal(t, []string{"holiday", "beta"}, Layers(ctx))
}
