package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/saaskit/internal/config"
)

type entry struct {
	Plan   string `json:"plan"`
	Active bool   `json:"active"`
}

func newTestCache(t *testing.T, prefix string) (*Cache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	c, err := New(context.Background(), config.Redis{Addr: mr.Addr(), KeyPrefix: prefix})
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	return c, mr
}

func TestCache_RoundTripWithPrefix(t *testing.T) {
	c, mr := newTestCache(t, "saaskit:")
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "plan:42", entry{Plan: "pro", Active: true}, time.Minute))
	assert.True(t, mr.Exists("saaskit:plan:42"))
	assert.False(t, mr.Exists("plan:42"))

	var got entry
	found, err := c.Get(ctx, "plan:42", &got)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, entry{Plan: "pro", Active: true}, got)
}

func TestCache_Get(t *testing.T) {
	tests := []struct {
		name      string
		prepare   func(mr *miniredis.Miniredis)
		wantFound bool
		wantErr   bool
	}{
		{name: "missing key", prepare: func(_ *miniredis.Miniredis) {}},
		{
			name: "expired",
			prepare: func(mr *miniredis.Miniredis) {
				require.NoError(t, mr.Set("k", "true"))
				mr.SetTTL("k", 30*time.Second)
				mr.FastForward(31 * time.Second)
			},
		},
		{
			name:    "not json",
			prepare: func(mr *miniredis.Miniredis) { require.NoError(t, mr.Set("k", "not-json")) },
			wantErr: true,
		},
		{
			name:      "stored",
			prepare:   func(mr *miniredis.Miniredis) { require.NoError(t, mr.Set("k", "true")) },
			wantFound: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, mr := newTestCache(t, "")
			tt.prepare(mr)

			var out bool
			found, err := c.Get(context.Background(), "k", &out)
			assert.Equal(t, tt.wantFound, found)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestCache_InvalidateMany(t *testing.T) {
	c, mr := newTestCache(t, "p:")
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, "a", 1, time.Minute))
	require.NoError(t, c.Set(ctx, "b", 2, time.Minute))
	require.NoError(t, c.Invalidate(ctx, "a", "b", "never-set"))
	assert.False(t, mr.Exists("p:a"))
	assert.False(t, mr.Exists("p:b"))

	assert.NoError(t, c.Invalidate(ctx))
}

func TestNew_Unreachable(t *testing.T) {
	c, err := New(context.Background(), config.Redis{Addr: "127.0.0.1:1", DialTimeout: 200 * time.Millisecond})
	assert.Nil(t, c)
	assert.Error(t, err)
}
