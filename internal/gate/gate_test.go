package gate

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPermissionMatches(t *testing.T) {
	tests := []struct {
		granted, requested Permission
		want               bool
	}{
		{"*:*", "client:delete", true},
		{"client:*", "client:delete", true},
		{"client:*", "supplier:delete", false},
		{"client:list", "client:list", true},
		{"client:list", "client:view", false},
		{"bogus", "bogus:*", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.granted.Matches(tt.requested), "%s vs %s", tt.granted, tt.requested)
	}

	res, act := NewPermission("intervention", ActionExport).Parse()
	assert.Equal(t, "intervention", res)
	assert.Equal(t, ActionExport, act)
}

func TestGateAuthorize(t *testing.T) {
	r := NewStaticResolver[uint]()
	r.Set(1, NewStaticProfile(1, "admin", PermissionSuperAdmin))
	r.Set(2, NewStaticProfile(2, "lettore", "intervention:list", "intervention:view"))
	g := New[uint](r)
	ctx := context.Background()

	assert.ErrorIs(t, g.Authorize(ctx, 0, ActionList, "intervention"), ErrUnauthorized)
	assert.NoError(t, g.Authorize(ctx, 1, ActionDelete, "supplier"))
	assert.NoError(t, g.Authorize(ctx, 2, ActionView, "intervention"))
	assert.ErrorIs(t, g.Authorize(ctx, 2, ActionUpdate, "intervention"), ErrForbidden)
	assert.ErrorIs(t, g.Authorize(ctx, 3, ActionList, "intervention"), ErrForbidden, "no profile")

	assert.True(t, g.IsSuperAdmin(ctx, 1))
	assert.False(t, g.IsSuperAdmin(ctx, 2))
	assert.False(t, g.IsSuperAdmin(ctx, 0))
}

type countingResolver struct {
	calls atomic.Int32
	err   error
}

func (c *countingResolver) Resolve(context.Context, uint) (Profile, error) {
	c.calls.Add(1)
	if c.err != nil {
		return nil, c.err
	}
	return NewStaticProfile(1, "p"), nil
}

func TestCachedResolver(t *testing.T) {
	inner := &countingResolver{}
	cached := NewCachedResolver[uint](inner, time.Minute)
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	cached.now = func() time.Time { return now }
	ctx := context.Background()

	_, err := cached.Resolve(ctx, 1)
	require.NoError(t, err)
	_, err = cached.Resolve(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, int32(1), inner.calls.Load())

	now = now.Add(2 * time.Minute)
	_, _ = cached.Resolve(ctx, 1)
	assert.Equal(t, int32(2), inner.calls.Load(), "expired entries are refetched")

	cached.Invalidate(1)
	_, _ = cached.Resolve(ctx, 1)
	assert.Equal(t, int32(3), inner.calls.Load())

	cached.InvalidateAll()
	_, _ = cached.Resolve(ctx, 1)
	assert.Equal(t, int32(4), inner.calls.Load())
}

func TestCachedResolverDoesNotCacheErrors(t *testing.T) {
	inner := &countingResolver{err: errors.New("db down")}
	cached := NewCachedResolver[uint](inner, time.Minute)
	_, err := cached.Resolve(context.Background(), 1)
	assert.Error(t, err)
	_, err = cached.Resolve(context.Background(), 1)
	assert.Error(t, err)
	assert.Equal(t, int32(2), inner.calls.Load())
}
