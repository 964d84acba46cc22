//go:build integration

package session

import (
	"context"
	"os"
	"testing"
	"time"

	"cryptosignals/internal/consts"
	"cryptosignals/internal/signal"

	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedisStore(t *testing.T) {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		t.Skip("REDIS_ADDR not set")
	}
	rc := redis.NewClient(&redis.Options{Addr: addr})
	defer rc.Close()

	s := NewRedisStore(rc)
	ctx := context.Background()
	u := User{ID: 1, Email: "r@example.com", Plan: signal.TierPremium}

	require.NoError(t, s.Save(ctx, "it-sid", u, time.Minute))
	got, err := s.Load(ctx, "it-sid")
	require.NoError(t, err)
	assert.Equal(t, u, got)

	require.NoError(t, s.Save(ctx, "it-sid2", u, time.Minute))
	updated := u
	updated.Plan = signal.TierBasic
	require.NoError(t, s.UpdateUser(ctx, updated))
	got, err = s.Load(ctx, "it-sid2")
	require.NoError(t, err)
	assert.Equal(t, signal.TierBasic, got.Plan)
	assert.Greater(t, rc.TTL(ctx, consts.SessionPrefix+"it-sid2").Val(), time.Duration(0))

	require.NoError(t, s.Delete(ctx, "it-sid"))
	_, err = s.Load(ctx, "it-sid")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, s.DeleteUser(ctx, u.ID))
	_, err = s.Load(ctx, "it-sid2")
	assert.ErrorIs(t, err, ErrNotFound)
}
