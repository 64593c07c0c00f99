package session_test

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/jrsteele09/solar-dashboard/session"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func TestRedisStore(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	store := session.NewRedisStore(client, "")

	_, ok, err := store.Get(ctx, session.AccessTokenKey)
	require.NoError(t, err)
	require.False(t, ok)

	require.NoError(t, store.Set(ctx, session.AccessTokenKey, "AT1"))
	require.NoError(t, store.Set(ctx, session.UsernameKey, "alice"))

	got, err := mr.Get("solar:session:access_token")
	require.NoError(t, err)
	require.Equal(t, "AT1", got)

	v, ok, err := store.Get(ctx, session.UsernameKey)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "alice", v)

	require.NoError(t, store.Delete(ctx, session.Keys...))
	require.False(t, mr.Exists("solar:session:access_token"))
	require.False(t, mr.Exists("solar:session:username"))
	require.NoError(t, store.Delete(ctx))
}

func TestDialRedis(t *testing.T) {
	mr := miniredis.RunT(t)
	client, err := session.DialRedis(context.Background(), mr.Addr(), "")
	require.NoError(t, err)
	require.NoError(t, client.Close())

	mr.Close()
	_, err = session.DialRedis(context.Background(), mr.Addr(), "")
	require.Error(t, err)
}
