package store

import (
	"context"
	"testing"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRedisKVRoundTrip(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	kv := NewRedisKV(client, "")
	ctx := context.Background()

	_, err := kv.Get(ctx, "patients")
	assert.ErrorIs(t, err, ErrKeyNotFound)

	require.NoError(t, kv.Commit(ctx, map[string][]byte{
		"patients":     []byte(`[{"id":"p1"}]`),
		"appointments": []byte(`[]`),
	}))

	got, err := kv.Get(ctx, "patients")
	require.NoError(t, err)
	assert.JSONEq(t, `[{"id":"p1"}]`, string(got))

	raw, err := mr.Get("frontdesk:appointments")
	require.NoError(t, err)
	assert.Equal(t, "[]", raw)
}

func TestRedisKVCustomPrefix(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	kv := NewRedisKV(client, "clinic42:")

	require.NoError(t, kv.Commit(context.Background(), map[string][]byte{"doctors": []byte(`[]`)}))
	assert.True(t, mr.Exists("clinic42:doctors"))
	assert.False(t, mr.Exists("frontdesk:doctors"))
}

func TestRedisKVSurfacesConnectionErrors(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	kv := NewRedisKV(client, "")
	mr.Close()

	_, err := kv.Get(context.Background(), "patients")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrKeyNotFound)
	assert.Error(t, kv.Commit(context.Background(), map[string][]byte{"patients": []byte(`[]`)}))
}
