package sessions

import (
	"context"
	"testing"
	"time"

	mr "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func TestBlacklist_RevokeAndExpiry(t *testing.T) {
	m, err := mr.Run()
	require.NoError(t, err)
	defer m.Close()

	client := redis.NewClient(&redis.Options{Addr: m.Addr()})
	bl := NewBlacklist(client, "")

	ctx := context.Background()
	token := "access-token-1"
	require.NoError(t, bl.Revoke(ctx, token, 2*time.Second))

	ok, err := bl.Revoked(ctx, token)
	require.NoError(t, err)
	require.True(t, ok)

	// the entry lapses together with the token's own TTL
	m.FastForward(3 * time.Second)

	ok2, err := bl.Revoked(ctx, token)
	require.NoError(t, err)
	require.False(t, ok2)
}

// A nil blacklist disables revocation without error.
func TestBlacklist_NilIsNoop(t *testing.T) {
	var bl *Blacklist
	ctx := context.Background()
	require.NoError(t, bl.Revoke(ctx, "tok", time.Second))
	ok, err := bl.Revoked(ctx, "tok")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestService_RevocationRoundTrip(t *testing.T) {
	m, err := mr.Run()
	require.NoError(t, err)
	defer m.Close()
	client := redis.NewClient(&redis.Options{Addr: m.Addr()})

	svc := NewService(NewMemoryRepository())
	ctx := context.Background()

	// without a blacklist configured revocation is a no-op
	require.NoError(t, svc.RevokeAccessToken(ctx, "tok", time.Minute))
	ok, err := svc.AccessTokenRevoked(ctx, "tok")
	require.NoError(t, err)
	require.False(t, ok)

	svc.UseBlacklist(NewBlacklist(client, ""))
	require.NoError(t, svc.RevokeAccessToken(ctx, "tok", time.Minute))
	ok, err = svc.AccessTokenRevoked(ctx, "tok")
	require.NoError(t, err)
	require.True(t, ok)
}
