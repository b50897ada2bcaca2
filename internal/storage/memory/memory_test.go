package memory

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/checkout-bridge/internal/models"
)

func TestStore_GetMissing(t *testing.T) {
	s := New()

	sub, found, err := s.Get(context.Background(), "nobody")
	require.NoError(t, err)
	assert.False(t, found)
	assert.Equal(t, models.Subscriber{}, sub)
}

func TestStore_PutOverwrites(t *testing.T) {
	s := New()
	ctx := context.Background()
	exp := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

	require.NoError(t, s.Put(ctx, models.Subscriber{UserID: "u1", SubscriptionStatus: models.StatusFree}))
	require.NoError(t, s.Put(ctx, models.Subscriber{
		UserID:                "u1",
		SubscriptionStatus:    models.StatusActive,
		SubscriptionExpiresAt: &exp,
		LastInitReference:     "ref-1",
	}))

	sub, found, err := s.Get(ctx, "u1")
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, models.StatusActive, sub.SubscriptionStatus)
	assert.Equal(t, "ref-1", sub.LastInitReference)
	assert.Equal(t, exp, *sub.SubscriptionExpiresAt)
	assert.Equal(t, 1, s.Len())
}

func TestStore_ReturnsCopies(t *testing.T) {
	s := New()
	ctx := context.Background()
	exp := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)

	in := models.Subscriber{UserID: "u1", SubscriptionStatus: models.StatusActive, SubscriptionExpiresAt: &exp}
	require.NoError(t, s.Put(ctx, in))
	*in.SubscriptionExpiresAt = exp.Add(time.Hour)

	got, _, err := s.Get(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, exp, *got.SubscriptionExpiresAt)

	*got.SubscriptionExpiresAt = exp.Add(2 * time.Hour)
	again, _, err := s.Get(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, exp, *again.SubscriptionExpiresAt)
}

func TestStore_CanceledContext(t *testing.T) {
	s := New()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, _, err := s.Get(ctx, "u1")
	assert.ErrorIs(t, err, context.Canceled)
	assert.ErrorIs(t, s.Put(ctx, models.Subscriber{UserID: "u1"}), context.Canceled)
}

func TestStore_ConcurrentAccess(t *testing.T) {
	s := New()
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		i := i
		wg.Add(2)
		go func() {
			defer wg.Done()
			_ = s.Put(ctx, models.Subscriber{UserID: fmt.Sprintf("u%d", i%10), SubscriptionStatus: models.StatusActive})
		}()
		go func() {
			defer wg.Done()
			_, _, _ = s.Get(ctx, fmt.Sprintf("u%d", i%10))
		}()
	}
	wg.Wait()

	assert.Equal(t, 10, s.Len())
}
