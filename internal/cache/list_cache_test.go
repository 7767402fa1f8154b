package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"

	"github.com/Leganyst/samara-beach/internal/model"
)

func newTestCache(t *testing.T) (*RedisListCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisListCache(client, "", 30*time.Second), mr
}

func samplePage() *ListPage {
	return &ListPage{
		Bookings: []model.SamaraBooking{{
			ID:                 uuid.New(),
			Name:               "Jane Doe",
			Email:              "jane@x.com",
			Phone:              "01234567890",
			MembersCount:       2,
			BelowTwoYearsCount: 0,
			Date:               datatypes.Date(time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)),
			CreatedAt:          time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
		}},
		TotalCount: 1,
	}
}

func TestRedisListCache_SetGet(t *testing.T) {
	c, _ := newTestCache(t)
	ctx := context.Background()

	_, gen, ok, err := c.Get(ctx, 10, 0)
	require.NoError(t, err)
	require.False(t, ok, "empty cache must miss")
	require.Zero(t, gen)

	want := samplePage()
	require.NoError(t, c.Set(ctx, gen, 10, 0, want))

	got, _, ok, err := c.Get(ctx, 10, 0)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, want.TotalCount, got.TotalCount)
	require.Len(t, got.Bookings, 1)
	require.Equal(t, want.Bookings[0].ID, got.Bookings[0].ID)
	require.Equal(t, "2024-06-01", got.Bookings[0].DateString())

	// другая страница — промах
	_, _, ok, err = c.Get(ctx, 10, 10)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestRedisListCache_InvalidateDropsAllPages(t *testing.T) {
	c, _ := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, 0, 10, 0, samplePage()))
	require.NoError(t, c.Set(ctx, 0, 10, 10, samplePage()))
	require.NoError(t, c.Invalidate(ctx))

	for _, skip := range []int{0, 10} {
		_, _, ok, err := c.Get(ctx, 10, skip)
		require.NoError(t, err)
		require.False(t, ok, "page skip=%d must be invalidated", skip)
	}

	// после инвалидации новые записи снова читаются
	_, gen, _, err := c.Get(ctx, 10, 0)
	require.NoError(t, err)
	require.EqualValues(t, 1, gen)
	require.NoError(t, c.Set(ctx, gen, 10, 0, samplePage()))
	_, _, ok, err := c.Get(ctx, 10, 0)
	require.NoError(t, err)
	require.True(t, ok)
}

func TestRedisListCache_PageReadBeforeInvalidateIsNotServed(t *testing.T) {
	c, _ := newTestCache(t)
	ctx := context.Background()

	_, gen, ok, err := c.Get(ctx, 10, 0)
	require.NoError(t, err)
	require.False(t, ok)

	// изменение успело завершиться, пока страница читалась из БД
	require.NoError(t, c.Invalidate(ctx))
	require.NoError(t, c.Set(ctx, gen, 10, 0, samplePage()))

	_, cur, ok, err := c.Get(ctx, 10, 0)
	require.NoError(t, err)
	require.False(t, ok, "page from an older generation must not be served")
	require.EqualValues(t, gen+1, cur)
}

func TestRedisListCache_TTL(t *testing.T) {
	c, mr := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, 0, 10, 0, samplePage()))
	mr.FastForward(31 * time.Second)

	_, _, ok, err := c.Get(ctx, 10, 0)
	require.NoError(t, err)
	require.False(t, ok, "page must expire")
}

func TestRedisListCache_CorruptEntryIsMiss(t *testing.T) {
	c, mr := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, mr.Set(c.pageKey(0, 10, 0), "{not json"))

	_, _, ok, err := c.Get(ctx, 10, 0)
	require.NoError(t, err)
	require.False(t, ok)
	require.False(t, mr.Exists(c.pageKey(0, 10, 0)))
}

func TestRedisListCache_Unavailable(t *testing.T) {
	c, mr := newTestCache(t)
	mr.Close()

	_, _, _, err := c.Get(context.Background(), 10, 0)
	require.Error(t, err)
}

func TestNoop(t *testing.T) {
	var c ListCache = Noop{}
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, 0, 10, 0, samplePage()))
	_, _, ok, err := c.Get(ctx, 10, 0)
	require.NoError(t, err)
	require.False(t, ok)
	require.NoError(t, c.Invalidate(ctx))
}
