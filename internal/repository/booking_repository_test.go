package repository

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/Leganyst/samara-beach/internal/model"
)

// stepClock выдаёт строго возрастающее время, чтобы порядок created_at был
// однозначным даже при быстрой вставке.
type stepClock struct {
	mu  sync.Mutex
	cur time.Time
}

func newStepClock() *stepClock {
	return &stepClock{cur: time.Date(2024, 1, 1, 8, 0, 0, 0, time.UTC)}
}

func (c *stepClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.cur = c.cur.Add(time.Second)
	return c.cur
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	return newTestDBWithClock(t, newStepClock().Now)
}

func newTestDBWithClock(t *testing.T, now func() time.Time) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:  gormlogger.Default.LogMode(gormlogger.Silent),
		NowFunc: now,
	})
	require.NoError(t, err, "open sqlite")

	sqlDB, err := db.DB()
	require.NoError(t, err)
	// :memory: живёт в пределах одного соединения.
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, model.AutoMigrate(db), "migrate")
	return db
}

func sampleFields(name string) model.BookingFields {
	return model.BookingFields{
		Name:               name,
		Email:              "guest@example.com",
		Phone:              "01234567890",
		MembersCount:       2,
		BelowTwoYearsCount: 0,
		Date:               time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC),
	}
}

func newBooking(f model.BookingFields) *model.SamaraBooking {
	b := &model.SamaraBooking{}
	b.Apply(f)
	return b
}

// repositories возвращает обе реализации, чтобы гонять одни и те же сценарии.
func repositories(t *testing.T) map[string]BookingRepository {
	clock := newStepClock()
	return map[string]BookingRepository{
		"gorm":   NewGormBookingRepository(newTestDB(t)),
		"memory": NewMemoryBookingRepository(WithClock(clock.Now)),
	}
}

func TestBookingRepository_CreateAndGet(t *testing.T) {
	for name, repo := range repositories(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			b := newBooking(sampleFields("Jane Doe"))

			require.NoError(t, repo.Create(ctx, b))
			require.NotEqual(t, uuid.Nil, b.ID)
			require.False(t, b.CreatedAt.IsZero())

			got, err := repo.GetByID(ctx, b.ID.String())
			require.NoError(t, err)
			assert.Equal(t, b.ID, got.ID)
			assert.Equal(t, "Jane Doe", got.Name)
			assert.Equal(t, "guest@example.com", got.Email)
			assert.Equal(t, "01234567890", got.Phone)
			assert.Equal(t, 2, got.MembersCount)
			assert.Equal(t, 0, got.BelowTwoYearsCount)
			assert.Equal(t, "2024-06-01", got.DateString())
			assert.True(t, b.CreatedAt.Equal(got.CreatedAt), "createdAt %v != %v", b.CreatedAt, got.CreatedAt)
		})
	}
}

func TestBookingRepository_LongValuesRoundTrip(t *testing.T) {
	for name, repo := range repositories(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			f := sampleFields(strings.Repeat("N", 300))
			f.Email = strings.Repeat("e", 290) + "@example.com"
			f.Phone = "+7 " + strings.Repeat("9", 40)

			b := newBooking(f)
			require.NoError(t, repo.Create(ctx, b))

			got, err := repo.GetByID(ctx, b.ID.String())
			require.NoError(t, err)
			assert.Equal(t, f.Name, got.Name)
			assert.Equal(t, f.Email, got.Email)
			assert.Equal(t, f.Phone, got.Phone)
		})
	}
}

func TestBookingRepository_GetMissing(t *testing.T) {
	for name, repo := range repositories(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			_, err := repo.GetByID(ctx, uuid.NewString())
			require.ErrorIs(t, err, ErrBookingNotFound)

			_, err = repo.GetByID(ctx, "not-a-uuid")
			require.ErrorIs(t, err, ErrBookingNotFound)
		})
	}
}

func TestBookingRepository_ListPagesNewestFirst(t *testing.T) {
	for name, repo := range repositories(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			for i := 0; i < 15; i++ {
				require.NoError(t, repo.Create(ctx, newBooking(sampleFields(fmt.Sprintf("Guest %02d", i)))))
			}

			first, total, err := repo.List(ctx, 10, 0)
			require.NoError(t, err)
			assert.EqualValues(t, 15, total)
			require.Len(t, first, 10)
			for i, b := range first {
				assert.Equal(t, fmt.Sprintf("Guest %02d", 14-i), b.Name)
			}

			second, total, err := repo.List(ctx, 10, 10)
			require.NoError(t, err)
			assert.EqualValues(t, 15, total)
			require.Len(t, second, 5)
			for i, b := range second {
				assert.Equal(t, fmt.Sprintf("Guest %02d", 4-i), b.Name)
			}

			empty, total, err := repo.List(ctx, 10, 20)
			require.NoError(t, err)
			assert.EqualValues(t, 15, total)
			assert.Empty(t, empty)
		})
	}
}

func TestGormBookingRepository_EqualCreatedAtPagesAreStable(t *testing.T) {
	fixed := time.Date(2024, 1, 1, 8, 0, 0, 0, time.UTC)
	repo := NewGormBookingRepository(newTestDBWithClock(t, func() time.Time { return fixed }))
	ctx := context.Background()

	for i := 0; i < 15; i++ {
		require.NoError(t, repo.Create(ctx, newBooking(sampleFields(fmt.Sprintf("Guest %02d", i)))))
	}

	seen := map[uuid.UUID]bool{}
	var ids []string
	for _, skip := range []int{0, 10} {
		page, total, err := repo.List(ctx, 10, skip)
		require.NoError(t, err)
		assert.EqualValues(t, 15, total)
		for _, b := range page {
			require.False(t, seen[b.ID], "booking %s appears on two pages", b.ID)
			seen[b.ID] = true
			ids = append(ids, b.ID.String())
		}
	}
	require.Len(t, seen, 15)

	// при равном created_at порядок задаёт id по убыванию
	for i := 1; i < len(ids); i++ {
		assert.Greater(t, ids[i-1], ids[i])
	}
}

func TestBookingRepository_UpdateReplacesAllFields(t *testing.T) {
	for name, repo := range repositories(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			b := newBooking(sampleFields("Jane Doe"))
			require.NoError(t, repo.Create(ctx, b))

			upd := model.BookingFields{
				Name:               "Jane Smith",
				Email:              "smith@example.com",
				Phone:              "09876543210",
				MembersCount:       0,
				BelowTwoYearsCount: 3,
				Date:               time.Date(2024, 8, 20, 0, 0, 0, 0, time.UTC),
			}
			require.NoError(t, repo.Update(ctx, b.ID.String(), upd))

			got, err := repo.GetByID(ctx, b.ID.String())
			require.NoError(t, err)
			assert.Equal(t, b.ID, got.ID)
			assert.True(t, b.CreatedAt.Equal(got.CreatedAt), "createdAt must not change")
			assert.Equal(t, "Jane Smith", got.Name)
			assert.Equal(t, "smith@example.com", got.Email)
			assert.Equal(t, "09876543210", got.Phone)
			assert.Equal(t, 0, got.MembersCount)
			assert.Equal(t, 3, got.BelowTwoYearsCount)
			assert.Equal(t, "2024-08-20", got.DateString())
		})
	}
}

func TestBookingRepository_UpdateMissing(t *testing.T) {
	for name, repo := range repositories(t) {
		t.Run(name, func(t *testing.T) {
			err := repo.Update(context.Background(), uuid.NewString(), sampleFields("Nobody Here"))
			require.ErrorIs(t, err, ErrBookingNotFound)
		})
	}
}

func TestBookingRepository_Delete(t *testing.T) {
	for name, repo := range repositories(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			b := newBooking(sampleFields("Jane Doe"))
			require.NoError(t, repo.Create(ctx, b))

			require.NoError(t, repo.Delete(ctx, b.ID.String()))

			_, err := repo.GetByID(ctx, b.ID.String())
			require.ErrorIs(t, err, ErrBookingNotFound)

			// Повторное удаление — ошибка, а не молчаливый успех.
			require.ErrorIs(t, repo.Delete(ctx, b.ID.String()), ErrBookingNotFound)
			require.ErrorIs(t, repo.Delete(ctx, "garbage"), ErrBookingNotFound)
		})
	}
}

func TestMemoryBookingRepository_CancelledContext(t *testing.T) {
	repo := NewMemoryBookingRepository()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	require.ErrorIs(t, repo.Create(ctx, newBooking(sampleFields("Jane Doe"))), context.Canceled)
	_, _, err := repo.List(ctx, 10, 0)
	require.ErrorIs(t, err, context.Canceled)
}
