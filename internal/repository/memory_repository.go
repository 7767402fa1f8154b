package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Leganyst/samara-beach/internal/model"
	"github.com/Leganyst/samara-beach/internal/samara"
)

// MemoryBookingRepository keeps bookings in process memory. It backs
// DB_DRIVER=memory for local runs and serves as a test double.
type MemoryBookingRepository struct {
	mu    sync.RWMutex
	now   func() time.Time
	seq   uint64
	store map[uuid.UUID]memoryEntry
}

type memoryEntry struct {
	booking model.SamaraBooking
	seq     uint64
}

type MemoryOption func(*MemoryBookingRepository)

// WithClock подменяет источник времени для CreatedAt.
func WithClock(now func() time.Time) MemoryOption {
	return func(r *MemoryBookingRepository) { r.now = now }
}

func NewMemoryBookingRepository(opts ...MemoryOption) *MemoryBookingRepository {
	r := &MemoryBookingRepository{
		now:   func() time.Time { return time.Now().UTC() },
		store: make(map[uuid.UUID]memoryEntry),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *MemoryBookingRepository) Create(ctx context.Context, booking *model.SamaraBooking) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	if booking.ID == uuid.Nil {
		booking.ID = uuid.New()
	}
	booking.CreatedAt = r.now()
	r.seq++
	r.store[booking.ID] = memoryEntry{booking: *booking, seq: r.seq}
	return nil
}

func (r *MemoryBookingRepository) GetByID(ctx context.Context, id string) (*model.SamaraBooking, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	uid, err := uuid.Parse(id)
	if err != nil {
		return nil, ErrBookingNotFound
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, ok := r.store[uid]
	if !ok {
		return nil, ErrBookingNotFound
	}
	b := e.booking
	return &b, nil
}

func (r *MemoryBookingRepository) Update(ctx context.Context, id string, fields model.BookingFields) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	uid, err := uuid.Parse(id)
	if err != nil {
		return ErrBookingNotFound
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.store[uid]
	if !ok {
		return ErrBookingNotFound
	}
	e.booking.Apply(fields)
	r.store[uid] = e
	return nil
}

func (r *MemoryBookingRepository) Delete(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	uid, err := uuid.Parse(id)
	if err != nil {
		return ErrBookingNotFound
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.store[uid]; !ok {
		return ErrBookingNotFound
	}
	delete(r.store, uid)
	return nil
}

func (r *MemoryBookingRepository) List(ctx context.Context, limit, offset int) ([]model.SamaraBooking, int64, error) {
	if err := ctx.Err(); err != nil {
		return nil, 0, err
	}
	r.mu.RLock()
	entries := make([]memoryEntry, 0, len(r.store))
	for _, e := range r.store {
		entries = append(entries, e)
	}
	r.mu.RUnlock()

	// created_at DESC; при равенстве — порядок вставки.
	sort.Slice(entries, func(i, j int) bool {
		if !entries[i].booking.CreatedAt.Equal(entries[j].booking.CreatedAt) {
			return entries[i].booking.CreatedAt.After(entries[j].booking.CreatedAt)
		}
		return entries[i].seq > entries[j].seq
	})

	page := samara.Slice(entries, limit, offset)
	out := make([]model.SamaraBooking, 0, len(page))
	for _, e := range page {
		out = append(out, e.booking)
	}
	return out, int64(len(entries)), nil
}
