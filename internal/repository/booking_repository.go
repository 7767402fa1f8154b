package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Leganyst/samara-beach/internal/model"
)

// ErrBookingNotFound — записи с таким ID нет (или ID не является UUID).
var ErrBookingNotFound = errors.New("booking not found")

type BookingRepository interface {
	// Создать новое бронирование; ID и CreatedAt выставляются здесь.
	Create(ctx context.Context, booking *model.SamaraBooking) error
	// Получить бронирование по ID.
	GetByID(ctx context.Context, id string) (*model.SamaraBooking, error)
	// Полностью заменить изменяемые поля бронирования.
	Update(ctx context.Context, id string, fields model.BookingFields) error
	// Удалить бронирование.
	Delete(ctx context.Context, id string) error
	// Страница бронирований, новые сверху, плюс общее количество.
	List(ctx context.Context, limit, offset int) ([]model.SamaraBooking, int64, error)
}

// Реализация на GORM.
type GormBookingRepository struct {
	db *gorm.DB
}

func NewGormBookingRepository(db *gorm.DB) *GormBookingRepository {
	return &GormBookingRepository{db: db}
}

func (r *GormBookingRepository) Create(ctx context.Context, booking *model.SamaraBooking) error {
	return r.db.WithContext(ctx).Create(booking).Error
}

func (r *GormBookingRepository) GetByID(ctx context.Context, id string) (*model.SamaraBooking, error) {
	uid, err := uuid.Parse(id)
	if err != nil {
		return nil, ErrBookingNotFound
	}
	var b model.SamaraBooking
	if err := r.db.WithContext(ctx).First(&b, "id = ?", uid).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBookingNotFound
		}
		return nil, err
	}
	return &b, nil
}

func (r *GormBookingRepository) Update(ctx context.Context, id string, fields model.BookingFields) error {
	uid, err := uuid.Parse(id)
	if err != nil {
		return ErrBookingNotFound
	}
	tx := r.db.WithContext(ctx).
		Model(&model.SamaraBooking{}).
		Where("id = ?", uid).
		Updates(fields.Columns())
	if tx.Error != nil {
		return tx.Error
	}
	if tx.RowsAffected == 0 {
		return ErrBookingNotFound
	}
	return nil
}

func (r *GormBookingRepository) Delete(ctx context.Context, id string) error {
	uid, err := uuid.Parse(id)
	if err != nil {
		return ErrBookingNotFound
	}
	tx := r.db.WithContext(ctx).Delete(&model.SamaraBooking{}, "id = ?", uid)
	if tx.Error != nil {
		return tx.Error
	}
	if tx.RowsAffected == 0 {
		return ErrBookingNotFound
	}
	return nil
}

func (r *GormBookingRepository) List(ctx context.Context, limit, offset int) ([]model.SamaraBooking, int64, error) {
	var (
		bookings []model.SamaraBooking
		total    int64
	)

	q := r.db.WithContext(ctx).Model(&model.SamaraBooking{})

	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if offset < 0 {
		offset = 0
	}
	if limit > 0 {
		q = q.Limit(limit).Offset(offset)
	} else if offset > 0 {
		q = q.Offset(offset)
	}

	// id — второй ключ, чтобы записи с одинаковым created_at не менялись
	// местами между страницами
	if err := q.Order("created_at DESC").Order("id DESC").Find(&bookings).Error; err != nil {
		return nil, 0, err
	}

	return bookings, total, nil
}
