package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/Leganyst/samara-beach/internal/cache"
	"github.com/Leganyst/samara-beach/internal/metrics"
	"github.com/Leganyst/samara-beach/internal/model"
	"github.com/Leganyst/samara-beach/internal/repository"
	"github.com/Leganyst/samara-beach/internal/samara"
)

// ListResult — страница бронирований и общее их количество.
type ListResult = cache.ListPage

// BookingService — обработчики создания, чтения, изменения и удаления
// бронирований. Каждый вызов делает не больше одной операции с хранилищем.
type BookingService struct {
	repo      repository.BookingRepository
	listCache cache.ListCache
	validator *samara.Validator
	logger    *slog.Logger
}

func NewBookingService(
	repo repository.BookingRepository,
	listCache cache.ListCache,
	validator *samara.Validator,
	logger *slog.Logger,
) *BookingService {
	if listCache == nil {
		listCache = cache.Noop{}
	}
	if validator == nil {
		validator = samara.NewValidator()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &BookingService{
		repo:      repo,
		listCache: listCache,
		validator: validator,
		logger:    logger,
	}
}

// Create validates fields and inserts a new booking.
func (s *BookingService) Create(ctx context.Context, fields samara.Fields) Result {
	bf, errs, err := s.prepare(fields)
	if errs != nil {
		return s.done("create", Result{Outcome: OutcomeInvalid, Errors: errs})
	}
	if err != nil {
		s.logger.Warn("create booking: payload rejected", "error", err)
		return s.done("create", Result{Outcome: OutcomeFailed, Message: MsgCreateFailed})
	}

	b := &model.SamaraBooking{}
	b.Apply(bf)
	if err := s.repo.Create(ctx, b); err != nil {
		s.logger.Error("create booking", "error", err)
		return s.done("create", Result{Outcome: OutcomeFailed, Message: MsgCreateFailed})
	}

	s.invalidate(ctx)
	s.logger.Info("booking created", "id", b.ID)
	return s.done("create", Result{Outcome: OutcomeOK, Booking: b})
}

// Update validates fields and replaces every mutable field of booking id.
// A missing id is a storage failure.
func (s *BookingService) Update(ctx context.Context, id string, fields samara.Fields) Result {
	bf, errs, err := s.prepare(fields)
	if errs != nil {
		return s.done("update", Result{Outcome: OutcomeInvalid, Errors: errs})
	}
	if err != nil {
		s.logger.Warn("update booking: payload rejected", "id", id, "error", err)
		return s.done("update", Result{Outcome: OutcomeFailed, Message: MsgUpdateFailed})
	}

	if err := s.repo.Update(ctx, id, bf); err != nil {
		s.logger.Error("update booking", "id", id, "error", err)
		return s.done("update", Result{Outcome: OutcomeFailed, Message: MsgUpdateFailed})
	}

	s.invalidate(ctx)
	s.logger.Info("booking updated", "id", id)
	return s.done("update", Result{Outcome: OutcomeOK})
}

// Delete removes booking id. Deleting a missing id fails; it is not idempotent.
func (s *BookingService) Delete(ctx context.Context, id string) Result {
	if err := s.repo.Delete(ctx, id); err != nil {
		s.logger.Error("delete booking", "id", id, "error", err)
		return s.done("delete", Result{Outcome: OutcomeFailed, Message: MsgDeleteFailed(id)})
	}

	s.invalidate(ctx)
	s.logger.Info("booking deleted", "id", id)
	return s.done("delete", Result{Outcome: OutcomeOK})
}

// List returns take bookings after skip, newest first, with the total count.
// take <= 0 falls back to samara.DefaultPageSize.
func (s *BookingService) List(ctx context.Context, take, skip int) (*ListResult, error) {
	if take <= 0 {
		take = samara.DefaultPageSize
	}
	if skip < 0 {
		skip = 0
	}

	page, gen, hit, cacheErr := s.listCache.Get(ctx, take, skip)
	switch {
	case cacheErr != nil:
		s.logger.Warn("list cache get", "error", cacheErr)
	case hit:
		metrics.ListCache.WithLabelValues("hit").Inc()
		metrics.BookingOperations.WithLabelValues("list", OutcomeOK.String()).Inc()
		return page, nil
	}
	metrics.ListCache.WithLabelValues("miss").Inc()

	bookings, total, err := s.repo.List(ctx, take, skip)
	if err != nil {
		s.logger.Error("list bookings", "take", take, "skip", skip, "error", err)
		metrics.BookingOperations.WithLabelValues("list", OutcomeFailed.String()).Inc()
		return nil, &StorageError{Op: "list", Message: MsgListFailed, Err: err}
	}
	if bookings == nil {
		bookings = []model.SamaraBooking{}
	}

	page = &ListResult{Bookings: bookings, TotalCount: total}
	// без поколения из Get кэш не заполняем
	if cacheErr == nil {
		if err := s.listCache.Set(ctx, gen, take, skip, page); err != nil {
			s.logger.Warn("list cache set", "error", err)
		}
	}
	metrics.BookingOperations.WithLabelValues("list", OutcomeOK.String()).Inc()
	return page, nil
}

// GetByID returns the booking, or nil without an error when it does not exist.
func (s *BookingService) GetByID(ctx context.Context, id string) (*model.SamaraBooking, error) {
	b, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrBookingNotFound) {
			metrics.BookingOperations.WithLabelValues("get", "not_found").Inc()
			return nil, nil
		}
		s.logger.Error("fetch booking", "id", id, "error", err)
		metrics.BookingOperations.WithLabelValues("get", OutcomeFailed.String()).Inc()
		return nil, &StorageError{Op: "get", Message: MsgGetFailed, Err: err}
	}
	metrics.BookingOperations.WithLabelValues("get", OutcomeOK.String()).Inc()
	return b, nil
}

// prepare: приведение → валидация → поля для хранилища. Ненулевой errs
// означает ошибку валидации; err — счётчик, который не ляжет в целочисленную
// колонку (так же его отверг бы сам столбец).
func (s *BookingService) prepare(fields samara.Fields) (model.BookingFields, samara.FieldErrors, error) {
	p, errs := s.validator.Validate(samara.Coerce(fields))
	if errs != nil {
		return model.BookingFields{}, errs, nil
	}
	members, err := samara.WholeCount(p.MembersCount)
	if err != nil {
		return model.BookingFields{}, nil, err
	}
	below, err := samara.WholeCount(p.BelowTwoYearsCount)
	if err != nil {
		return model.BookingFields{}, nil, err
	}
	return model.BookingFields{
		Name:               p.Name,
		Email:              p.Email,
		Phone:              p.Phone,
		MembersCount:       members,
		BelowTwoYearsCount: below,
		Date:               p.Date,
	}, nil, nil
}

// invalidate сбрасывает кэш списка. Ошибка кэша не отменяет уже сохранённое
// изменение, поэтому только логируется.
func (s *BookingService) invalidate(ctx context.Context) {
	if err := s.listCache.Invalidate(ctx); err != nil {
		s.logger.Warn("list cache invalidate", "error", err)
	}
}

func (s *BookingService) done(op string, r Result) Result {
	metrics.BookingOperations.WithLabelValues(op, r.Outcome.String()).Inc()
	return r
}
