package service

import (
	"github.com/Leganyst/samara-beach/internal/model"
	"github.com/Leganyst/samara-beach/internal/samara"
)

// Сообщения для пользователя при ошибках хранилища.
const (
	MsgCreateFailed = "Failed to submit booking. Please try again."
	MsgUpdateFailed = "Failed to update booking. Please try again."
	MsgListFailed   = "Could not find booking list"
	MsgGetFailed    = "Failed to fetch booking."
)

// MsgDeleteFailed — сообщение для неудачного удаления.
func MsgDeleteFailed(id string) string {
	return "Failed to delete booking with ID " + id
}

type Outcome int

const (
	// OutcomeOK: the change is stored and the list cache was invalidated.
	OutcomeOK Outcome = iota
	// OutcomeInvalid: input failed validation, storage was not touched.
	OutcomeInvalid
	// OutcomeFailed: storage rejected the operation.
	OutcomeFailed
)

func (o Outcome) String() string {
	switch o {
	case OutcomeOK:
		return "ok"
	case OutcomeInvalid:
		return "invalid"
	case OutcomeFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Result — итог Create/Update/Delete. Навигацию решает вызывающий слой:
// при OK он переходит к списку, иначе показывает Errors или Message.
type Result struct {
	Outcome Outcome
	Booking *model.SamaraBooking // только для Create
	Errors  samara.FieldErrors
	Message string
}

func (r Result) OK() bool { return r.Outcome == OutcomeOK }

// StorageError is returned by List and GetByID when the store fails. Error()
// is safe to show to the user; the cause is kept for logs.
type StorageError struct {
	Op      string
	Message string
	Err     error
}

func (e *StorageError) Error() string { return e.Message }

func (e *StorageError) Unwrap() error { return e.Err }
