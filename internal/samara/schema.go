// Package samara holds the booking form schema: coercion of raw form input,
// field validation and paging helpers shared by the service and web layers.
package samara

import (
	"errors"
	"fmt"
	"math"
	"reflect"
	"strings"
	"time"

	"github.com/araddon/dateparse"
	"github.com/go-playground/validator/v10"
)

const (
	FieldName               = "name"
	FieldEmail              = "email"
	FieldPhone              = "phone"
	FieldMembersCount       = "membersCount"
	FieldBelowTwoYearsCount = "belowTwoYearsCount"
	FieldDate               = "date"
)

// ErrCountNotWhole is returned when a guest count that passed validation
// cannot be stored as an integer column.
var ErrCountNotWhole = errors.New("guest count is not a whole number")

// FieldErrors maps a field name to its violation messages in the order they
// were found. Callers show only the first one.
type FieldErrors map[string][]string

// First returns the first message for field or "".
func (e FieldErrors) First(field string) string {
	if msgs := e[field]; len(msgs) > 0 {
		return msgs[0]
	}
	return ""
}

func (e FieldErrors) add(field, msg string) {
	e[field] = append(e[field], msg)
}

// Payload — данные бронирования после успешной валидации.
type Payload struct {
	Name               string
	Email              string
	Phone              string
	MembersCount       float64
	BelowTwoYearsCount float64
	Date               time.Time
}

// Validator проверяет RawBooking. Без WithStrict правила совпадают с исходной
// формой: только длины строк, разбор даты и числовые счётчики.
type Validator struct {
	validate *validator.Validate
	strict   bool
}

type Option func(*Validator)

// WithStrict additionally requires a well-formed email and non-negative whole
// guest counts.
func WithStrict(strict bool) Option {
	return func(v *Validator) { v.strict = strict }
}

func NewValidator(opts ...Option) *Validator {
	validate := validator.New(validator.WithRequiredStructEnabled())
	validate.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	// Ошибка регистрации возможна только для зарезервированных имён тегов.
	_ = validate.RegisterValidation("js_number", func(fl validator.FieldLevel) bool {
		return !math.IsNaN(fl.Field().Float())
	})
	_ = validate.RegisterValidation("calendar_date", func(fl validator.FieldLevel) bool {
		_, err := ParseDate(fl.Field().String())
		return err == nil
	})
	_ = validate.RegisterValidation("whole", func(fl validator.FieldLevel) bool {
		f := fl.Field().Float()
		return !math.IsInf(f, 0) && f == math.Trunc(f)
	})

	v := &Validator{validate: validate}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// Strict reports whether the tightened rules are enabled.
func (v *Validator) Strict() bool { return v.strict }

// Validate returns the typed payload, or a non-nil FieldErrors describing
// every violated field. It has no side effects.
func (v *Validator) Validate(raw RawBooking) (Payload, FieldErrors) {
	errs := FieldErrors{}

	if err := v.validate.Struct(raw); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			for _, fe := range verrs {
				errs.add(fe.Field(), message(fe))
			}
		}
	}

	if v.strict {
		v.strictChecks(raw, errs)
	}

	if len(errs) > 0 {
		return Payload{}, errs
	}

	date, _ := ParseDate(*raw.Date)
	return Payload{
		Name:               *raw.Name,
		Email:              *raw.Email,
		Phone:              *raw.Phone,
		MembersCount:       raw.MembersCount,
		BelowTwoYearsCount: raw.BelowTwoYearsCount,
		Date:               date,
	}, nil
}

func (v *Validator) strictChecks(raw RawBooking, errs FieldErrors) {
	if _, failed := errs[FieldEmail]; !failed && raw.Email != nil {
		v.checkVar(errs, FieldEmail, *raw.Email, "email")
	}
	counts := []struct {
		field string
		value float64
	}{
		{FieldMembersCount, raw.MembersCount},
		{FieldBelowTwoYearsCount, raw.BelowTwoYearsCount},
	}
	for _, c := range counts {
		if _, failed := errs[c.field]; failed {
			continue
		}
		v.checkVar(errs, c.field, c.value, "gte=0,whole")
	}
}

func (v *Validator) checkVar(errs FieldErrors, field string, value any, tag string) {
	err := v.validate.Var(value, tag)
	if err == nil {
		return
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		for _, fe := range verrs {
			errs.add(field, message(fe))
		}
		return
	}
	errs.add(field, err.Error())
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "Required"
	case "min":
		return fmt.Sprintf("String must contain at least %s character(s)", fe.Param())
	case "js_number":
		return "Expected number, received nan"
	case "calendar_date":
		return "Invalid date format"
	case "email":
		return "Invalid email"
	case "gte":
		return fmt.Sprintf("Number must be greater than or equal to %s", fe.Param())
	case "whole":
		return "Expected integer, received float"
	default:
		return fe.Error()
	}
}

// ParseDate accepts the date spellings a browser's Date.parse understands in
// practice (ISO dates, RFC 3339, "June 1, 2024", "06/01/2024"). Zone-less
// input is read as UTC.
func ParseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, errors.New("empty date")
	}
	t, err := dateparse.ParseIn(s, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse date %q: %w", s, err)
	}
	return t, nil
}

// WholeCount converts a validated count to an int, refusing values that an
// integer column would reject.
func WholeCount(f float64) (int, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) || f > math.MaxInt32 || f < math.MinInt32 {
		return 0, fmt.Errorf("%w: %v", ErrCountNotWhole, f)
	}
	return int(f), nil
}
