package samara

import (
	"encoding/json"
	"fmt"
	"math"
	"net/url"
	"strconv"
	"strings"
)

// Fields — плоский набор полей формы в том виде, в каком он пришёл от клиента.
type Fields map[string]any

// FieldsFromForm собирает Fields из значений формы. Для повторяющихся ключей
// побеждает последнее значение.
func FieldsFromForm(values url.Values) Fields {
	out := make(Fields, len(values))
	for k, vs := range values {
		if len(vs) == 0 {
			continue
		}
		out[k] = vs[len(vs)-1]
	}
	return out
}

// RawBooking — входные данные валидатора: строки как есть, счётчики уже
// приведены к числам (NaN, если привести не удалось). nil означает, что поле
// не было передано.
type RawBooking struct {
	Name               *string `json:"name" validate:"required,min=6"`
	Email              *string `json:"email" validate:"required,min=6"`
	Phone              *string `json:"phone" validate:"required,min=11"`
	MembersCount       float64 `json:"membersCount" validate:"js_number"`
	BelowTwoYearsCount float64 `json:"belowTwoYearsCount" validate:"js_number"`
	Date               *string `json:"date" validate:"required,calendar_date"`
}

// Coerce приводит поля формы к RawBooking.
func Coerce(f Fields) RawBooking {
	return RawBooking{
		Name:               stringField(f, FieldName),
		Email:              stringField(f, FieldEmail),
		Phone:              stringField(f, FieldPhone),
		MembersCount:       ToNumber(f[FieldMembersCount]),
		BelowTwoYearsCount: ToNumber(f[FieldBelowTwoYearsCount]),
		Date:               stringField(f, FieldDate),
	}
}

func stringField(f Fields, key string) *string {
	v, ok := f[key]
	if !ok || v == nil {
		return nil
	}
	var s string
	switch x := v.(type) {
	case string:
		s = x
	case []string:
		if len(x) == 0 {
			return nil
		}
		s = x[len(x)-1]
	default:
		s = fmt.Sprint(x)
	}
	return &s
}

// ToNumber follows the browser's Number() conversion closely enough for form
// input: blank strings become 0, anything unparsable becomes NaN.
func ToNumber(v any) float64 {
	switch x := v.(type) {
	case nil:
		return math.NaN()
	case float64:
		return x
	case float32:
		return float64(x)
	case int:
		return float64(x)
	case int64:
		return float64(x)
	case json.Number:
		return parseNumber(string(x))
	case bool:
		if x {
			return 1
		}
		return 0
	case string:
		return parseNumber(x)
	case []string:
		if len(x) == 0 {
			return math.NaN()
		}
		return parseNumber(x[len(x)-1])
	default:
		return math.NaN()
	}
}

func parseNumber(s string) float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}
	switch s {
	case "Infinity", "+Infinity":
		return math.Inf(1)
	case "-Infinity":
		return math.Inf(-1)
	}
	// ParseFloat понимает "inf", "nan" и hex-мантиссы, которых нет в форме.
	lower := strings.ToLower(s)
	if strings.Contains(lower, "inf") || strings.Contains(lower, "nan") || strings.Contains(lower, "0x") || strings.Contains(s, "_") {
		return math.NaN()
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return math.NaN()
	}
	return f
}
