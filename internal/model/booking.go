package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// samara_bookings — бронирования пляжа «Самара».
type SamaraBooking struct {
	ID uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`

	// Верхней границы длины у формы нет, поэтому text, а не varchar(n).
	Name  string `gorm:"type:text;not null" json:"name"`
	Email string `gorm:"type:text;not null" json:"email"`
	Phone string `gorm:"type:text;not null" json:"phone"`

	// Количество гостей и из них детей до двух лет.
	MembersCount       int `gorm:"not null" json:"membersCount"`
	BelowTwoYearsCount int `gorm:"not null" json:"belowTwoYearsCount"`

	// Дата визита без времени — datatypes.Date
	Date datatypes.Date `gorm:"not null" json:"date"`

	// Меняется только при создании; Update её не трогает.
	CreatedAt time.Time `gorm:"not null;index" json:"createdAt"`
}

// BeforeCreate выдаёт ID на стороне приложения, чтобы не зависеть от
// gen_random_uuid() (в SQLite её нет).
func (b *SamaraBooking) BeforeCreate(tx *gorm.DB) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	return nil
}

// DateString — дата в формате YYYY-MM-DD для полей формы.
func (b SamaraBooking) DateString() string {
	return time.Time(b.Date).Format(time.DateOnly)
}

// BookingFields — изменяемые поля бронирования; Update заменяет их целиком.
type BookingFields struct {
	Name               string
	Email              string
	Phone              string
	MembersCount       int
	BelowTwoYearsCount int
	Date               time.Time
}

// Apply переписывает все изменяемые поля, не трогая ID и CreatedAt.
func (b *SamaraBooking) Apply(f BookingFields) {
	b.Name = f.Name
	b.Email = f.Email
	b.Phone = f.Phone
	b.MembersCount = f.MembersCount
	b.BelowTwoYearsCount = f.BelowTwoYearsCount
	b.Date = datatypes.Date(f.Date)
}

// Columns — те же поля в виде map для Updates: нулевые значения тоже пишутся.
func (f BookingFields) Columns() map[string]any {
	return map[string]any{
		"name":                  f.Name,
		"email":                 f.Email,
		"phone":                 f.Phone,
		"members_count":         f.MembersCount,
		"below_two_years_count": f.BelowTwoYearsCount,
		"date":                  datatypes.Date(f.Date),
	}
}
