package domain

import (
	"regexp"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
)

// PhonePattern is the loose phone-number format accepted for customers:
// an optional leading '+', digits, spaces or hyphens, starting and ending
// with a digit.
var PhonePattern = regexp.MustCompile(`^\+?\d[\d\s-]+\d$`)

// Column limits of the customers table, in characters
const (
	MaxNameLength  = 255
	MaxEmailLength = 254
	MaxPhoneLength = 20
)

// Customer represents a CRM customer
type Customer struct {
	ID        uuid.UUID `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	Email     string    `json:"email" db:"email"`
	Phone     *string   `json:"phone,omitempty" db:"phone"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// CustomerInput is the data accepted when creating a customer
type CustomerInput struct {
	Name  string  `json:"name" validate:"required"`
	Email string  `json:"email" validate:"required"`
	Phone *string `json:"phone,omitempty"`
}

// ValidPhone reports whether phone matches PhonePattern and fits the
// phone column.
func ValidPhone(phone string) bool {
	return utf8.RuneCountInString(phone) <= MaxPhoneLength && PhonePattern.MatchString(phone)
}
