package service

import (
	"strings"

	"crm/internal/domain"

	"github.com/google/uuid"
)

// Rejection messages returned in mutation payloads
const (
	MsgEmailExists       = "Email already exists"
	MsgInvalidPhone      = "Phone number format is invalid"
	MsgNameRequired      = "Name is required"
	MsgEmailRequired     = "Email is required"
	MsgNameTooLong       = "Name must be at most 255 characters"
	MsgEmailTooLong      = "Email must be at most 254 characters"
	MsgCustomerNotStored = "Customer could not be stored"
	MsgPriceScale        = "Price must have at most 2 decimal places"
	MsgPriceTooLarge     = "Price must be less than 100000000"
	MsgStockTooLarge     = "Stock must be at most 2147483647"
	MsgPriceNotPositive  = "Price must be positive"
	MsgNegativeStock     = "Stock cannot be negative"
	MsgNoProducts        = "At least one valid product must be selected"
	MsgInvalidCustomer   = "Invalid customer ID"
	MsgInvalidProductFm  = "Invalid product ID: %s"
)

// parseID parses an opaque entity identifier
func parseID(field, value string) (uuid.UUID, error) {
	id, err := uuid.Parse(strings.TrimSpace(value))
	if err != nil {
		return uuid.Nil, domain.NewValidationError(field, "invalid identifier %q", value)
	}
	return id, nil
}
