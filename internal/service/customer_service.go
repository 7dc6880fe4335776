package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"crm/internal/clock"
	"crm/internal/database"
	"crm/internal/domain"
	"crm/internal/filter"
	"crm/internal/pagination"
	"crm/internal/repository"

	"github.com/google/uuid"
)

// CustomerService defines the customer mutations and queries
type CustomerService interface {
	CreateCustomer(ctx context.Context, input domain.CustomerInput) (*domain.CustomerPayload, error)
	BulkCreateCustomers(ctx context.Context, inputs []domain.CustomerInput) (*domain.BulkCustomersPayload, error)
	GetCustomer(ctx context.Context, id string) (*domain.Customer, error)
	ListCustomers(ctx context.Context, f filter.CustomerFilter, page pagination.Pagination) (pagination.Page[domain.Customer], error)
}

type customerService struct {
	tx    database.Transactor
	db    database.Querier
	repo  repository.CustomerRepository
	clock clock.Clock
}

// NewCustomerService creates a new instance of CustomerService
func NewCustomerService(tx database.Transactor, db database.Querier, repo repository.CustomerRepository, clk clock.Clock) CustomerService {
	return &customerService{tx: tx, db: db, repo: repo, clock: clk}
}

// CreateCustomer validates and stores a single customer. Rejected input is
// reported in the payload and nothing is written.
func (s *customerService) CreateCustomer(ctx context.Context, input domain.CustomerInput) (*domain.CustomerPayload, error) {
	var payload *domain.CustomerPayload

	err := s.tx.WithTx(ctx, func(q database.Querier) error {
		errs, err := s.validate(ctx, q, input)
		if err != nil {
			return err
		}
		if len(errs) > 0 {
			payload = &domain.CustomerPayload{Success: false, Errors: messages(errs)}
			return nil
		}

		customer := s.newCustomer(input)
		if err := s.repo.Create(ctx, q, customer); err != nil {
			return err
		}

		payload = &domain.CustomerPayload{Customer: customer, Success: true, Errors: []string{}}
		return nil
	})

	if e, ok := storeRejection(err); ok {
		return &domain.CustomerPayload{Success: false, Errors: []string{e.message()}}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to create customer: %w", err)
	}

	return payload, nil
}

// BulkCreateCustomers validates each record independently inside one
// transaction. Valid records are committed, invalid ones are skipped and
// reported as "Record N: ..." with N counted from 1. Every record is checked
// against the state visible in the transaction, which includes records
// inserted earlier in the same batch.
func (s *customerService) BulkCreateCustomers(ctx context.Context, inputs []domain.CustomerInput) (*domain.BulkCustomersPayload, error) {
	var created []*domain.Customer
	var recordErrs []string

	err := s.tx.WithTx(ctx, func(q database.Querier) error {
		created = []*domain.Customer{}
		recordErrs = []string{}

		for idx, input := range inputs {
			record := idx + 1

			errs, err := s.validate(ctx, q, input)
			if err != nil {
				return err
			}
			if len(errs) > 0 {
				for _, e := range errs {
					recordErrs = append(recordErrs, bulkMessage(record, input, e))
				}
				continue
			}

			customer := s.newCustomer(input)
			err = s.tx.Savepoint(ctx, q, "bulk_customer", func() error {
				return s.repo.Create(ctx, q, customer)
			})
			if e, ok := storeRejection(err); ok {
				recordErrs = append(recordErrs, bulkMessage(record, input, e))
				continue
			}
			if err != nil {
				return err
			}

			created = append(created, customer)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to bulk create customers: %w", err)
	}

	return &domain.BulkCustomersPayload{
		Customers: created,
		Success:   len(recordErrs) == 0,
		Errors:    recordErrs,
	}, nil
}

// GetCustomer looks a customer up by its identifier
func (s *customerService) GetCustomer(ctx context.Context, id string) (*domain.Customer, error) {
	customerID, err := parseID("id", id)
	if err != nil {
		return nil, err
	}

	customer, err := s.repo.FindByID(ctx, s.db, customerID)
	if err != nil {
		if errors.Is(err, repository.ErrCustomerNotFound) {
			return nil, &domain.NotFoundError{Entity: "customer", ID: id}
		}
		return nil, fmt.Errorf("failed to get customer: %w", err)
	}

	return customer, nil
}

// ListCustomers returns one page of customers matching f
func (s *customerService) ListCustomers(ctx context.Context, f filter.CustomerFilter, page pagination.Pagination) (pagination.Page[domain.Customer], error) {
	rows, err := s.repo.List(ctx, s.db, f, page)
	if err != nil {
		return pagination.Page[domain.Customer]{}, err
	}
	return pagination.BuildPage(rows, page, f.OrderBy.Cursor)
}

// customerError is a single reason a customer record was rejected
type customerError int

const (
	errNameRequired customerError = iota
	errEmailRequired
	errEmailExists
	errInvalidPhone
	errNameTooLong
	errEmailTooLong
	errNotStored
)

func (e customerError) message() string {
	switch e {
	case errNameRequired:
		return MsgNameRequired
	case errEmailRequired:
		return MsgEmailRequired
	case errEmailExists:
		return MsgEmailExists
	case errNameTooLong:
		return MsgNameTooLong
	case errEmailTooLong:
		return MsgEmailTooLong
	case errNotStored:
		return MsgCustomerNotStored
	default:
		return MsgInvalidPhone
	}
}

// storeRejection classifies a store error caused by the record itself.
// Other errors abort the operation.
func storeRejection(err error) (customerError, bool) {
	var conflict *domain.ConflictError
	switch {
	case err == nil:
		return 0, false
	case errors.As(err, &conflict):
		return errEmailExists, true
	case database.IsDataError(err):
		return errNotStored, true
	default:
		return 0, false
	}
}

func bulkMessage(record int, input domain.CustomerInput, e customerError) string {
	switch e {
	case errEmailExists:
		return fmt.Sprintf("Record %d: Email '%s' already exists", record, input.Email)
	case errInvalidPhone:
		return fmt.Sprintf("Record %d: Phone number format '%s' is invalid", record, *input.Phone)
	default:
		return fmt.Sprintf("Record %d: %s", record, e.message())
	}
}

func messages(errs []customerError) []string {
	out := make([]string, len(errs))
	for i, e := range errs {
		out[i] = e.message()
	}
	return out
}

// validate checks a customer record: name and email must be present and fit
// their columns, email must be unused and phone, when present, must match
// the phone pattern.
func (s *customerService) validate(ctx context.Context, q database.Querier, input domain.CustomerInput) ([]customerError, error) {
	var errs []customerError

	if strings.TrimSpace(input.Name) == "" {
		errs = append(errs, errNameRequired)
	} else if utf8.RuneCountInString(input.Name) > domain.MaxNameLength {
		errs = append(errs, errNameTooLong)
	}

	if strings.TrimSpace(input.Email) == "" {
		errs = append(errs, errEmailRequired)
	} else if utf8.RuneCountInString(input.Email) > domain.MaxEmailLength {
		errs = append(errs, errEmailTooLong)
	} else {
		exists, err := s.repo.ExistsByEmail(ctx, q, input.Email)
		if err != nil {
			return nil, err
		}
		if exists {
			errs = append(errs, errEmailExists)
		}
	}

	if input.Phone != nil && *input.Phone != "" && !domain.ValidPhone(*input.Phone) {
		errs = append(errs, errInvalidPhone)
	}

	return errs, nil
}

func (s *customerService) newCustomer(input domain.CustomerInput) *domain.Customer {
	phone := input.Phone
	if phone != nil && *phone == "" {
		phone = nil
	}
	return &domain.Customer{
		ID:        uuid.New(),
		Name:      input.Name,
		Email:     input.Email,
		Phone:     phone,
		CreatedAt: s.clock.Now(),
	}
}
