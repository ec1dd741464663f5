package domain

import (
	"errors"
	"strings"
	"time"
	"unicode/utf8"
)

// MaxAccountFieldLength bounds every text field of an AccountRecord.
const MaxAccountFieldLength = 255

// AccountRecord is a saved bank account. Records are append-only: the same
// account may be saved any number of times.
type AccountRecord struct {
	ID                int64     `json:"id"`
	AccountNumber     string    `json:"account_number"`
	BankName          string    `json:"bank_name"`
	AccountHolderName string    `json:"account_holder_name"`
	CreatedAt         time.Time `json:"created_at"`
}

// NewAccountRecord trims and validates the three required fields.
// CreatedAt is assigned by the store on insert.
func NewAccountRecord(accountNumber, bankName, accountHolderName string) (*AccountRecord, error) {
	rec := &AccountRecord{
		AccountNumber:     strings.TrimSpace(accountNumber),
		BankName:          strings.TrimSpace(bankName),
		AccountHolderName: strings.TrimSpace(accountHolderName),
	}
	if err := rec.Validate(); err != nil {
		return nil, err
	}
	return rec, nil
}

// Validate reports every missing or oversized field at once.
func (r *AccountRecord) Validate() error {
	var errs []error
	for _, f := range []struct {
		name  string
		value string
	}{
		{"account_number", r.AccountNumber},
		{"bank_name", r.BankName},
		{"account_holder_name", r.AccountHolderName},
	} {
		switch {
		case f.value == "":
			errs = append(errs, NewValidationError(f.name, "This field is required.", nil))
		case utf8.RuneCountInString(f.value) > MaxAccountFieldLength:
			errs = append(errs, NewValidationError(f.name, "Ensure this field has no more than 255 characters.", nil))
		}
	}
	return errors.Join(errs...)
}
