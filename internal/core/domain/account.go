package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"virtual-wallet/pkg/apperror"
)

const (
	sortCodeLen      = 6
	accountNumberLen = 8
)

// BankAccount is the funding source behind a wallet. The sort-code and
// account-number pair is its unique business key.
type BankAccount struct {
	ID            uuid.UUID `json:"id"`
	SortCode      string    `json:"sort_code"`
	AccountNumber string    `json:"account_number"`
	Balance       Amount    `json:"balance"`
	CreatedAt     time.Time `json:"created_at"`
}

// NewBankAccount validates the identifiers and opening balance and
// returns a fresh account. Sort codes are 6 numeric digits, account
// numbers 8.
func NewBankAccount(sortCode, accountNumber string, opening decimal.Decimal) (*BankAccount, error) {
	if sortCode == "" {
		return nil, apperror.ErrMissingField("sort code")
	}
	if accountNumber == "" {
		return nil, apperror.ErrMissingField("account number")
	}
	if len(sortCode) != sortCodeLen || !isDigits(sortCode) {
		return nil, apperror.ErrInvalidFormat("sort code")
	}
	if len(accountNumber) != accountNumberLen || !isDigits(accountNumber) {
		return nil, apperror.ErrInvalidFormat("account number")
	}

	balance, err := NewAmount(opening)
	if err != nil {
		return nil, err
	}

	return &BankAccount{
		ID:            uuid.New(),
		SortCode:      sortCode,
		AccountNumber: accountNumber,
		Balance:       balance,
	}, nil
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
