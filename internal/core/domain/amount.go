package domain

import (
	"encoding/json"

	"github.com/shopspring/decimal"

	"virtual-wallet/pkg/apperror"
)

// Amount holds a validated, non-negative monetary amount.
// The zero value is a valid zero balance.
type Amount struct {
	value decimal.Decimal
}

// NewAmount validates v and returns it as an Amount.
func NewAmount(v decimal.Decimal) (Amount, error) {
	if err := ValidateAmount(v); err != nil {
		return Amount{}, err
	}
	return Amount{value: v}, nil
}

// ParseAmount parses s as a decimal amount. Non-numeric input is an
// invalid amount, negative input a negative amount.
func ParseAmount(s string) (Amount, error) {
	v, err := decimal.NewFromString(s)
	if err != nil {
		return Amount{}, apperror.ErrInvalidAmount()
	}
	return NewAmount(v)
}

// ValidateAmount rejects values that cannot be a legal balance.
// Pure check, no side effect.
func ValidateAmount(v decimal.Decimal) error {
	if v.IsNegative() {
		return apperror.ErrNegativeAmount()
	}
	return nil
}

// ValidatePositiveAmount rejects values that cannot move funds:
// transfers require a strictly positive amount.
func ValidatePositiveAmount(v decimal.Decimal) error {
	if err := ValidateAmount(v); err != nil {
		return err
	}
	if !v.IsPositive() {
		return apperror.ErrInvalidAmount()
	}
	return nil
}

// Set validates v and assigns it as the new value. This is an
// assignment, not an increment: funding operations overwrite the
// previous balance.
func (a *Amount) Set(v decimal.Decimal) error {
	if err := ValidateAmount(v); err != nil {
		return err
	}
	a.value = v
	return nil
}

// Value returns the current validated value.
func (a Amount) Value() decimal.Decimal { return a.value }

func (a Amount) String() string { return a.value.String() }

func (a Amount) IsZero() bool { return a.value.IsZero() }

func (a Amount) Equal(b Amount) bool { return a.value.Equal(b.value) }

// Add returns a new Amount increased by v.
func (a Amount) Add(v decimal.Decimal) (Amount, error) {
	return NewAmount(a.value.Add(v))
}

// Sub returns a new Amount decreased by v. Going below zero fails with
// a negative-amount error, keeping every balance non-negative.
func (a Amount) Sub(v decimal.Decimal) (Amount, error) {
	return NewAmount(a.value.Sub(v))
}

// MarshalJSON encodes the amount as a decimal string.
func (a Amount) MarshalJSON() ([]byte, error) {
	return json.Marshal(a.value.String())
}

// UnmarshalJSON decodes a decimal string. Snapshot fields are copied
// verbatim, so historical values are not re-validated here.
func (a *Amount) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	v, err := decimal.NewFromString(s)
	if err != nil {
		return err
	}
	a.value = v
	return nil
}
