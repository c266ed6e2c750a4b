package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Card is an account-scoped spending instrument. The card number is its
// unique lookup key; the balance only moves through the shared amount
// validator.
type Card struct {
	ID          uuid.UUID `json:"id"`
	HolderName  string    `json:"card_holder_name"`
	CardNumber  string    `json:"card_number"`
	ExpiryMonth int       `json:"expiry_month"`
	ExpiryYear  int       `json:"expiry_year"`
	Blocked     bool      `json:"is_blocked"`
	Balance     Amount    `json:"balance"`
	CreatedAt   time.Time `json:"created_at"`
}

// Freeze blocks the card. Returns true if the state actually changed,
// so callers persist at most once per transition.
func (c *Card) Freeze() bool {
	if c.Blocked {
		return false
	}
	c.Blocked = true
	return true
}

// Unfreeze unblocks the card. Returns true if the state actually changed.
func (c *Card) Unfreeze() bool {
	if !c.Blocked {
		return false
	}
	c.Blocked = false
	return true
}

// SetBalance assigns a new balance through the amount validator.
func (c *Card) SetBalance(v decimal.Decimal) error {
	return c.Balance.Set(v)
}

// HasSufficientFunds reports whether amount can leave the card.
// The second clause re-states non-negativity as explicit policy.
func (c *Card) HasSufficientFunds(amount decimal.Decimal) bool {
	return c.Balance.Value().GreaterThanOrEqual(amount) &&
		!c.Balance.Value().Sub(amount).IsNegative()
}
