package domain

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"virtual-wallet/pkg/apperror"
)

// MaxCards is the hard capacity of a wallet's card cache and of the
// persisted card bucket.
const MaxCards = 3

// Wallet is the aggregate linking the holder's bank account and up to
// MaxCards virtual cards. Cards holds serialized card snapshots keyed
// by card number and acts as a write-through cache over the snapshot
// store; TotalCards always equals len(Cards).
type Wallet struct {
	ID                 uuid.UUID                  `json:"id"`
	PINHash            string                     `json:"pin_hash"`
	LastTransfer       Amount                     `json:"last_transfer"`
	LastAmountReceived Amount                     `json:"last_amount_received"`
	Cards              map[string]json.RawMessage `json:"cards"`
	TotalCards         int                        `json:"total_cards"`
	WalletAmount       Amount                     `json:"wallet_amount"`
	BankAccount        *BankAccount               `json:"bank_account"`
	CreatedAt          time.Time                  `json:"created_at"`
}

// NewWallet builds a wallet around its bank account. The account
// reference is mandatory for the wallet's whole lifetime.
func NewWallet(pinHash string, account *BankAccount) (*Wallet, error) {
	if account == nil {
		return nil, apperror.ErrInvalidArgument("wallet requires a bank account")
	}
	return &Wallet{
		ID:          uuid.New(),
		PINHash:     pinHash,
		Cards:       make(map[string]json.RawMessage),
		BankAccount: account,
	}, nil
}

// HasCard reports whether cardNumber is cached in the wallet.
func (w *Wallet) HasCard(cardNumber string) bool {
	_, ok := w.Cards[cardNumber]
	return ok
}

// CacheCard writes the card's snapshot into the cache, keeping
// TotalCards in step with the cache size. It does not enforce the
// capacity limit; that is the caller's precondition.
func (w *Wallet) CacheCard(c *Card) error {
	snap, err := json.Marshal(c)
	if err != nil {
		return apperror.InternalError(err)
	}
	if w.Cards == nil {
		w.Cards = make(map[string]json.RawMessage)
	}
	w.Cards[c.CardNumber] = snap
	w.TotalCards = len(w.Cards)
	return nil
}

// CachedCard reconstructs a card from its cached snapshot.
// Returns nil when the card is not cached.
func (w *Wallet) CachedCard(cardNumber string) (*Card, error) {
	snap, ok := w.Cards[cardNumber]
	if !ok {
		return nil, nil
	}
	c := &Card{}
	if err := json.Unmarshal(snap, c); err != nil {
		return nil, apperror.InternalError(err)
	}
	return c, nil
}

// EvictCard removes a cached snapshot and reports whether it was present.
func (w *Wallet) EvictCard(cardNumber string) bool {
	if _, ok := w.Cards[cardNumber]; !ok {
		return false
	}
	delete(w.Cards, cardNumber)
	w.TotalCards = len(w.Cards)
	return true
}

// ClearCards drops every cached snapshot.
func (w *Wallet) ClearCards() {
	w.Cards = make(map[string]json.RawMessage)
	w.TotalCards = 0
}
