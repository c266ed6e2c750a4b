package service

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"virtual-wallet/internal/core/domain"
	"virtual-wallet/internal/core/ports"
	"virtual-wallet/pkg/apperror"
)

const (
	opWalletCreate     = "wallet.create"
	opWalletAddCard    = "wallet.add_card"
	opWalletAddFunds   = "wallet.add_funds_to_card"
	opTransferToWallet = "wallet.transfer_to_wallet"
	opTransferCardCard = "wallet.transfer_card_to_card"
)

// WalletService exposes the user-facing wallet operations. It enforces
// capacity and PIN policy, delegates balance movement to the account
// service and keeps the wallet's card snapshot cache written through.
type WalletService struct {
	store    ports.SnapshotStore
	cards    *CardService
	accounts *AccountService
	pins     ports.PINHasher
	reporter ports.Reporter
	log      zerolog.Logger
}

// NewWalletService creates a new WalletService.
func NewWalletService(
	store ports.SnapshotStore,
	cards *CardService,
	accounts *AccountService,
	pins ports.PINHasher,
	reporter ports.Reporter,
	log zerolog.Logger,
) *WalletService {
	return &WalletService{
		store:    store,
		cards:    cards,
		accounts: accounts,
		pins:     pins,
		reporter: reporter,
		log:      log,
	}
}

// Create hashes the PIN, builds the wallet around its bank account and
// persists it. Construction fails without an account.
func (s *WalletService) Create(ctx context.Context, pin string, account *domain.BankAccount) (*domain.Wallet, error) {
	if strings.TrimSpace(pin) == "" {
		return nil, apperror.ErrInvalidArgument("pin must not be empty")
	}
	pinHash, err := s.pins.Hash(pin)
	if err != nil {
		return nil, apperror.InternalError(err)
	}

	w, err := domain.NewWallet(pinHash, account)
	if err != nil {
		return nil, err
	}
	w.CreatedAt = time.Now().UTC()

	if err := s.save(ctx, w); err != nil {
		s.reporter.Report(ctx, opWalletCreate, err)
		return nil, err
	}

	s.log.Info().Str("wallet_id", w.ID.String()).Msg("wallet created")
	return w, nil
}

// Load fetches a wallet snapshot by ID. Absent wallets return nil, nil.
func (s *WalletService) Load(ctx context.Context, id uuid.UUID) (*domain.Wallet, error) {
	raw, err := s.store.Get(ctx, domain.WalletKey(id))
	if err != nil {
		return nil, apperror.InternalError(err)
	}
	if raw == nil {
		return nil, nil
	}
	w := &domain.Wallet{}
	if err := json.Unmarshal(raw, w); err != nil {
		return nil, apperror.InternalError(err)
	}
	return w, nil
}

// AddCard resolves a stored card and caches it in the wallet. At most
// MaxCards cards fit; the same number is never cached twice.
func (s *WalletService) AddCard(ctx context.Context, w *domain.Wallet, cardNumber string) (*domain.Card, error) {
	if err := validCardNumber(cardNumber); err != nil {
		return nil, err
	}
	if w.TotalCards >= domain.MaxCards {
		capErr := apperror.ErrCapacityExceeded()
		s.reporter.Report(ctx, opWalletAddCard, capErr)
		return nil, capErr
	}
	if w.HasCard(cardNumber) {
		return nil, apperror.ErrDuplicateCard()
	}

	card, err := s.cards.GetByNumber(ctx, cardNumber)
	if err != nil {
		return nil, err
	}
	if card == nil {
		return nil, apperror.ErrCardNotFound()
	}

	if err := w.CacheCard(card); err != nil {
		return nil, err
	}
	if err := s.save(ctx, w); err != nil {
		s.reporter.Report(ctx, opWalletAddCard, err)
		return nil, err
	}
	return card, nil
}

// RemoveCard evicts a card from the wallet cache. Removing a card that
// is not cached is a no-op.
func (s *WalletService) RemoveCard(ctx context.Context, w *domain.Wallet, cardNumber string) error {
	if err := validCardNumber(cardNumber); err != nil {
		return err
	}
	if !w.EvictCard(cardNumber) {
		return nil
	}
	return s.save(ctx, w)
}

// RemoveAllCards clears the wallet cache unconditionally.
func (s *WalletService) RemoveAllCards(ctx context.Context, w *domain.Wallet) error {
	w.ClearCards()
	return s.save(ctx, w)
}

// AddFundsToCard applies amount to a cached card through the card
// balance validator. The amount assignment is absolute: the new balance
// becomes amount, it is not added to the previous one. A validation
// failure is reported to the sink but the operation still re-persists
// and returns the card, matching the historical funding behaviour.
func (s *WalletService) AddFundsToCard(ctx context.Context, w *domain.Wallet, cardNumber string, amount decimal.Decimal) (*domain.Card, error) {
	if err := validCardNumber(cardNumber); err != nil {
		return nil, err
	}
	if !w.HasCard(cardNumber) {
		return nil, apperror.ErrCardNotFound()
	}

	card, err := w.CachedCard(cardNumber)
	if err != nil {
		return nil, err
	}

	if err := card.SetBalance(amount); err != nil {
		s.reporter.Report(ctx, opWalletAddFunds, err)
	}

	if err := s.cards.Save(ctx, card); err != nil {
		return nil, err
	}
	if err := w.CacheCard(card); err != nil {
		return nil, err
	}
	if err := s.save(ctx, w); err != nil {
		s.reporter.Report(ctx, opWalletAddFunds, err)
		return nil, err
	}
	return card, nil
}

// VerifyPIN checks the candidate PIN against the wallet's stored hash.
func (s *WalletService) VerifyPIN(ctx context.Context, w *domain.Wallet, pin string) (bool, error) {
	ok, err := s.pins.Verify(pin, w.PINHash)
	if err != nil {
		return false, apperror.InternalError(err)
	}
	return ok, nil
}

// TransferToWallet moves amount from a card onto the wallet's bank
// account. A verified PIN is a hard precondition; nothing moves
// without it. On success the wallet total is credited with the bank
// account's post-transfer balance, not the transferred amount. This is
// the historical semantics, preserved deliberately.
func (s *WalletService) TransferToWallet(ctx context.Context, w *domain.Wallet, pin, cardNumber string, amount decimal.Decimal) error {
	if err := s.requirePIN(ctx, w, pin); err != nil {
		return err
	}
	if err := validCardNumber(cardNumber); err != nil {
		return err
	}

	card, err := s.cards.GetByNumber(ctx, cardNumber)
	if err != nil {
		return err
	}
	if card == nil {
		return apperror.ErrCardNotFound()
	}

	if err := s.accounts.TransferToAccount(ctx, w.BankAccount, card, amount); err != nil {
		s.reporter.Report(ctx, opTransferToWallet, err)
		return err
	}

	newTotal, err := w.WalletAmount.Add(w.BankAccount.Balance.Value())
	if err != nil {
		return err
	}
	w.WalletAmount = newTotal
	if err := w.LastTransfer.Set(amount); err != nil {
		return err
	}
	if err := w.LastAmountReceived.Set(amount); err != nil {
		return err
	}

	if w.HasCard(cardNumber) {
		if err := w.CacheCard(card); err != nil {
			return err
		}
	}
	if err := s.save(ctx, w); err != nil {
		s.reporter.Report(ctx, opTransferToWallet, err)
		return err
	}

	s.log.Info().
		Str("wallet_id", w.ID.String()).
		Str("card_number", cardNumber).
		Str("amount", amount.String()).
		Msg("transfer to wallet completed")

	return nil
}

// TransferCardToCard moves amount between two of the wallet's cards.
// A verified PIN is a hard precondition. Both updated snapshots are
// re-cached before the wallet persists.
func (s *WalletService) TransferCardToCard(ctx context.Context, w *domain.Wallet, pin, sourceNumber, targetNumber string, amount decimal.Decimal) error {
	if err := s.requirePIN(ctx, w, pin); err != nil {
		return err
	}
	if w.TotalCards < 2 {
		return apperror.ErrInsufficientCards()
	}
	if sourceNumber == targetNumber {
		return apperror.ErrSameCard()
	}

	source, err := s.cards.GetByNumber(ctx, sourceNumber)
	if err != nil {
		return err
	}
	target, err := s.cards.GetByNumber(ctx, targetNumber)
	if err != nil {
		return err
	}
	if source == nil || target == nil {
		return apperror.ErrCardNotFound()
	}

	if err := s.accounts.TransferBetweenCards(ctx, source, target, amount); err != nil {
		s.reporter.Report(ctx, opTransferCardCard, err)
		return err
	}

	if err := w.CacheCard(source); err != nil {
		return err
	}
	if err := w.CacheCard(target); err != nil {
		return err
	}
	if err := s.save(ctx, w); err != nil {
		s.reporter.Report(ctx, opTransferCardCard, err)
		return err
	}

	s.log.Info().
		Str("wallet_id", w.ID.String()).
		Str("source", sourceNumber).
		Str("target", targetNumber).
		Str("amount", amount.String()).
		Msg("card to card transfer completed")

	return nil
}

// IsCardInWallet reports whether cardNumber is cached in the wallet.
func (s *WalletService) IsCardInWallet(w *domain.Wallet, cardNumber string) (bool, error) {
	if err := validCardNumber(cardNumber); err != nil {
		return false, err
	}
	return w.HasCard(cardNumber), nil
}

// GetByCardNumber validates the input and resolves the card from the
// authoritative store.
func (s *WalletService) GetByCardNumber(ctx context.Context, cardNumber string) (*domain.Card, error) {
	if err := validCardNumber(cardNumber); err != nil {
		return nil, err
	}
	return s.cards.GetByNumber(ctx, cardNumber)
}

func (s *WalletService) requirePIN(ctx context.Context, w *domain.Wallet, pin string) error {
	ok, err := s.VerifyPIN(ctx, w, pin)
	if err != nil {
		return err
	}
	if !ok {
		return apperror.ErrInvalidPIN()
	}
	return nil
}

func (s *WalletService) save(ctx context.Context, w *domain.Wallet) error {
	raw, err := json.Marshal(w)
	if err != nil {
		return apperror.InternalError(err)
	}
	if err := s.store.Set(ctx, domain.WalletKey(w.ID), raw); err != nil {
		return apperror.InternalError(err)
	}
	return nil
}

func validCardNumber(cardNumber string) error {
	if strings.TrimSpace(cardNumber) == "" {
		return apperror.ErrInvalidArgument("card number must be a non-empty string")
	}
	return nil
}
