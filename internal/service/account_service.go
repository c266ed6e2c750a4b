package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"virtual-wallet/internal/core/domain"
	"virtual-wallet/internal/core/ports"
	"virtual-wallet/pkg/apperror"
)

const (
	opAccountCreate     = "account.create"
	opTransferToAccount = "account.transfer_to_account"
	opTransferCards     = "account.transfer_between_cards"
)

// AccountService owns the bank account lifecycle and the two balance
// transfer primitives. It is the only component that mutates balances
// on both sides of a movement.
type AccountService struct {
	store    ports.SnapshotStore
	cards    *CardService
	reporter ports.Reporter
	log      zerolog.Logger
}

// NewAccountService creates a new AccountService.
func NewAccountService(store ports.SnapshotStore, cards *CardService, reporter ports.Reporter, log zerolog.Logger) *AccountService {
	return &AccountService{
		store:    store,
		cards:    cards,
		reporter: reporter,
		log:      log,
	}
}

// Create validates identifiers, builds the account and persists it.
func (s *AccountService) Create(ctx context.Context, sortCode, accountNumber string, opening decimal.Decimal) (*domain.BankAccount, error) {
	account, err := domain.NewBankAccount(sortCode, accountNumber, opening)
	if err != nil {
		return nil, err
	}
	account.CreatedAt = time.Now().UTC()

	if err := s.save(ctx, account); err != nil {
		s.reporter.Report(ctx, opAccountCreate, err)
		return nil, err
	}

	s.log.Info().
		Str("account_id", account.ID.String()).
		Str("sort_code", account.SortCode).
		Msg("bank account created")

	return account, nil
}

// Get loads an account snapshot by its sort-code and account-number
// pair. Absent accounts return nil, nil.
func (s *AccountService) Get(ctx context.Context, sortCode, accountNumber string) (*domain.BankAccount, error) {
	raw, err := s.store.Get(ctx, domain.AccountKey(sortCode, accountNumber))
	if err != nil {
		return nil, apperror.InternalError(err)
	}
	if raw == nil {
		return nil, nil
	}
	account := &domain.BankAccount{}
	if err := json.Unmarshal(raw, account); err != nil {
		return nil, apperror.InternalError(err)
	}
	return account, nil
}

// TransferToAccount moves amount from the card onto the bank account.
// The debit is applied and persisted before the credit; if persisting
// the credited account fails, the card debit is compensated and
// re-persisted so no money disappears.
func (s *AccountService) TransferToAccount(ctx context.Context, account *domain.BankAccount, card *domain.Card, amount decimal.Decimal) error {
	if account == nil {
		return apperror.ErrInvalidArgument("bank account is required")
	}
	if card == nil {
		return apperror.ErrInvalidCard()
	}
	if err := domain.ValidatePositiveAmount(amount); err != nil {
		return err
	}
	if card.Blocked {
		return apperror.ErrCardFrozen()
	}
	if !card.HasSufficientFunds(amount) {
		return apperror.ErrInsufficientFunds()
	}

	previous := card.Balance
	debited, err := card.Balance.Sub(amount)
	if err != nil {
		return err
	}
	credited, err := account.Balance.Add(amount)
	if err != nil {
		return err
	}

	card.Balance = debited
	if err := s.cards.Save(ctx, card); err != nil {
		card.Balance = previous
		s.reporter.Report(ctx, opTransferToAccount, err)
		return err
	}

	account.Balance = credited
	if err := s.save(ctx, account); err != nil {
		s.compensateCard(ctx, opTransferToAccount, card, previous)
		s.reporter.Report(ctx, opTransferToAccount, err)
		return err
	}

	s.log.Info().
		Str("card_number", card.CardNumber).
		Str("account_id", account.ID.String()).
		Str("amount", amount.String()).
		Msg("card to account transfer completed")

	return nil
}

// TransferBetweenCards moves amount from the source card to the target
// card under the same compensation discipline as TransferToAccount.
func (s *AccountService) TransferBetweenCards(ctx context.Context, source, target *domain.Card, amount decimal.Decimal) error {
	if source == nil || target == nil {
		return apperror.ErrInvalidCard()
	}
	if err := domain.ValidatePositiveAmount(amount); err != nil {
		return err
	}
	if source.Blocked || target.Blocked {
		return apperror.ErrCardFrozen()
	}
	if !source.HasSufficientFunds(amount) {
		return apperror.ErrInsufficientFunds()
	}

	previous := source.Balance
	debited, err := source.Balance.Sub(amount)
	if err != nil {
		return err
	}
	credited, err := target.Balance.Add(amount)
	if err != nil {
		return err
	}

	source.Balance = debited
	if err := s.cards.Save(ctx, source); err != nil {
		source.Balance = previous
		s.reporter.Report(ctx, opTransferCards, err)
		return err
	}

	target.Balance = credited
	if err := s.cards.Save(ctx, target); err != nil {
		s.compensateCard(ctx, opTransferCards, source, previous)
		s.reporter.Report(ctx, opTransferCards, err)
		return err
	}

	s.log.Info().
		Str("source", source.CardNumber).
		Str("target", target.CardNumber).
		Str("amount", amount.String()).
		Msg("card to card transfer completed")

	return nil
}

// compensateCard restores a card balance after a failed second-side
// persist and writes it back, best effort.
func (s *AccountService) compensateCard(ctx context.Context, op string, card *domain.Card, balance domain.Amount) {
	card.Balance = balance
	if err := s.cards.Save(ctx, card); err != nil {
		// Persisted and in-memory state now disagree; all the sink can
		// do is record it for reconciliation.
		s.reporter.Report(ctx, op, err)
		s.log.Error().
			Str("card_number", card.CardNumber).
			Err(err).
			Msg("compensation persist failed, card snapshot out of sync")
	}
}

func (s *AccountService) save(ctx context.Context, account *domain.BankAccount) error {
	raw, err := json.Marshal(account)
	if err != nil {
		return apperror.InternalError(err)
	}
	if err := s.store.Set(ctx, domain.AccountKey(account.SortCode, account.AccountNumber), raw); err != nil {
		return apperror.InternalError(err)
	}
	return nil
}
