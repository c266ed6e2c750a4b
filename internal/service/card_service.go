package service

import (
	"context"
	"encoding/json"
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"virtual-wallet/internal/core/domain"
	"virtual-wallet/internal/core/ports"
	"virtual-wallet/pkg/apperror"
)

const (
	opCardCreate = "card.create"
	opCardSave   = "card.save"
)

// CardService owns the card lifecycle over the snapshot store.
type CardService struct {
	store    ports.SnapshotStore
	reporter ports.Reporter
	log      zerolog.Logger
}

// NewCardService creates a new CardService.
func NewCardService(store ports.SnapshotStore, reporter ports.Reporter, log zerolog.Logger) *CardService {
	return &CardService{
		store:    store,
		reporter: reporter,
		log:      log,
	}
}

// Create builds and persists a new card. The card number must not
// already exist in storage.
func (s *CardService) Create(ctx context.Context, holder, cardNumber string, expiryMonth, expiryYear int) (*domain.Card, error) {
	if holder == "" || cardNumber == "" {
		return nil, apperror.ErrInvalidArgument("holder name and card number are required")
	}

	existing, err := s.store.Get(ctx, domain.CardKey(cardNumber))
	if err != nil {
		s.reporter.Report(ctx, opCardCreate, err)
		return nil, apperror.InternalError(err)
	}
	if existing != nil {
		return nil, apperror.ErrDuplicateCard()
	}

	card := &domain.Card{
		ID:          uuid.New(),
		HolderName:  holder,
		CardNumber:  cardNumber,
		ExpiryMonth: expiryMonth,
		ExpiryYear:  expiryYear,
	}
	if err := s.Save(ctx, card); err != nil {
		return nil, err
	}

	s.log.Info().
		Str("card_id", card.ID.String()).
		Str("card_number", card.CardNumber).
		Msg("card created")

	return card, nil
}

// GetByNumber loads a card snapshot. Absent cards return nil, nil; the
// snapshot fields are copied verbatim without re-validation.
func (s *CardService) GetByNumber(ctx context.Context, cardNumber string) (*domain.Card, error) {
	raw, err := s.store.Get(ctx, domain.CardKey(cardNumber))
	if err != nil {
		return nil, apperror.InternalError(err)
	}
	if raw == nil {
		return nil, nil
	}
	card := &domain.Card{}
	if err := json.Unmarshal(raw, card); err != nil {
		return nil, apperror.InternalError(err)
	}
	return card, nil
}

// Freeze blocks a card. Idempotent: an already-blocked card is returned
// without another persist.
func (s *CardService) Freeze(ctx context.Context, cardNumber string) (*domain.Card, error) {
	card, err := s.GetByNumber(ctx, cardNumber)
	if err != nil {
		return nil, err
	}
	if card == nil {
		return nil, apperror.ErrCardNotFound()
	}
	if !card.Freeze() {
		return card, nil
	}
	if err := s.Save(ctx, card); err != nil {
		return nil, err
	}
	s.log.Info().Str("card_number", cardNumber).Msg("card frozen")
	return card, nil
}

// Unfreeze unblocks a card. Idempotent like Freeze.
func (s *CardService) Unfreeze(ctx context.Context, cardNumber string) (*domain.Card, error) {
	card, err := s.GetByNumber(ctx, cardNumber)
	if err != nil {
		return nil, err
	}
	if card == nil {
		return nil, apperror.ErrCardNotFound()
	}
	if !card.Unfreeze() {
		return card, nil
	}
	if err := s.Save(ctx, card); err != nil {
		return nil, err
	}
	s.log.Info().Str("card_number", cardNumber).Msg("card unfrozen")
	return card, nil
}

// Save persists a card snapshot, enforcing the global cap on distinct
// persisted cards through the card index bucket. The first save stamps
// CreatedAt.
func (s *CardService) Save(ctx context.Context, card *domain.Card) error {
	if card == nil {
		return apperror.ErrInvalidCard()
	}

	index, err := s.loadIndex(ctx)
	if err != nil {
		return err
	}

	indexDirty := false
	if !slices.Contains(index, card.CardNumber) {
		if len(index) >= domain.MaxCards {
			capErr := apperror.ErrCapacityExceeded()
			s.reporter.Report(ctx, opCardSave, capErr)
			return capErr
		}
		index = append(index, card.CardNumber)
		indexDirty = true
	}

	if card.CreatedAt.IsZero() {
		card.CreatedAt = time.Now().UTC()
	}

	raw, err := json.Marshal(card)
	if err != nil {
		return apperror.InternalError(err)
	}
	if err := s.store.Set(ctx, domain.CardKey(card.CardNumber), raw); err != nil {
		s.reporter.Report(ctx, opCardSave, err)
		return apperror.InternalError(err)
	}

	if indexDirty {
		if err := s.saveIndex(ctx, index); err != nil {
			s.reporter.Report(ctx, opCardSave, err)
			return err
		}
	}
	return nil
}

func (s *CardService) loadIndex(ctx context.Context) ([]string, error) {
	raw, err := s.store.Get(ctx, domain.CardIndexKey)
	if err != nil {
		return nil, apperror.InternalError(err)
	}
	if raw == nil {
		return nil, nil
	}
	var index []string
	if err := json.Unmarshal(raw, &index); err != nil {
		return nil, apperror.InternalError(err)
	}
	return index, nil
}

func (s *CardService) saveIndex(ctx context.Context, index []string) error {
	raw, err := json.Marshal(index)
	if err != nil {
		return apperror.InternalError(err)
	}
	if err := s.store.Set(ctx, domain.CardIndexKey, raw); err != nil {
		return apperror.InternalError(err)
	}
	return nil
}
