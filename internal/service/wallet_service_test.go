package service

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"virtual-wallet/internal/adapter/storage/memory"
	"virtual-wallet/internal/core/domain"
	"virtual-wallet/internal/core/ports/mocks"
	"virtual-wallet/pkg/apperror"
)

const testPIN = "4921"

type walletTestDeps struct {
	svc      *WalletService
	cards    *CardService
	accounts *AccountService
	store    *memory.Store
	reporter *recordingReporter
}

func setupWalletService(t *testing.T) *walletTestDeps {
	t.Helper()
	store := memory.New()
	reporter := &recordingReporter{}
	cards := NewCardService(store, reporter, zerolog.Nop())
	accounts := NewAccountService(store, cards, reporter, zerolog.Nop())
	svc := NewWalletService(store, cards, accounts, plainPINHasher{}, reporter, zerolog.Nop())
	return &walletTestDeps{
		svc:      svc,
		cards:    cards,
		accounts: accounts,
		store:    store,
		reporter: reporter,
	}
}

// newWallet creates a wallet over a fresh bank account.
func (d *walletTestDeps) newWallet(t *testing.T, accountBalance string) *domain.Wallet {
	t.Helper()
	ctx := context.Background()
	account, err := d.accounts.Create(ctx, "123456", "12345678", dec(accountBalance))
	require.NoError(t, err)
	w, err := d.svc.Create(ctx, testPIN, account)
	require.NoError(t, err)
	return w
}

// newCardInWallet creates, funds and caches a card.
func (d *walletTestDeps) newCardInWallet(t *testing.T, w *domain.Wallet, number, balance string) *domain.Card {
	t.Helper()
	ctx := context.Background()
	card, err := d.cards.Create(ctx, "Egbie", number, 12, 2028)
	require.NoError(t, err)
	require.NoError(t, card.SetBalance(dec(balance)))
	require.NoError(t, d.cards.Save(ctx, card))
	_, err = d.svc.AddCard(ctx, w, number)
	require.NoError(t, err)
	return card
}

// ==================== Construction ====================

func TestWalletService_Create(t *testing.T) {
	d := setupWalletService(t)
	ctx := context.Background()

	w := d.newWallet(t, "2028")
	assert.Equal(t, "plain:"+testPIN, w.PINHash, "PIN stored hashed, never plaintext")
	assert.Equal(t, 0, w.TotalCards)
	require.NotNil(t, w.BankAccount)

	// Wallet snapshot persisted with the nested account.
	loaded, err := d.svc.Load(ctx, w.ID)
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.Equal(t, w.ID, loaded.ID)
	assert.Equal(t, "123456", loaded.BankAccount.SortCode)
}

func TestWalletService_Create_RequiresPINAndAccount(t *testing.T) {
	d := setupWalletService(t)
	ctx := context.Background()

	account, err := d.accounts.Create(ctx, "123456", "12345678", dec("0"))
	require.NoError(t, err)

	_, err = d.svc.Create(ctx, "  ", account)
	assert.Equal(t, "WAL_002", apperror.CodeOf(err))

	_, err = d.svc.Create(ctx, testPIN, nil)
	assert.Equal(t, "WAL_002", apperror.CodeOf(err))
}

func TestWalletService_Load_Absent(t *testing.T) {
	d := setupWalletService(t)

	missing, err := d.svc.Load(context.Background(), uuid.New())
	require.NoError(t, err)
	assert.Nil(t, missing)
}

// ==================== Card cache ====================

func TestWalletService_AddCard_CapacityOfThree(t *testing.T) {
	d := setupWalletService(t)
	ctx := context.Background()
	w := d.newWallet(t, "0")

	d.newCardInWallet(t, w, "card-1", "0")
	d.newCardInWallet(t, w, "card-2", "0")
	d.newCardInWallet(t, w, "card-3", "0")
	assert.Equal(t, 3, w.TotalCards)

	// The fourth attempt fails before any storage lookup.
	_, err := d.svc.AddCard(ctx, w, "card-4")
	require.Error(t, err)
	assert.Equal(t, "CAP_001", apperror.CodeOf(err))
	assert.Equal(t, 3, w.TotalCards)
}

func TestWalletService_AddCard_Duplicate(t *testing.T) {
	d := setupWalletService(t)
	ctx := context.Background()
	w := d.newWallet(t, "0")
	d.newCardInWallet(t, w, "card-1", "0")

	_, err := d.svc.AddCard(ctx, w, "card-1")
	require.Error(t, err)
	assert.Equal(t, "CARD_001", apperror.CodeOf(err))
}

func TestWalletService_AddCard_UnknownCard(t *testing.T) {
	d := setupWalletService(t)
	ctx := context.Background()
	w := d.newWallet(t, "0")

	_, err := d.svc.AddCard(ctx, w, "never-created")
	require.Error(t, err)
	assert.Equal(t, "CARD_002", apperror.CodeOf(err))
	assert.Equal(t, 0, w.TotalCards)
}

func TestWalletService_RemoveCard_ThenReAdd(t *testing.T) {
	d := setupWalletService(t)
	ctx := context.Background()
	w := d.newWallet(t, "0")

	d.newCardInWallet(t, w, "card-1", "0")
	d.newCardInWallet(t, w, "card-2", "0")
	before := w.TotalCards

	require.NoError(t, d.svc.RemoveCard(ctx, w, "card-1"))
	assert.Equal(t, before-1, w.TotalCards)

	_, err := d.svc.AddCard(ctx, w, "card-1")
	require.NoError(t, err)
	assert.Equal(t, before, w.TotalCards, "re-adding restores the prior count")
}

func TestWalletService_RemoveCard_Validation(t *testing.T) {
	d := setupWalletService(t)
	ctx := context.Background()
	w := d.newWallet(t, "0")

	err := d.svc.RemoveCard(ctx, w, "   ")
	assert.Equal(t, "WAL_002", apperror.CodeOf(err))

	// Removing an absent card is a silent no-op.
	assert.NoError(t, d.svc.RemoveCard(ctx, w, "not-there"))
}

func TestWalletService_RemoveAllCards(t *testing.T) {
	d := setupWalletService(t)
	ctx := context.Background()
	w := d.newWallet(t, "0")
	d.newCardInWallet(t, w, "card-1", "0")
	d.newCardInWallet(t, w, "card-2", "0")

	require.NoError(t, d.svc.RemoveAllCards(ctx, w))
	assert.Equal(t, 0, w.TotalCards)
	assert.Empty(t, w.Cards)

	loaded, err := d.svc.Load(ctx, w.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, loaded.TotalCards)
}

func TestWalletService_IsCardInWallet(t *testing.T) {
	d := setupWalletService(t)
	w := d.newWallet(t, "0")
	d.newCardInWallet(t, w, "card-1", "0")

	ok, err := d.svc.IsCardInWallet(w, "card-1")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = d.svc.IsCardInWallet(w, "card-2")
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = d.svc.IsCardInWallet(w, "")
	assert.Equal(t, "WAL_002", apperror.CodeOf(err))
}

// ==================== Funding ====================

func TestWalletService_AddFundsToCard_AbsoluteSet(t *testing.T) {
	d := setupWalletService(t)
	ctx := context.Background()
	w := d.newWallet(t, "0")
	d.newCardInWallet(t, w, "card-1", "500")

	// Funding assigns: 500 -> 300, not 800.
	card, err := d.svc.AddFundsToCard(ctx, w, "card-1", dec("300"))
	require.NoError(t, err)
	assert.True(t, card.Balance.Value().Equal(dec("300")))

	// Write-through: cache and authoritative store agree.
	cached, err := w.CachedCard("card-1")
	require.NoError(t, err)
	assert.True(t, cached.Balance.Value().Equal(dec("300")))

	stored, err := d.cards.GetByNumber(ctx, "card-1")
	require.NoError(t, err)
	assert.True(t, stored.Balance.Value().Equal(dec("300")))
}

func TestWalletService_AddFundsToCard_NotCached(t *testing.T) {
	d := setupWalletService(t)
	ctx := context.Background()
	w := d.newWallet(t, "0")

	_, err := d.svc.AddFundsToCard(ctx, w, "card-1", dec("300"))
	require.Error(t, err)
	assert.Equal(t, "CARD_002", apperror.CodeOf(err))
}

func TestWalletService_AddFundsToCard_InvalidAmountReportedNotPropagated(t *testing.T) {
	store := memory.New()
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	reporter := mocks.NewMockReporter(ctrl)
	reporter.EXPECT().Report(gomock.Any(), gomock.Any(), gomock.Any()).AnyTimes()

	cards := NewCardService(store, reporter, zerolog.Nop())
	accounts := NewAccountService(store, cards, reporter, zerolog.Nop())
	svc := NewWalletService(store, cards, accounts, plainPINHasher{}, reporter, zerolog.Nop())
	ctx := context.Background()

	account, err := accounts.Create(ctx, "123456", "12345678", dec("0"))
	require.NoError(t, err)
	w, err := svc.Create(ctx, testPIN, account)
	require.NoError(t, err)

	card, err := cards.Create(ctx, "Egbie", "card-1", 12, 2028)
	require.NoError(t, err)
	require.NoError(t, card.SetBalance(dec("500")))
	require.NoError(t, cards.Save(ctx, card))
	_, err = svc.AddCard(ctx, w, "card-1")
	require.NoError(t, err)

	// A negative amount is reported, not propagated: the funding call
	// still returns the card with its balance untouched.
	got, err := svc.AddFundsToCard(ctx, w, "card-1", dec("-50"))
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.True(t, got.Balance.Value().Equal(dec("500")))
}

// ==================== PIN ====================

func TestWalletService_VerifyPIN(t *testing.T) {
	d := setupWalletService(t)
	ctx := context.Background()
	w := d.newWallet(t, "0")

	ok, err := d.svc.VerifyPIN(ctx, w, testPIN)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = d.svc.VerifyPIN(ctx, w, "0000")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestWalletService_VerifyPIN_HasherFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	hasher := mocks.NewMockPINHasher(ctrl)
	hasher.EXPECT().Verify("1234", "hash").Return(false, errors.New("corrupt hash"))

	store := memory.New()
	reporter := &recordingReporter{}
	cards := NewCardService(store, reporter, zerolog.Nop())
	accounts := NewAccountService(store, cards, reporter, zerolog.Nop())
	svc := NewWalletService(store, cards, accounts, hasher, reporter, zerolog.Nop())

	w := &domain.Wallet{PINHash: "hash"}
	_, err := svc.VerifyPIN(context.Background(), w, "1234")
	require.Error(t, err)
	assert.Equal(t, "SYS_001", apperror.CodeOf(err))
}

// ==================== Transfers ====================

func TestWalletService_TransferToWallet(t *testing.T) {
	d := setupWalletService(t)
	ctx := context.Background()
	w := d.newWallet(t, "2028")
	d.newCardInWallet(t, w, "card-1", "500")

	require.NoError(t, d.svc.TransferToWallet(ctx, w, testPIN, "card-1", dec("400")))

	assert.True(t, w.BankAccount.Balance.Value().Equal(dec("2428")))
	assert.True(t, w.LastTransfer.Value().Equal(dec("400")))
	assert.True(t, w.LastAmountReceived.Value().Equal(dec("400")))

	// The wallet total absorbs the account's post-transfer balance,
	// not the transferred amount.
	assert.True(t, w.WalletAmount.Value().Equal(dec("2428")))

	// Cache reflects the debited card; so does the store.
	cached, err := w.CachedCard("card-1")
	require.NoError(t, err)
	assert.True(t, cached.Balance.Value().Equal(dec("100")))

	loaded, err := d.svc.Load(ctx, w.ID)
	require.NoError(t, err)
	assert.True(t, loaded.WalletAmount.Value().Equal(dec("2428")))
}

func TestWalletService_TransferToWallet_WrongPIN(t *testing.T) {
	d := setupWalletService(t)
	ctx := context.Background()
	w := d.newWallet(t, "2028")
	card := d.newCardInWallet(t, w, "card-1", "500")

	err := d.svc.TransferToWallet(ctx, w, "0000", "card-1", dec("400"))
	require.Error(t, err)
	assert.Equal(t, "WAL_001", apperror.CodeOf(err))

	// Nothing moved.
	assert.True(t, card.Balance.Value().Equal(dec("500")))
	assert.True(t, w.BankAccount.Balance.Value().Equal(dec("2028")))
}

func TestWalletService_TransferToWallet_InsufficientFunds(t *testing.T) {
	d := setupWalletService(t)
	ctx := context.Background()
	w := d.newWallet(t, "2028")
	d.newCardInWallet(t, w, "card-1", "500")

	err := d.svc.TransferToWallet(ctx, w, testPIN, "card-1", dec("2000"))
	require.Error(t, err)
	assert.Equal(t, "PAY_001", apperror.CodeOf(err))

	stored, err := d.cards.GetByNumber(ctx, "card-1")
	require.NoError(t, err)
	assert.True(t, stored.Balance.Value().Equal(dec("500")))
	assert.True(t, w.BankAccount.Balance.Value().Equal(dec("2028")))
}

func TestWalletService_TransferCardToCard(t *testing.T) {
	d := setupWalletService(t)
	ctx := context.Background()
	w := d.newWallet(t, "0")
	d.newCardInWallet(t, w, "card-1", "500")
	d.newCardInWallet(t, w, "card-2", "200")

	require.NoError(t, d.svc.TransferCardToCard(ctx, w, testPIN, "card-1", "card-2", dec("400")))

	// Cache reflects both updated snapshots.
	source, err := w.CachedCard("card-1")
	require.NoError(t, err)
	target, err := w.CachedCard("card-2")
	require.NoError(t, err)
	assert.True(t, source.Balance.Value().Equal(dec("100")))
	assert.True(t, target.Balance.Value().Equal(dec("600")))

	// And the persisted wallet agrees.
	loaded, err := d.svc.Load(ctx, w.ID)
	require.NoError(t, err)
	reloaded, err := loaded.CachedCard("card-2")
	require.NoError(t, err)
	assert.True(t, reloaded.Balance.Value().Equal(dec("600")))
}

func TestWalletService_TransferCardToCard_SameCard(t *testing.T) {
	d := setupWalletService(t)
	ctx := context.Background()
	w := d.newWallet(t, "0")
	d.newCardInWallet(t, w, "card-1", "500")
	d.newCardInWallet(t, w, "card-2", "200")

	err := d.svc.TransferCardToCard(ctx, w, testPIN, "card-1", "card-1", dec("1"))
	require.Error(t, err)
	assert.Equal(t, "WAL_004", apperror.CodeOf(err))
}

func TestWalletService_TransferCardToCard_InsufficientCards(t *testing.T) {
	d := setupWalletService(t)
	ctx := context.Background()
	w := d.newWallet(t, "0")
	d.newCardInWallet(t, w, "card-1", "500")

	err := d.svc.TransferCardToCard(ctx, w, testPIN, "card-1", "card-2", dec("10"))
	require.Error(t, err)
	assert.Equal(t, "WAL_003", apperror.CodeOf(err))
}

func TestWalletService_TransferCardToCard_WrongPIN(t *testing.T) {
	d := setupWalletService(t)
	ctx := context.Background()
	w := d.newWallet(t, "0")
	d.newCardInWallet(t, w, "card-1", "500")
	d.newCardInWallet(t, w, "card-2", "200")

	err := d.svc.TransferCardToCard(ctx, w, "0000", "card-1", "card-2", dec("100"))
	require.Error(t, err)
	assert.Equal(t, "WAL_001", apperror.CodeOf(err))

	stored, err := d.cards.GetByNumber(ctx, "card-1")
	require.NoError(t, err)
	assert.True(t, stored.Balance.Value().Equal(dec("500")))
}

// ==================== Lookup ====================

func TestWalletService_GetByCardNumber(t *testing.T) {
	d := setupWalletService(t)
	ctx := context.Background()
	w := d.newWallet(t, "0")
	d.newCardInWallet(t, w, "card-1", "25")

	card, err := d.svc.GetByCardNumber(ctx, "card-1")
	require.NoError(t, err)
	require.NotNil(t, card)
	assert.True(t, card.Balance.Value().Equal(dec("25")))

	missing, err := d.svc.GetByCardNumber(ctx, "card-9")
	require.NoError(t, err)
	assert.Nil(t, missing)

	_, err = d.svc.GetByCardNumber(ctx, " ")
	assert.Equal(t, "WAL_002", apperror.CodeOf(err))
}
