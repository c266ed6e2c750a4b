package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/google/subcommands"
)

func fail(err error) subcommands.ExitStatus {
	fmt.Fprintln(os.Stderr, "Error:", err)
	return subcommands.ExitFailure
}

// ---- init ----

type initCmd struct {
	sortCode      string
	accountNumber string
	balance       string
	pin           string
}

func (*initCmd) Name() string     { return "init" }
func (*initCmd) Synopsis() string { return "create a bank account and the wallet around it" }
func (*initCmd) Usage() string {
	return `walletctl init -sort-code <6 digits> -account-number <8 digits> [-balance <amount>] -pin <pin>

  Creates the holder's bank account and a wallet bound to it, and prints the wallet ID.
`
}

func (c *initCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.sortCode, "sort-code", "", "Bank sort code (6 numeric digits).")
	f.StringVar(&c.accountNumber, "account-number", "", "Bank account number (8 numeric digits).")
	f.StringVar(&c.balance, "balance", "0", "Opening account balance.")
	f.StringVar(&c.pin, "pin", "", "Wallet PIN.")
}

func (c *initCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	a, err := newApp(ctx)
	if err != nil {
		return fail(err)
	}
	defer a.cleanup()

	opening, err := parseAmount(c.balance)
	if err != nil {
		return fail(err)
	}
	account, err := a.accounts.Create(ctx, c.sortCode, c.accountNumber, opening)
	if err != nil {
		return fail(err)
	}
	w, err := a.wallets.Create(ctx, c.pin, account)
	if err != nil {
		return fail(err)
	}

	fmt.Printf("wallet %s created (account %s-%s, balance %s)\n",
		w.ID, account.SortCode, account.AccountNumber, account.Balance)
	return subcommands.ExitSuccess
}

// ---- create-card ----

type createCardCmd struct {
	holder string
	number string
	month  int
	year   int
}

func (*createCardCmd) Name() string     { return "create-card" }
func (*createCardCmd) Synopsis() string { return "create and persist a new card" }
func (*createCardCmd) Usage() string {
	return `walletctl create-card -holder <name> -number <card number> -month <mm> -year <yyyy>
`
}

func (c *createCardCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.holder, "holder", "", "Card holder name.")
	f.StringVar(&c.number, "number", "", "Card number.")
	f.IntVar(&c.month, "month", 0, "Expiry month.")
	f.IntVar(&c.year, "year", 0, "Expiry year.")
}

func (c *createCardCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	a, err := newApp(ctx)
	if err != nil {
		return fail(err)
	}
	defer a.cleanup()

	card, err := a.cards.Create(ctx, c.holder, c.number, c.month, c.year)
	if err != nil {
		return fail(err)
	}
	fmt.Printf("card %s created for %s\n", card.CardNumber, card.HolderName)
	return subcommands.ExitSuccess
}

// ---- add-card / remove-card ----

type addCardCmd struct {
	wallet string
	number string
}

func (*addCardCmd) Name() string     { return "add-card" }
func (*addCardCmd) Synopsis() string { return "add an existing card to a wallet" }
func (*addCardCmd) Usage() string {
	return `walletctl add-card -wallet <id> -number <card number>
`
}

func (c *addCardCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.wallet, "wallet", "", "Wallet ID.")
	f.StringVar(&c.number, "number", "", "Card number.")
}

func (c *addCardCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	a, err := newApp(ctx)
	if err != nil {
		return fail(err)
	}
	defer a.cleanup()

	w, err := a.loadWallet(ctx, c.wallet)
	if err != nil {
		return fail(err)
	}
	card, err := a.wallets.AddCard(ctx, w, c.number)
	if err != nil {
		return fail(err)
	}
	fmt.Printf("card %s added, wallet now holds %d card(s)\n", card.CardNumber, w.TotalCards)
	return subcommands.ExitSuccess
}

type removeCardCmd struct {
	wallet string
	number string
	all    bool
}

func (*removeCardCmd) Name() string     { return "remove-card" }
func (*removeCardCmd) Synopsis() string { return "remove a card (or all cards) from a wallet" }
func (*removeCardCmd) Usage() string {
	return `walletctl remove-card -wallet <id> [-number <card number> | -all]
`
}

func (c *removeCardCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.wallet, "wallet", "", "Wallet ID.")
	f.StringVar(&c.number, "number", "", "Card number.")
	f.BoolVar(&c.all, "all", false, "Remove every card.")
}

func (c *removeCardCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	a, err := newApp(ctx)
	if err != nil {
		return fail(err)
	}
	defer a.cleanup()

	w, err := a.loadWallet(ctx, c.wallet)
	if err != nil {
		return fail(err)
	}
	if c.all {
		if err := a.wallets.RemoveAllCards(ctx, w); err != nil {
			return fail(err)
		}
	} else if err := a.wallets.RemoveCard(ctx, w, c.number); err != nil {
		return fail(err)
	}
	fmt.Printf("wallet now holds %d card(s)\n", w.TotalCards)
	return subcommands.ExitSuccess
}

// ---- freeze / unfreeze ----

type freezeCmd struct {
	number string
}

func (*freezeCmd) Name() string     { return "freeze" }
func (*freezeCmd) Synopsis() string { return "block a card" }
func (*freezeCmd) Usage() string {
	return `walletctl freeze -number <card number>
`
}

func (c *freezeCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.number, "number", "", "Card number.")
}

func (c *freezeCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	a, err := newApp(ctx)
	if err != nil {
		return fail(err)
	}
	defer a.cleanup()

	card, err := a.cards.Freeze(ctx, c.number)
	if err != nil {
		return fail(err)
	}
	fmt.Printf("card %s is frozen\n", card.CardNumber)
	return subcommands.ExitSuccess
}

type unfreezeCmd struct {
	number string
}

func (*unfreezeCmd) Name() string     { return "unfreeze" }
func (*unfreezeCmd) Synopsis() string { return "unblock a card" }
func (*unfreezeCmd) Usage() string {
	return `walletctl unfreeze -number <card number>
`
}

func (c *unfreezeCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.number, "number", "", "Card number.")
}

func (c *unfreezeCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	a, err := newApp(ctx)
	if err != nil {
		return fail(err)
	}
	defer a.cleanup()

	card, err := a.cards.Unfreeze(ctx, c.number)
	if err != nil {
		return fail(err)
	}
	fmt.Printf("card %s is active\n", card.CardNumber)
	return subcommands.ExitSuccess
}

// ---- fund ----

type fundCmd struct {
	wallet string
	number string
	amount string
}

func (*fundCmd) Name() string     { return "fund" }
func (*fundCmd) Synopsis() string { return "set a wallet card's balance" }
func (*fundCmd) Usage() string {
	return `walletctl fund -wallet <id> -number <card number> -amount <amount>

  Funds a card in the wallet. The amount becomes the card's balance.
`
}

func (c *fundCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.wallet, "wallet", "", "Wallet ID.")
	f.StringVar(&c.number, "number", "", "Card number.")
	f.StringVar(&c.amount, "amount", "", "New balance.")
}

func (c *fundCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	a, err := newApp(ctx)
	if err != nil {
		return fail(err)
	}
	defer a.cleanup()

	w, err := a.loadWallet(ctx, c.wallet)
	if err != nil {
		return fail(err)
	}
	amount, err := parseAmount(c.amount)
	if err != nil {
		return fail(err)
	}
	card, err := a.wallets.AddFundsToCard(ctx, w, c.number, amount)
	if err != nil {
		return fail(err)
	}
	fmt.Printf("card %s balance is now %s\n", card.CardNumber, card.Balance)
	return subcommands.ExitSuccess
}

// ---- cashin ----

type cashinCmd struct {
	wallet string
	pin    string
	number string
	amount string
}

func (*cashinCmd) Name() string     { return "cashin" }
func (*cashinCmd) Synopsis() string { return "transfer from a card onto the wallet's bank account" }
func (*cashinCmd) Usage() string {
	return `walletctl cashin -wallet <id> -pin <pin> -number <card number> -amount <amount>
`
}

func (c *cashinCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.wallet, "wallet", "", "Wallet ID.")
	f.StringVar(&c.pin, "pin", "", "Wallet PIN.")
	f.StringVar(&c.number, "number", "", "Source card number.")
	f.StringVar(&c.amount, "amount", "", "Amount to move.")
}

func (c *cashinCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	a, err := newApp(ctx)
	if err != nil {
		return fail(err)
	}
	defer a.cleanup()

	w, err := a.loadWallet(ctx, c.wallet)
	if err != nil {
		return fail(err)
	}
	amount, err := parseAmount(c.amount)
	if err != nil {
		return fail(err)
	}
	if err := a.wallets.TransferToWallet(ctx, w, c.pin, c.number, amount); err != nil {
		return fail(err)
	}
	fmt.Printf("moved %s to the bank account (balance %s)\n", amount, w.BankAccount.Balance)
	return subcommands.ExitSuccess
}

// ---- transfer ----

type transferCmd struct {
	wallet string
	pin    string
	from   string
	to     string
	amount string
}

func (*transferCmd) Name() string     { return "transfer" }
func (*transferCmd) Synopsis() string { return "transfer between two wallet cards" }
func (*transferCmd) Usage() string {
	return `walletctl transfer -wallet <id> -pin <pin> -from <card> -to <card> -amount <amount>
`
}

func (c *transferCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.wallet, "wallet", "", "Wallet ID.")
	f.StringVar(&c.pin, "pin", "", "Wallet PIN.")
	f.StringVar(&c.from, "from", "", "Source card number.")
	f.StringVar(&c.to, "to", "", "Target card number.")
	f.StringVar(&c.amount, "amount", "", "Amount to move.")
}

func (c *transferCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	a, err := newApp(ctx)
	if err != nil {
		return fail(err)
	}
	defer a.cleanup()

	w, err := a.loadWallet(ctx, c.wallet)
	if err != nil {
		return fail(err)
	}
	amount, err := parseAmount(c.amount)
	if err != nil {
		return fail(err)
	}
	if err := a.wallets.TransferCardToCard(ctx, w, c.pin, c.from, c.to, amount); err != nil {
		return fail(err)
	}
	fmt.Printf("moved %s from %s to %s\n", amount, c.from, c.to)
	return subcommands.ExitSuccess
}

// ---- show ----

type showCmd struct {
	wallet string
}

func (*showCmd) Name() string     { return "show" }
func (*showCmd) Synopsis() string { return "print a wallet summary" }
func (*showCmd) Usage() string {
	return `walletctl show -wallet <id>
`
}

func (c *showCmd) SetFlags(f *flag.FlagSet) {
	f.StringVar(&c.wallet, "wallet", "", "Wallet ID.")
}

func (c *showCmd) Execute(ctx context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	a, err := newApp(ctx)
	if err != nil {
		return fail(err)
	}
	defer a.cleanup()

	w, err := a.loadWallet(ctx, c.wallet)
	if err != nil {
		return fail(err)
	}

	fmt.Printf("wallet %s\n", w.ID)
	fmt.Printf("  account:       %s-%s (balance %s)\n",
		w.BankAccount.SortCode, w.BankAccount.AccountNumber, w.BankAccount.Balance)
	fmt.Printf("  wallet amount: %s\n", w.WalletAmount)
	fmt.Printf("  last transfer: %s\n", w.LastTransfer)
	fmt.Printf("  cards (%d):\n", w.TotalCards)
	for number := range w.Cards {
		card, err := w.CachedCard(number)
		if err != nil {
			return fail(err)
		}
		state := "active"
		if card.Blocked {
			state = "frozen"
		}
		fmt.Printf("    %s  %-8s balance %s\n", card.CardNumber, state, card.Balance)
	}
	return subcommands.ExitSuccess
}
