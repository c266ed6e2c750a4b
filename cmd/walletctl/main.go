// Command walletctl is the demo harness around the wallet core: it
// wires the configured snapshot store to the services and exposes the
// ledger operations as subcommands.
package main

import (
	"context"
	"flag"
	"os"
	"path"

	"github.com/google/subcommands"
)

func main() {
	commander := subcommands.NewCommander(flag.CommandLine, path.Base(os.Args[0]))

	commander.Register(commander.HelpCommand(), "")
	commander.Register(commander.FlagsCommand(), "")

	commander.Register(&initCmd{}, "wallet")
	commander.Register(&addCardCmd{}, "wallet")
	commander.Register(&removeCardCmd{}, "wallet")
	commander.Register(&fundCmd{}, "wallet")
	commander.Register(&cashinCmd{}, "wallet")
	commander.Register(&transferCmd{}, "wallet")
	commander.Register(&showCmd{}, "wallet")

	commander.Register(&createCardCmd{}, "cards")
	commander.Register(&freezeCmd{}, "cards")
	commander.Register(&unfreezeCmd{}, "cards")

	flag.Parse()
	os.Exit(int(commander.Execute(context.Background())))
}
