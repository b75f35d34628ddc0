// Command ect is the equity cap table CLI.
package main

import (
	"context"
	"flag"
	"os"
	"path"

	"github.com/equityledger/captable/cmd"
	"github.com/google/subcommands"
	"github.com/posener/complete/v2"
	"github.com/posener/complete/v2/predict"
)

// completion describes the command tree for shell completion. It must stay in
// sync with cmd.Register.
func completion() *complete.Command {
	files := map[string]complete.Predictor{
		"ledger-file": predict.Files("*.jsonl"),
		"grants-file": predict.Files("*.jsonl"),
	}
	sub := map[string]*complete.Command{
		"init":          {},
		"declare-class": {},
		"issue":         {},
		"transfer":      {},
		"convert":       {},
		"buyback":       {},
		"cancel-shares": {},
		"fmt":           {},
		"import":        {Flags: map[string]complete.Predictor{"file": predict.Files("*.json")}},
		"ownership":     {},
		"waterfall":     {},
		"simulate":      {},
		"log":           {},
		"pool":          {},
		"grant":         {},
		"approve":       {},
		"vesting":       {},
		"exercise":      {},
		"cancel-grant":  {},
		"topic":         {},
		"assist":        {},
		"help":          {},
		"flags":         {},
		"commands":      {},
	}
	return &complete.Command{Sub: sub, Flags: files}
}

func main() {
	name := path.Base(os.Args[0])
	completion().Complete(name)

	commander := subcommands.NewCommander(flag.CommandLine, name)
	commander.Register(commander.HelpCommand(), "documentation")
	commander.Register(commander.FlagsCommand(), "documentation")
	commander.Register(commander.CommandsCommand(), "documentation")
	cmd.Register(commander)

	flag.Parse()
	os.Exit(int(commander.Execute(context.Background())))
}
