// Package cmd implements the CLI application to manage a cap table.
package cmd

import (
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"os"

	"github.com/equityledger/captable"
	"github.com/google/subcommands"
)

// Register the subcommands.
// A main package will call Register() to allow subcommands, and Execute() on the user-selected one.
func Register(c *subcommands.Commander) {
	c.Register(&initCmd{}, "ledger")
	c.Register(&declareClassCmd{}, "ledger")
	c.Register(&issueCmd{}, "ledger")
	c.Register(&transferCmd{}, "ledger")
	c.Register(&convertCmd{}, "ledger")
	c.Register(&buybackCmd{}, "ledger")
	c.Register(&cancelSharesCmd{}, "ledger")
	c.Register(&fmtCmd{}, "ledger")
	c.Register(&importCmd{}, "ledger")

	c.Register(&ownershipCmd{}, "reports")
	c.Register(&waterfallCmd{}, "reports")
	c.Register(&simulateCmd{}, "reports")
	c.Register(&logCmd{}, "reports")

	c.Register(&poolCmd{}, "grants")
	c.Register(&grantCmd{}, "grants")
	c.Register(&approveCmd{}, "grants")
	c.Register(&vestingCmd{}, "grants")
	c.Register(&exerciseCmd{}, "grants")
	c.Register(&cancelGrantCmd{}, "grants")

	c.Register(&topicCmd{}, "documentation")
	c.Register(&assistCmd{}, "documentation")
}

// as a CLI application, it has a very short lived lifecycle, so it is ok to use global variables.

var ledgerFile = flag.String("ledger-file", "captable.jsonl", "Path to the ledger file containing entries (JSONL format)")
var grantsFile = flag.String("grants-file", "grants.jsonl", "Path to the grant book file (JSONL format)")

// DecodeLedger reads the app ledger file.
func DecodeLedger() (*captable.Ledger, error) {
	f, err := os.Open(*ledgerFile)
	if errors.Is(err, fs.ErrNotExist) {
		return captable.NewLedger(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("could not open ledger file %q: %w", *ledgerFile, err)
	}
	defer f.Close()
	return captable.DecodeLedger(f)
}

// AppendEntry validates an entry against the app ledger and appends it to the
// ledger file.
func AppendEntry(e captable.Entry) subcommands.ExitStatus {
	ledger, err := DecodeLedger()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	valid, err := ledger.Validate(e)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: invalid %s entry: %v\n", e.What(), err)
		return subcommands.ExitFailure
	}

	// Open the file in append mode, creating it if it doesn't exist.
	f, err := os.OpenFile(*ledgerFile, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening ledger file %q: %v\n", *ledgerFile, err)
		return subcommands.ExitFailure
	}
	defer f.Close()

	if err := captable.EncodeEntry(f, valid); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing to ledger file %q: %v\n", *ledgerFile, err)
		return subcommands.ExitFailure
	}

	fmt.Printf("Successfully appended %s entry to %s\n", valid.What(), *ledgerFile)
	return subcommands.ExitSuccess
}

// DecodeGrantBook reads the app grant book file.
func DecodeGrantBook() (*captable.GrantBook, error) {
	f, err := os.Open(*grantsFile)
	if err != nil {
		return nil, fmt.Errorf("could not open grant book %q (run 'pool' to create one): %w", *grantsFile, err)
	}
	defer f.Close()
	return captable.DecodeGrantBook(f)
}

// SaveGrantBook rewrites the app grant book file.
func SaveGrantBook(b *captable.GrantBook) subcommands.ExitStatus {
	f, err := os.Create(*grantsFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening grant book %q: %v\n", *grantsFile, err)
		return subcommands.ExitFailure
	}
	defer f.Close()

	if err := captable.EncodeGrantBook(f, b); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing grant book %q: %v\n", *grantsFile, err)
		return subcommands.ExitFailure
	}
	return subcommands.ExitSuccess
}
