package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/equityledger/captable"
	"github.com/google/subcommands"
)

// importCmd converts a vendor JSON export into ledger entries.
type importCmd struct {
	file    string
	dryRun  bool
	profile captable.ImportProfile
}

func (*importCmd) Name() string     { return "import" }
func (*importCmd) Synopsis() string { return "import ownership records from a vendor JSON export" }
func (*importCmd) Usage() string {
	return `import -file <export.json> [-dry-run] [jsonpath overrides...]

  Converts a vendor JSON export into ledger entries: positive share
  counts become issuances, negative ones buybacks. The default profile
  reads {"entries":[{"holder":…,"class":…,"shares":…,"date":…}]};
  every field selector can be overridden with a JSONPath expression to
  match another vendor's layout.
`
}

func (c *importCmd) SetFlags(f *flag.FlagSet) {
	c.profile = captable.DefaultImportProfile
	f.StringVar(&c.file, "file", "", "Vendor JSON export to import")
	f.BoolVar(&c.dryRun, "dry-run", false, "Validate and display the entries without writing the ledger")
	f.StringVar(&c.profile.Entries, "entries", c.profile.Entries, "JSONPath selecting the record list")
	f.StringVar(&c.profile.Holder, "holder", c.profile.Holder, "JSONPath selecting the holder name in a record")
	f.StringVar(&c.profile.Kind, "kind", c.profile.Kind, "JSONPath selecting the holder kind in a record")
	f.StringVar(&c.profile.Class, "class", c.profile.Class, "JSONPath selecting the share class in a record")
	f.StringVar(&c.profile.Shares, "shares", c.profile.Shares, "JSONPath selecting the signed share count in a record")
	f.StringVar(&c.profile.Price, "price", c.profile.Price, "JSONPath selecting the price per share in a record")
	f.StringVar(&c.profile.Date, "date", c.profile.Date, "JSONPath selecting the effective date in a record")
}

func (c *importCmd) Execute(_ context.Context, f *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	if c.file == "" {
		f.Usage()
		return subcommands.ExitUsageError
	}

	in, err := os.Open(c.file)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening import file: %v\n", err)
		return subcommands.ExitFailure
	}
	defer in.Close()

	ledger, err := DecodeLedger()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading ledger: %v\n", err)
		return subcommands.ExitFailure
	}

	entries, err := captable.ImportEntries(in, c.profile, ledger.Currency())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error importing %q: %v\n", c.file, err)
		return subcommands.ExitFailure
	}
	if len(entries) == 0 {
		fmt.Fprintln(os.Stderr, "Warning: no records found to import.")
		return subcommands.ExitSuccess
	}

	// Validate everything before writing anything: a bad record aborts the
	// whole import.
	valid := make([]captable.Entry, 0, len(entries))
	for _, e := range entries {
		v, err := ledger.Validate(e)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: invalid imported %s entry: %v\n", e.What(), err)
			return subcommands.ExitFailure
		}
		ledger.Append(v)
		valid = append(valid, v)
	}

	if c.dryRun {
		fmt.Printf("Dry run: %d entries from %s validate against %s\n", len(valid), c.file, *ledgerFile)
		return subcommands.ExitSuccess
	}

	out, err := os.OpenFile(*ledgerFile, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening ledger file %q: %v\n", *ledgerFile, err)
		return subcommands.ExitFailure
	}
	defer out.Close()

	for _, v := range valid {
		if err := captable.EncodeEntry(out, v); err != nil {
			fmt.Fprintf(os.Stderr, "Error writing to ledger file %q: %v\n", *ledgerFile, err)
			return subcommands.ExitFailure
		}
	}
	fmt.Printf("Successfully imported %d entries from %s to %s\n", len(valid), c.file, *ledgerFile)
	return subcommands.ExitSuccess
}
