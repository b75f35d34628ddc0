package cmd

import (
	"context"
	"flag"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/subcommands"
)

// Helper function to create a temporary ledger file
func createTempLedger(t *testing.T, content string) string {
	t.Helper()
	tmp := t.TempDir()
	tmpfile, err := os.Create(filepath.Join(tmp, "test_captable.jsonl"))
	if err != nil {
		t.Fatalf("Failed to create temp file: %v", err)
	}
	defer tmpfile.Close()

	if _, err := tmpfile.WriteString(content); err != nil {
		t.Fatalf("Failed to write to temp file: %v", err)
	}
	return tmpfile.Name()
}

// swapLedgerFile points the global ledger file at a temp path for one test.
func swapLedgerFile(t *testing.T, path string) {
	t.Helper()
	oldLedgerFile := ledgerFile
	ledgerFile = &path
	t.Cleanup(func() { ledgerFile = oldLedgerFile })
}

func swapGrantsFile(t *testing.T, path string) {
	t.Helper()
	oldGrantsFile := grantsFile
	grantsFile = &path
	t.Cleanup(func() { grantsFile = oldGrantsFile })
}

func TestFmtCommand(t *testing.T) {
	// Lines are stored out of order and with a noisy field order; fmt must
	// write them back sorted and canonical.
	original := `{"shares":1000000,"command":"issue","date":"2024-01-03","holder":"alice","kind":"founder","class":"common"}
{"command":"declare-class","date":"2024-01-02","name":"common","classKind":"common","authorized":10000000}
{"currency":"USD","command":"init","date":"2024-01-01","organization":"acme"}
`
	expected := `{"command":"init","date":"2024-01-01","organization":"acme","currency":"USD"}
{"command":"declare-class","date":"2024-01-02","name":"common","classKind":"common","authorized":10000000}
{"command":"issue","date":"2024-01-03","holder":"alice","kind":"founder","class":"common","shares":1000000}
`

	tempLedgerFile := createTempLedger(t, original)
	swapLedgerFile(t, tempLedgerFile)

	cmd := &fmtCmd{}
	f := flag.NewFlagSet("test", flag.ContinueOnError)
	cmd.SetFlags(f)

	status := cmd.Execute(context.Background(), f)
	if status != subcommands.ExitSuccess {
		t.Fatalf("Expected ExitSuccess, got %v", status)
	}

	gotContent, err := os.ReadFile(tempLedgerFile)
	if err != nil {
		t.Fatalf("Failed to read formatted ledger file: %v", err)
	}
	if strings.TrimSpace(string(gotContent)) != strings.TrimSpace(expected) {
		t.Errorf("Canonical output mismatch.\nGot:\n%s\nWant:\n%s", string(gotContent), expected)
	}
}

func TestIssueCommand(t *testing.T) {
	original := `{"command":"init","date":"2024-01-01","organization":"acme","currency":"USD"}
{"command":"declare-class","date":"2024-01-02","name":"common","classKind":"common","authorized":10000000}
`
	tempLedgerFile := createTempLedger(t, original)
	swapLedgerFile(t, tempLedgerFile)

	cmd := &issueCmd{}
	f := flag.NewFlagSet("test", flag.ContinueOnError)
	cmd.SetFlags(f)
	f.Set("d", "2024-01-10")
	f.Set("holder", "alice")
	f.Set("holder-kind", "founder")
	f.Set("class", "common")
	f.Set("shares", "6000000")

	status := cmd.Execute(context.Background(), f)
	if status != subcommands.ExitSuccess {
		t.Fatalf("Expected ExitSuccess, got %v", status)
	}

	gotContent, err := os.ReadFile(tempLedgerFile)
	if err != nil {
		t.Fatalf("Failed to read ledger file: %v", err)
	}
	want := `{"command":"issue","date":"2024-01-10","holder":"alice","kind":"founder","class":"common","shares":6000000}`
	lines := strings.Split(strings.TrimSpace(string(gotContent)), "\n")
	if got := lines[len(lines)-1]; got != want {
		t.Errorf("Appended entry mismatch.\nGot:  %s\nWant: %s", got, want)
	}
}

func TestIssueCommand_overAuthorized(t *testing.T) {
	original := `{"command":"init","date":"2024-01-01","organization":"acme","currency":"USD"}
{"command":"declare-class","date":"2024-01-02","name":"common","classKind":"common","authorized":100}
`
	tempLedgerFile := createTempLedger(t, original)
	swapLedgerFile(t, tempLedgerFile)

	cmd := &issueCmd{}
	f := flag.NewFlagSet("test", flag.ContinueOnError)
	cmd.SetFlags(f)
	f.Set("holder", "alice")
	f.Set("class", "common")
	f.Set("shares", "101")

	if status := cmd.Execute(context.Background(), f); status != subcommands.ExitFailure {
		t.Fatalf("Expected ExitFailure, got %v", status)
	}

	// The rejected entry must not be written.
	gotContent, err := os.ReadFile(tempLedgerFile)
	if err != nil {
		t.Fatalf("Failed to read ledger file: %v", err)
	}
	if strings.TrimSpace(string(gotContent)) != strings.TrimSpace(original) {
		t.Errorf("Ledger was modified by a rejected entry:\n%s", string(gotContent))
	}
}

func TestPoolCommand(t *testing.T) {
	original := `{"command":"init","date":"2024-01-01","organization":"acme","currency":"USD"}
{"command":"declare-class","date":"2024-01-02","name":"options","classKind":"options","authorized":1000000}
`
	swapLedgerFile(t, createTempLedger(t, original))
	swapGrantsFile(t, filepath.Join(t.TempDir(), "test_grants.jsonl"))

	cmd := &poolCmd{}
	f := flag.NewFlagSet("test", flag.ContinueOnError)
	cmd.SetFlags(f)
	f.Set("class", "options")
	f.Set("total", "1000000")

	if status := cmd.Execute(context.Background(), f); status != subcommands.ExitSuccess {
		t.Fatalf("Expected ExitSuccess, got %v", status)
	}

	book, err := DecodeGrantBook()
	if err != nil {
		t.Fatalf("Failed to decode created grant book: %v", err)
	}
	if book.Pool().Class != "options" || !book.Available().IsPositive() {
		t.Errorf("Unexpected pool: class=%q available=%s", book.Pool().Class, book.Available())
	}

	// Creating the pool twice must fail.
	if status := cmd.Execute(context.Background(), f); status != subcommands.ExitFailure {
		t.Errorf("Expected ExitFailure on second pool creation, got %v", status)
	}
}

func TestPoolCommand_undeclaredClass(t *testing.T) {
	original := `{"command":"init","date":"2024-01-01","organization":"acme","currency":"USD"}
`
	swapLedgerFile(t, createTempLedger(t, original))
	swapGrantsFile(t, filepath.Join(t.TempDir(), "test_grants.jsonl"))

	cmd := &poolCmd{}
	f := flag.NewFlagSet("test", flag.ContinueOnError)
	cmd.SetFlags(f)
	f.Set("class", "options")
	f.Set("total", "1000000")

	if status := cmd.Execute(context.Background(), f); status != subcommands.ExitFailure {
		t.Fatalf("Expected ExitFailure, got %v", status)
	}
}

func TestGrantAndExerciseFlow(t *testing.T) {
	original := `{"command":"init","date":"2024-01-01","organization":"acme","currency":"USD"}
{"command":"declare-class","date":"2024-01-02","name":"options","classKind":"options","authorized":1000000}
`
	tempLedgerFile := createTempLedger(t, original)
	swapLedgerFile(t, tempLedgerFile)
	swapGrantsFile(t, filepath.Join(t.TempDir(), "test_grants.jsonl"))

	run := func(t *testing.T, c subcommands.Command, flags map[string]string) subcommands.ExitStatus {
		t.Helper()
		f := flag.NewFlagSet("test", flag.ContinueOnError)
		c.SetFlags(f)
		for k, v := range flags {
			if err := f.Set(k, v); err != nil {
				t.Fatalf("Failed to set flag %q: %v", k, err)
			}
		}
		return c.Execute(context.Background(), f)
	}

	if status := run(t, &poolCmd{}, map[string]string{"class": "options", "total": "100000"}); status != subcommands.ExitSuccess {
		t.Fatalf("pool: expected ExitSuccess, got %v", status)
	}
	if status := run(t, &grantCmd{}, map[string]string{
		"grantee": "carol", "shares": "48000", "price": "0.25",
		"start": "2024-01-01", "months": "48", "cliff": "12",
	}); status != subcommands.ExitSuccess {
		t.Fatalf("grant: expected ExitSuccess, got %v", status)
	}

	book, err := DecodeGrantBook()
	if err != nil {
		t.Fatalf("Failed to decode grant book: %v", err)
	}
	var id string
	for g := range book.AllGrants() {
		id = g.ID
	}
	if id == "" {
		t.Fatal("grant was not recorded")
	}

	if status := run(t, &approveCmd{}, map[string]string{"id": id, "d": "2025-06-01"}); status != subcommands.ExitSuccess {
		t.Fatalf("approve: expected ExitSuccess, got %v", status)
	}
	if status := run(t, &exerciseCmd{}, map[string]string{"id": id, "shares": "1000", "d": "2025-06-01"}); status != subcommands.ExitSuccess {
		t.Fatalf("exercise: expected ExitSuccess, got %v", status)
	}

	// The exercise lands on both files: the grant book and the ledger.
	book, err = DecodeGrantBook()
	if err != nil {
		t.Fatalf("Failed to decode grant book: %v", err)
	}
	g, err := book.Grant(id)
	if err != nil {
		t.Fatal(err)
	}
	if g.Exercised.String() != "1000" {
		t.Errorf("Exercised = %s, want 1000", g.Exercised)
	}

	ledger, err := DecodeLedger()
	if err != nil {
		t.Fatalf("Failed to decode ledger: %v", err)
	}
	if got := ledger.Holdings("carol", "options", g.Exercises[0].Date); got.String() != "1000" {
		t.Errorf("Holdings(carol) = %s, want 1000", got)
	}
}
