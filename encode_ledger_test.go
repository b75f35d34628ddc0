package captable

import (
	"bytes"
	"slices"
	"strings"
	"testing"
)

func TestEncodeDecodeLedger(t *testing.T) {
	l := NewLedger()
	mustAppend(l,
		NewInit(MustParse("2024-01-01"), "incorporation", "acme", "USD"),
		NewDeclareClass(MustParse("2024-01-01"), "", ShareClass{
			Name: "common", Kind: ClassCommon, Authorized: Q(10_000_000),
		}),
		NewDeclareClass(MustParse("2024-02-01"), "", ShareClass{
			Name: "series-a", Kind: ClassSeries, Authorized: Q(5_000_000),
			LiquidationMultiple: 1, ConversionRatio: 1, Seniority: 1,
		}),
		NewIssue(MustParse("2024-01-10"), "founder stock", "alice", HolderFounder, "common", Q(5_000_000), USD(0.001)),
		NewIssue(MustParse("2024-02-10"), "", "fund", HolderInvestor, "series-a", Q(1_000_000), USD(2)),
		NewTransfer(MustParse("2024-03-01"), "secondary", "common", "alice", HolderFounder, "bob", HolderInvestor, Q(100_000), USD(1.50)),
		NewExercise(MustParse("2024-04-01"), "", "carol", HolderEmployee, "common", Q(10_000), USD(0.25), "grant-1"),
		NewConvert(MustParse("2024-05-01"), "", "fund", HolderInvestor, "series-a", "common", Q(50_000), 1),
		NewBuyback(MustParse("2024-06-01"), "", "bob", HolderInvestor, "common", Q(20_000), USD(2)),
		NewCancel(MustParse("2024-07-01"), "forfeiture", "carol", HolderEmployee, "common", Q(1_000)),
	)

	var buf bytes.Buffer
	if err := EncodeLedger(&buf, l); err != nil {
		t.Fatal(err)
	}

	decoded, err := DecodeLedger(&buf)
	if err != nil {
		t.Fatal(err)
	}

	want := slices.Collect(l.AllEntries())
	got := slices.Collect(decoded.AllEntries())
	if len(got) != len(want) {
		t.Fatalf("decoded %d entries, want %d", len(got), len(want))
	}
	for i := range want {
		if !want[i].Equal(got[i]) {
			t.Errorf("entry %d round-trip mismatch:\n got %#v\nwant %#v", i, got[i], want[i])
		}
	}

	if decoded.Organization() != "acme" || decoded.Currency() != "USD" {
		t.Errorf("decoded header = %s/%s, want acme/USD", decoded.Organization(), decoded.Currency())
	}
	if !decoded.TotalIssued(MustParse("2024-12-31")).Equal(l.TotalIssued(MustParse("2024-12-31"))) {
		t.Error("decoded ledger computes a different total issued count")
	}
}

func TestDecodeLedger(t *testing.T) {
	const src = `{"command":"init","date":"2024-01-01","organization":"acme","currency":"USD"}

{"command":"declare-class","date":"2024-01-01","name":"common","classKind":"common","authorized":1000000}
{"command":"issue","date":"2024-01-10","holder":"alice","kind":"founder","class":"common","shares":500000,"price":0.001,"currency":"USD"}
`
	l, err := DecodeLedger(strings.NewReader(src))
	if err != nil {
		t.Fatal(err)
	}
	if got := len(slices.Collect(l.AllEntries())); got != 3 {
		t.Fatalf("decoded %d entries, want 3 (empty lines skipped)", got)
	}
	if got := l.Holdings("alice", "common", MustParse("2024-12-31")); !got.Equal(Q(500_000)) {
		t.Errorf("alice holds %s, want 500000", got)
	}
}

func TestDecodeLedger_sortsByDate(t *testing.T) {
	// entries arriving out of order are sorted chronologically on decode
	const src = `{"command":"init","date":"2024-01-01","organization":"acme","currency":"USD"}
{"command":"declare-class","date":"2024-01-01","name":"common","classKind":"common","authorized":1000000}
{"command":"issue","date":"2024-06-10","holder":"bob","kind":"founder","class":"common","shares":1000}
{"command":"issue","date":"2024-01-10","holder":"alice","kind":"founder","class":"common","shares":1000}
`
	l, err := DecodeLedger(strings.NewReader(src))
	if err != nil {
		t.Fatal(err)
	}
	var dates []Date
	for e := range l.AllEntries() {
		dates = append(dates, e.When())
	}
	if !slices.IsSortedFunc(dates, func(a, b Date) int {
		switch {
		case a.Before(b):
			return -1
		case a.After(b):
			return 1
		}
		return 0
	}) {
		t.Errorf("entries not chronological after decode: %v", dates)
	}
}

func TestDecodeLedger_errors(t *testing.T) {
	testCases := []struct {
		name string
		src  string
	}{
		{"unknown command", `{"command":"split","date":"2024-01-01"}`},
		{"invalid json", `{"command":"issue",`},
		{"invalid date", `{"command":"init","date":"tomorrow-ish","organization":"acme","currency":"USD"}`},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := DecodeLedger(strings.NewReader(tc.src)); err == nil {
				t.Errorf("DecodeLedger accepted %q", tc.src)
			}
		})
	}
}
