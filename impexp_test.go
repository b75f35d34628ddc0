package captable

import (
	"strings"
	"testing"
)

func TestImportEntries(t *testing.T) {
	const src = `{
	  "entries": [
	    {"holder": "alice", "kind": "founder", "class": "common", "shares": 500000, "price": 0.001, "date": "2024-01-10"},
	    {"holder": "fund", "kind": "investor", "class": "series-a", "shares": 100000, "price": 2.5, "date": "2024-02-10"},
	    {"holder": "bob", "kind": "founder", "class": "common", "shares": -10000, "price": 1, "date": "2024-06-01"}
	  ]
	}`

	entries, err := ImportEntries(strings.NewReader(src), DefaultImportProfile, "USD")
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 3 {
		t.Fatalf("imported %d entries, want 3", len(entries))
	}

	issue, ok := entries[0].(Issue)
	if !ok {
		t.Fatalf("entry 0 is %T, want Issue", entries[0])
	}
	if issue.Holder != "alice" || issue.Kind != HolderFounder || issue.Class != "common" {
		t.Errorf("entry 0 = %s/%s/%s", issue.Holder, issue.Kind, issue.Class)
	}
	if !issue.Shares.Equal(Q(500_000)) || !issue.Price.Equal(USD(0.001)) {
		t.Errorf("entry 0 = %s shares at %s", issue.Shares, issue.Price)
	}
	if issue.When() != MustParse("2024-01-10") {
		t.Errorf("entry 0 date = %s, want 2024-01-10", issue.When())
	}

	// negative share counts import as buybacks
	buyback, ok := entries[2].(Buyback)
	if !ok {
		t.Fatalf("entry 2 is %T, want Buyback", entries[2])
	}
	if !buyback.Shares.Equal(Q(10_000)) {
		t.Errorf("entry 2 = %s shares, want the positive 10000", buyback.Shares)
	}
}

func TestImportEntries_customProfile(t *testing.T) {
	// a vendor export with its own field names
	const src = `{
	  "captable": {
	    "rows": [
	      {"shareholder": "alice", "security": "common", "quantity": 1000, "asOf": "2024-01-10"}
	    ]
	  }
	}`
	profile := ImportProfile{
		Entries: "$.captable.rows[:]",
		Holder:  "$.shareholder",
		Class:   "$.security",
		Shares:  "$.quantity",
		Date:    "$.asOf",
	}

	entries, err := ImportEntries(strings.NewReader(src), profile, "EUR")
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Fatalf("imported %d entries, want 1", len(entries))
	}
	issue := entries[0].(Issue)
	if issue.Holder != "alice" || !issue.Shares.Equal(Q(1000)) {
		t.Errorf("imported %s with %s shares", issue.Holder, issue.Shares)
	}
	// no kind path: defaults to other
	if issue.Kind != HolderOther {
		t.Errorf("imported kind = %s, want other", issue.Kind)
	}
	// no price path: the entry stays unpriced
	if !issue.Price.IsZero() {
		t.Errorf("imported price = %s, want zero", issue.Price)
	}
}

func TestImportEntries_appendsThroughValidation(t *testing.T) {
	const src = `{"entries":[{"holder":"alice","kind":"founder","class":"common","shares":1000,"price":1,"date":"2024-01-10"}]}`
	entries, err := ImportEntries(strings.NewReader(src), DefaultImportProfile, "USD")
	if err != nil {
		t.Fatal(err)
	}

	l := testLedger(1_000_000)
	mustAppend(l, entries...)
	if got := l.Holdings("alice", "common", MustParse("2024-12-31")); !got.Equal(Q(1000)) {
		t.Errorf("alice holds %s after import, want 1000", got)
	}
}

func TestImportEntries_errors(t *testing.T) {
	testCases := []struct {
		name string
		src  string
	}{
		{"not json", `"entries": [`},
		{"entries not a list", `{"entries": 42}`},
		{"missing holder", `{"entries":[{"class":"common","shares":1,"date":"2024-01-10"}]}`},
		{"bad date", `{"entries":[{"holder":"a","class":"common","shares":1,"date":"soon"}]}`},
		{"shares not a number", `{"entries":[{"holder":"a","class":"common","shares":"many","date":"2024-01-10"}]}`},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := ImportEntries(strings.NewReader(tc.src), DefaultImportProfile, "USD"); err == nil {
				t.Errorf("ImportEntries accepted %q", tc.src)
			}
		})
	}
}
