package captable

import "testing"

func TestNewOwnershipReport(t *testing.T) {
	l := testLedger(20_000_000)
	mustAppend(l,
		NewDeclareClass(MustParse("2024-01-01"), "", ShareClass{
			Name: "series-a", Kind: ClassSeries, Authorized: Q(5_000_000), Seniority: 1,
		}),
		NewIssue(MustParse("2024-01-10"), "", "alice", HolderFounder, "common", Q(5_000_000), NO(0)),
		NewIssue(MustParse("2024-01-10"), "", "bob", HolderFounder, "common", Q(3_000_000), NO(0)),
		NewIssue(MustParse("2024-06-01"), "", "fund", HolderInvestor, "series-a", Q(2_000_000), USD(1)),
	)

	r := l.NewOwnershipReport(MustParse("2024-12-31"))

	if r.Organization != "acme" || r.Currency != "USD" {
		t.Errorf("header = %s/%s, want acme/USD", r.Organization, r.Currency)
	}
	if !r.TotalAuthorized.Equal(Q(25_000_000)) {
		t.Errorf("TotalAuthorized = %s, want 25000000", r.TotalAuthorized)
	}
	if !r.TotalIssued.Equal(Q(10_000_000)) {
		t.Errorf("TotalIssued = %s, want 10000000", r.TotalIssued)
	}

	// holders sorted by shares descending
	wantOrder := []string{"alice", "bob", "fund"}
	if len(r.Holders) != len(wantOrder) {
		t.Fatalf("report has %d holders, want %d", len(r.Holders), len(wantOrder))
	}
	for i, name := range wantOrder {
		if r.Holders[i].Name != name {
			t.Errorf("holder %d = %s, want %s", i, r.Holders[i].Name, name)
		}
	}

	testCases := []struct {
		holder  string
		percent Percent
	}{
		{"alice", 50},
		{"bob", 30},
		{"fund", 20},
	}
	var sum Percent
	for _, tc := range testCases {
		h := r.Holder(tc.holder)
		if h == nil {
			t.Fatalf("holder %s missing from report", tc.holder)
		}
		if !h.Percent.Equal(tc.percent) {
			t.Errorf("%s percent = %s, want %s", tc.holder, h.Percent, tc.percent)
		}
		sum += h.Percent
	}
	if !sum.Equal(100) {
		t.Errorf("holder percents sum to %s, want 100%%", sum)
	}

	// per-class breakdown
	if len(r.Classes) != 2 {
		t.Fatalf("report has %d classes, want 2", len(r.Classes))
	}
	for _, c := range r.Classes {
		switch c.Name {
		case "series-a":
			if !c.Issued.Equal(Q(2_000_000)) || !c.PercentOfTotal.Equal(20) {
				t.Errorf("series-a = %s issued, %s of total", c.Issued, c.PercentOfTotal)
			}
		case "common":
			if !c.Issued.Equal(Q(8_000_000)) || !c.PercentOfTotal.Equal(80) {
				t.Errorf("common = %s issued, %s of total", c.Issued, c.PercentOfTotal)
			}
		}
	}

	// per-kind aggregation
	for _, k := range r.HolderKinds {
		switch k.Kind {
		case HolderFounder:
			if k.Holders != 2 || !k.Shares.Equal(Q(8_000_000)) || !k.Percent.Equal(80) {
				t.Errorf("founders = %d holders, %s shares, %s", k.Holders, k.Shares, k.Percent)
			}
		case HolderInvestor:
			if k.Holders != 1 || !k.Shares.Equal(Q(2_000_000)) || !k.Percent.Equal(20) {
				t.Errorf("investors = %d holders, %s shares, %s", k.Holders, k.Shares, k.Percent)
			}
		default:
			t.Errorf("unexpected holder kind in report: %s", k.Kind)
		}
	}
}

func TestNewOwnershipReport_empty(t *testing.T) {
	l := testLedger(1_000_000)
	r := l.NewOwnershipReport(MustParse("2024-12-31"))

	if !r.TotalIssued.IsZero() {
		t.Errorf("TotalIssued = %s, want 0", r.TotalIssued)
	}
	if len(r.Holders) != 0 {
		t.Errorf("report has %d holders, want none", len(r.Holders))
	}
	// the declared class still shows up, with a zero percentage
	if len(r.Classes) != 1 {
		t.Fatalf("report has %d classes, want 1", len(r.Classes))
	}
	if !r.Classes[0].PercentOfTotal.Equal(0) {
		t.Errorf("class percent with nothing issued = %s, want 0", r.Classes[0].PercentOfTotal)
	}
}

func TestNewOwnershipReport_asOfDate(t *testing.T) {
	l := testLedger(10_000_000)
	mustAppend(l,
		NewIssue(MustParse("2024-01-10"), "", "alice", HolderFounder, "common", Q(1_000_000), NO(0)),
		NewIssue(MustParse("2024-06-10"), "", "bob", HolderFounder, "common", Q(1_000_000), NO(0)),
	)

	r := l.NewOwnershipReport(MustParse("2024-03-01"))
	if !r.TotalIssued.Equal(Q(1_000_000)) {
		t.Errorf("TotalIssued as of march = %s, want 1000000", r.TotalIssued)
	}
	if h := r.Holder("alice"); h == nil || !h.Percent.Equal(100) {
		t.Errorf("alice before the second issuance should own 100%%")
	}
	if r.Holder("bob") != nil {
		t.Error("bob appears in the report before his issuance")
	}
}
