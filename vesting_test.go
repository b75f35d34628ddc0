package captable

import "testing"

func TestVestingTerms_VestedAt(t *testing.T) {
	terms := VestingTerms{
		Start:       MustParse("2024-01-01"),
		Months:      48,
		CliffMonths: 12,
	}
	total := Q(48000)

	testCases := []struct {
		name string
		on   string
		want int64
	}{
		{"before start", "2023-06-01", 0},
		{"ten months in, under cliff", "2024-11-15", 0},
		{"day before cliff", "2024-12-31", 0},
		{"cliff reached", "2025-01-02", 12000},
		{"two years in", "2026-01-01", 24000},
		{"half way", "2026-01-15", 24000},
		{"fully vested", "2028-01-01", 48000},
		{"beyond the end", "2030-01-01", 48000},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := terms.VestedAt(total, MustParse(tc.on))
			if !got.Equal(Q(tc.want)) {
				t.Errorf("VestedAt(%s) = %s, want %d", tc.on, got, tc.want)
			}
		})
	}
}

func TestVestingTerms_VestedAt_boundaries(t *testing.T) {
	// For cliff C, duration V, total T: vested is 0 at C−1, T at V, and
	// floor(T/2) at V/2 for even V.
	terms := VestingTerms{Start: MustParse("2024-01-01"), Months: 36, CliffMonths: 6}
	total := Q(10001)

	if got := terms.VestedAt(total, terms.Start.AddMonth(5)); !got.IsZero() {
		t.Errorf("at cliff−1 months vested = %s, want 0", got)
	}
	if got := terms.VestedAt(total, terms.Start.AddMonth(36)); !got.Equal(total) {
		t.Errorf("at V months vested = %s, want %s", got, total)
	}
	if got := terms.VestedAt(total, terms.Start.AddMonth(18)); !got.Equal(Q(5000)) {
		t.Errorf("at V/2 months vested = %s, want 5000", got)
	}
}

func TestVestingTerms_Schedule(t *testing.T) {
	terms := VestingTerms{
		Start:       MustParse("2024-01-01"),
		Months:      48,
		CliffMonths: 12,
	}
	events := terms.Schedule(Q(48000))

	// months 1..11 are skipped, 12..48 each produce one event
	if len(events) != 37 {
		t.Fatalf("schedule has %d events, want 37", len(events))
	}

	first := events[0]
	if first.Date != MustParse("2025-01-01") {
		t.Errorf("first event on %s, want 2025-01-01", first.Date)
	}
	if !first.Shares.Equal(Q(12000)) {
		t.Errorf("cliff lump = %s, want 12000", first.Shares)
	}
	if !first.Cumulative.Equal(Q(12000)) {
		t.Errorf("cliff cumulative = %s, want 12000", first.Cumulative)
	}
	if !first.Percent.Equal(25) {
		t.Errorf("cliff percent = %s, want 25%%", first.Percent)
	}

	second := events[1]
	if !second.Shares.Equal(Q(1000)) {
		t.Errorf("monthly credit = %s, want 1000", second.Shares)
	}

	last := events[len(events)-1]
	if last.Date != MustParse("2028-01-01") {
		t.Errorf("last event on %s, want 2028-01-01", last.Date)
	}
	if !last.Cumulative.Equal(Q(48000)) {
		t.Errorf("final cumulative = %s, want 48000", last.Cumulative)
	}
	if !last.Percent.Equal(100) {
		t.Errorf("final percent = %s, want 100%%", last.Percent)
	}
}

func TestVestingTerms_Schedule_remainder(t *testing.T) {
	// 10000 over 36 months does not divide evenly; the final event must
	// still land exactly on the total.
	terms := VestingTerms{Start: MustParse("2024-01-01"), Months: 36}
	events := terms.Schedule(Q(10000))

	if len(events) != 36 {
		t.Fatalf("schedule has %d events, want 36", len(events))
	}
	last := events[len(events)-1]
	if !last.Cumulative.Equal(Q(10000)) {
		t.Errorf("final cumulative = %s, want 10000", last.Cumulative)
	}
}

func TestVestingTerms_Validate(t *testing.T) {
	valid := VestingTerms{Start: MustParse("2024-01-01"), Months: 48, CliffMonths: 12}
	if err := valid.Validate(); err != nil {
		t.Errorf("valid terms rejected: %v", err)
	}

	invalid := []VestingTerms{
		{Months: 48},                            // no start
		{Start: MustParse("2024-01-01")},        // no duration
		{Start: MustParse("2024-01-01"), Months: 12, CliffMonths: 24}, // cliff > duration
		{Start: MustParse("2024-01-01"), Months: 12, CliffMonths: -1},
	}
	for i, terms := range invalid {
		if err := terms.Validate(); err == nil {
			t.Errorf("invalid terms %d accepted", i)
		}
	}
}
