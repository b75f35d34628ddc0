package captable

import (
	"errors"
	"testing"
)

func testTerms() VestingTerms {
	return VestingTerms{Start: MustParse("2024-01-01"), Months: 48, CliffMonths: 12}
}

func testBook(t *testing.T, poolTotal int64) *GrantBook {
	t.Helper()
	return NewGrantBook(Pool{Class: "options", Total: Q(poolTotal)})
}

func TestGrant_lifecycle(t *testing.T) {
	b := testBook(t, 100_000)

	g, err := b.NewGrant("carol", GrantISO, Q(48000), USD(0.25), testTerms())
	if err != nil {
		t.Fatal(err)
	}
	if g.Status != GrantDraft {
		t.Fatalf("new grant status = %s, want draft", g.Status)
	}
	if g.ID == "" {
		t.Fatal("new grant has no id")
	}

	// drafts do not vest and cannot be exercised
	if err := g.RecomputeVesting(MustParse("2025-06-01")); !errors.Is(err, ErrInvalidState) {
		t.Errorf("vesting a draft error = %v, want ErrInvalidState", err)
	}
	if _, err := g.RecordExercise(MustParse("2025-06-01"), Q(1000)); !errors.Is(err, ErrInvalidState) {
		t.Errorf("exercising a draft error = %v, want ErrInvalidState", err)
	}

	if err := g.Approve(); err != nil {
		t.Fatal(err)
	}
	if g.Status != GrantApproved {
		t.Fatalf("status after approval = %s, want approved", g.Status)
	}
	if len(g.Schedule) == 0 {
		t.Fatal("approval did not generate a vesting schedule")
	}
	if err := g.Approve(); !errors.Is(err, ErrInvalidState) {
		t.Errorf("double approval error = %v, want ErrInvalidState", err)
	}

	steps := []struct {
		on     string
		vested int64
		status GrantStatus
	}{
		{"2024-06-01", 0, GrantActive},
		{"2025-06-01", 17000, GrantPartiallyVested},
		{"2028-06-01", 48000, GrantFullyVested},
	}
	for _, s := range steps {
		if err := g.RecomputeVesting(MustParse(s.on)); err != nil {
			t.Fatal(err)
		}
		if !g.Vested.Equal(Q(s.vested)) {
			t.Errorf("vested on %s = %s, want %d", s.on, g.Vested, s.vested)
		}
		if g.Status != s.status {
			t.Errorf("status on %s = %s, want %s", s.on, g.Status, s.status)
		}
	}

	// exercise in two steps, the second one completing the grant
	ev, err := g.RecordExercise(MustParse("2028-06-10"), Q(18000))
	if err != nil {
		t.Fatal(err)
	}
	if !ev.Cost.Equal(USD(4500)) {
		t.Errorf("exercise cost = %s, want 18000 × $0.25 = $4,500.00", ev.Cost)
	}
	if g.Status != GrantFullyVested {
		t.Errorf("status after partial exercise = %s, want fully-vested", g.Status)
	}
	if !g.Exercisable().Equal(Q(30000)) {
		t.Errorf("exercisable after first exercise = %s, want 30000", g.Exercisable())
	}

	if _, err := g.RecordExercise(MustParse("2028-06-20"), Q(30000)); err != nil {
		t.Fatal(err)
	}
	if g.Status != GrantExercised {
		t.Errorf("status after full exercise = %s, want exercised", g.Status)
	}
	if len(g.Exercises) != 2 {
		t.Errorf("grant carries %d exercise events, want 2", len(g.Exercises))
	}
}

func TestGrant_RecordExercise_insufficient(t *testing.T) {
	b := testBook(t, 100_000)
	g, err := b.NewGrant("carol", GrantNSO, Q(48000), USD(0.25), testTerms())
	if err != nil {
		t.Fatal(err)
	}
	if err := g.Approve(); err != nil {
		t.Fatal(err)
	}
	if err := g.RecomputeVesting(MustParse("2025-01-01")); err != nil {
		t.Fatal(err)
	}
	// 12000 vested at the cliff; asking for more must fail without mutating
	_, err = g.RecordExercise(MustParse("2025-01-02"), Q(12001))
	if !errors.Is(err, ErrInsufficientCapacity) {
		t.Fatalf("over-exercise error = %v, want ErrInsufficientCapacity", err)
	}
	if !g.Exercised.IsZero() || len(g.Exercises) != 0 {
		t.Errorf("failed exercise mutated the grant: exercised=%s events=%d", g.Exercised, len(g.Exercises))
	}

	if _, err := g.RecordExercise(MustParse("2025-01-02"), Q(0)); err == nil {
		t.Error("zero-share exercise accepted")
	}
}

func TestGrant_RecordExercise_expired(t *testing.T) {
	b := testBook(t, 100_000)
	g, err := b.NewGrant("carol", GrantISO, Q(48000), USD(0.25), testTerms())
	if err != nil {
		t.Fatal(err)
	}
	g.Expiration = MustParse("2026-01-01")
	if err := g.Approve(); err != nil {
		t.Fatal(err)
	}
	if err := g.RecomputeVesting(MustParse("2025-06-01")); err != nil {
		t.Fatal(err)
	}
	if _, err := g.RecordExercise(MustParse("2026-02-01"), Q(1000)); !errors.Is(err, ErrInvalidState) {
		t.Errorf("post-expiration exercise error = %v, want ErrInvalidState", err)
	}
}

func TestGrantBook_poolAccounting(t *testing.T) {
	b := testBook(t, 100_000)

	g, err := b.NewGrant("carol", GrantISO, Q(10000), USD(0.25), testTerms())
	if err != nil {
		t.Fatal(err)
	}
	if !b.Allocated().Equal(Q(10000)) || !b.Available().Equal(Q(90_000)) {
		t.Fatalf("after grant: allocated=%s available=%s", b.Allocated(), b.Available())
	}

	// vest and exercise 2000, then cancel: the 8000 never exercised flow back
	if err := g.Approve(); err != nil {
		t.Fatal(err)
	}
	if err := g.RecomputeVesting(MustParse("2026-01-01")); err != nil {
		t.Fatal(err)
	}
	if _, err := g.RecordExercise(MustParse("2026-01-10"), Q(2000)); err != nil {
		t.Fatal(err)
	}
	if !b.Allocated().Equal(Q(10000)) {
		t.Fatalf("a live grant must reserve its full size, allocated=%s", b.Allocated())
	}

	freed, err := g.CancelGrant()
	if err != nil {
		t.Fatal(err)
	}
	if !freed.Equal(Q(8000)) {
		t.Errorf("cancellation freed %s shares, want 8000", freed)
	}
	if !b.Allocated().Equal(Q(2000)) || !b.Available().Equal(Q(98_000)) {
		t.Errorf("after cancel: allocated=%s available=%s, want 2000/98000", b.Allocated(), b.Available())
	}

	// cancelling twice is illegal
	if _, err := g.CancelGrant(); !errors.Is(err, ErrInvalidState) {
		t.Errorf("double cancel error = %v, want ErrInvalidState", err)
	}
}

func TestGrantBook_NewGrant_capacity(t *testing.T) {
	b := testBook(t, 10_000)
	if _, err := b.NewGrant("carol", GrantISO, Q(8000), USD(0.25), testTerms()); err != nil {
		t.Fatal(err)
	}
	_, err := b.NewGrant("dave", GrantISO, Q(3000), USD(0.25), testTerms())
	if !errors.Is(err, ErrInsufficientCapacity) {
		t.Errorf("over-allocation error = %v, want ErrInsufficientCapacity", err)
	}
	// exactly exhausting the pool is fine
	if _, err := b.NewGrant("dave", GrantISO, Q(2000), USD(0.25), testTerms()); err != nil {
		t.Errorf("granting the exact remainder rejected: %v", err)
	}
}

func TestGrantBook_NewGrant_validation(t *testing.T) {
	b := testBook(t, 10_000)
	if _, err := b.NewGrant("", GrantISO, Q(100), USD(0.25), testTerms()); err == nil {
		t.Error("empty grantee accepted")
	}
	if _, err := b.NewGrant("carol", GrantKind("stock"), Q(100), USD(0.25), testTerms()); err == nil {
		t.Error("unknown grant kind accepted")
	}
	if _, err := b.NewGrant("carol", GrantISO, Q(0), USD(0.25), testTerms()); err == nil {
		t.Error("zero-share grant accepted")
	}
	if _, err := b.NewGrant("carol", GrantISO, Q(100), USD(0.25), VestingTerms{}); err == nil {
		t.Error("empty vesting terms accepted")
	}
}

func TestGrantBook_Delete(t *testing.T) {
	b := testBook(t, 10_000)
	g, err := b.NewGrant("carol", GrantISO, Q(1000), USD(0.25), testTerms())
	if err != nil {
		t.Fatal(err)
	}

	if err := b.Delete("no-such-id"); !errors.Is(err, ErrNotFound) {
		t.Errorf("deleting an unknown grant error = %v, want ErrNotFound", err)
	}

	if err := b.Delete(g.ID); err != nil {
		t.Fatal(err)
	}
	if _, err := b.Grant(g.ID); !errors.Is(err, ErrNotFound) {
		t.Error("deleted grant still in the book")
	}
	if !b.Allocated().IsZero() {
		t.Errorf("deleted draft still allocated: %s", b.Allocated())
	}

	g2, err := b.NewGrant("dave", GrantISO, Q(1000), USD(0.25), testTerms())
	if err != nil {
		t.Fatal(err)
	}
	if err := g2.Approve(); err != nil {
		t.Fatal(err)
	}
	if err := b.Delete(g2.ID); !errors.Is(err, ErrInvalidState) {
		t.Errorf("deleting an approved grant error = %v, want ErrInvalidState", err)
	}
}

func TestGrantStatus_transitions(t *testing.T) {
	testCases := []struct {
		from GrantStatus
		ev   grantEvent
		to   GrantStatus
		ok   bool
	}{
		{GrantDraft, evApprove, GrantApproved, true},
		{GrantApproved, evActivate, GrantActive, true},
		{GrantActive, evVestPart, GrantPartiallyVested, true},
		{GrantPartiallyVested, evVestFull, GrantFullyVested, true},
		{GrantFullyVested, evExercised, GrantExercised, true},
		{GrantActive, evCancel, GrantCancelled, true},
		{GrantApproved, evExpire, GrantExpired, true},
		{GrantPartiallyVested, evForfeit, GrantForfeited, true},

		{GrantActive, evApprove, "", false},
		{GrantPartiallyVested, evExercised, "", false},
		{GrantCancelled, evCancel, "", false},
		{GrantExercised, evForfeit, "", false},
		{GrantDraft, evVestPart, "", false},
	}
	for _, tc := range testCases {
		got, err := transition(tc.from, tc.ev)
		if tc.ok {
			if err != nil {
				t.Errorf("%s on %s rejected: %v", tc.ev, tc.from, err)
			} else if got != tc.to {
				t.Errorf("%s on %s = %s, want %s", tc.ev, tc.from, got, tc.to)
			}
			continue
		}
		if !errors.Is(err, ErrInvalidState) {
			t.Errorf("%s on %s error = %v, want ErrInvalidState", tc.ev, tc.from, err)
		}
	}
}
