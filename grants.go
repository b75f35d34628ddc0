package captable

import (
	"fmt"
	"iter"
	"slices"

	"github.com/google/uuid"
)

// GrantKind is a typed string identifying the tax flavor of an equity grant.
type GrantKind string

const (
	GrantISO     GrantKind = "iso"
	GrantNSO     GrantKind = "nso"
	GrantRSU     GrantKind = "rsu"
	GrantRSA     GrantKind = "rsa"
	GrantSAR     GrantKind = "sar"
	GrantPhantom GrantKind = "phantom"
)

// ParseGrantKind parses a string into a GrantKind.
func ParseGrantKind(s string) (GrantKind, error) {
	switch k := GrantKind(s); k {
	case GrantISO, GrantNSO, GrantRSU, GrantRSA, GrantSAR, GrantPhantom:
		return k, nil
	default:
		return "", fmt.Errorf("unknown grant kind: %q", s)
	}
}

// GrantStatus is the lifecycle state of an equity grant.
type GrantStatus string

const (
	GrantDraft           GrantStatus = "draft"
	GrantApproved        GrantStatus = "approved"
	GrantActive          GrantStatus = "active"
	GrantPartiallyVested GrantStatus = "partially-vested"
	GrantFullyVested     GrantStatus = "fully-vested"
	GrantExercised       GrantStatus = "exercised"
	GrantCancelled       GrantStatus = "cancelled"
	GrantExpired         GrantStatus = "expired"
	GrantForfeited       GrantStatus = "forfeited"
)

// Terminal reports whether the status admits no further transition.
func (s GrantStatus) Terminal() bool {
	switch s {
	case GrantExercised, GrantCancelled, GrantExpired, GrantForfeited:
		return true
	}
	return false
}

// grantEvent is an input to the grant state machine.
type grantEvent string

const (
	evApprove   grantEvent = "approve"
	evActivate  grantEvent = "activate"
	evVestPart  grantEvent = "vest-partial"
	evVestFull  grantEvent = "vest-full"
	evExercised grantEvent = "exercised"
	evCancel    grantEvent = "cancel"
	evExpire    grantEvent = "expire"
	evForfeit   grantEvent = "forfeit"
)

// transition is the single authority on legal grant status changes. Every
// operation goes through it instead of comparing status strings ad hoc.
func transition(s GrantStatus, e grantEvent) (GrantStatus, error) {
	switch e {
	case evApprove:
		if s == GrantDraft {
			return GrantApproved, nil
		}
	case evActivate:
		if s == GrantApproved {
			return GrantActive, nil
		}
	case evVestPart:
		switch s {
		case GrantApproved, GrantActive:
			return GrantPartiallyVested, nil
		}
	case evVestFull:
		switch s {
		case GrantApproved, GrantActive, GrantPartiallyVested:
			return GrantFullyVested, nil
		}
	case evExercised:
		if s == GrantFullyVested {
			return GrantExercised, nil
		}
	case evCancel:
		if !s.Terminal() {
			return GrantCancelled, nil
		}
	case evExpire:
		if !s.Terminal() {
			return GrantExpired, nil
		}
	case evForfeit:
		if !s.Terminal() {
			return GrantForfeited, nil
		}
	}
	return s, fmt.Errorf("grant cannot %s from status %s: %w", e, s, ErrInvalidState)
}

// ExerciseEvent records one exercise of vested shares.
type ExerciseEvent struct {
	ID     string   `json:"id"`
	Date   Date     `json:"date"`
	Shares Quantity `json:"shares"`
	Price  Money    `json:"price"`
	Cost   Money    `json:"cost"`
}

// Grant is one employee equity grant drawing on the option pool.
//
// Invariant: 0 ≤ exercised ≤ vested ≤ total at all times. Vested is a
// derived figure, recomputed from the vesting terms and the clock; it is
// persisted only for readability.
type Grant struct {
	ID           string
	Grantee      string
	Kind         GrantKind
	Status       GrantStatus
	Class        string // Class is the share class delivered on exercise.
	Total        Quantity
	Vested       Quantity
	Exercised    Quantity
	Price        Money // Price is the exercise price per share.
	Terms        VestingTerms
	Expiration   Date   // optional
	Acceleration string // optional acceleration terms, free form
	Schedule     []VestingEvent
	Exercises    []ExerciseEvent
}

// Unvested returns the shares not yet vested.
func (g *Grant) Unvested() Quantity { return g.Total.Sub(g.Vested) }

// Exercisable returns the vested shares not yet exercised.
func (g *Grant) Exercisable() Quantity { return g.Vested.Sub(g.Exercised) }

// Approve moves a draft grant to approved and generates the full vesting
// schedule up front.
func (g *Grant) Approve() error {
	next, err := transition(g.Status, evApprove)
	if err != nil {
		return err
	}
	if err := g.Terms.Validate(); err != nil {
		return fmt.Errorf("grant %s: %w", g.ID, err)
	}
	g.Schedule = g.Terms.Schedule(g.Total)
	g.Status = next
	return nil
}

// RecomputeVesting refreshes the vested count from the wall clock and
// promotes the status accordingly. It is idempotent and safe to call any
// time after approval.
func (g *Grant) RecomputeVesting(on Date) error {
	if g.Status == GrantDraft {
		return fmt.Errorf("grant %s is not approved yet: %w", g.ID, ErrInvalidState)
	}
	if g.Status.Terminal() {
		return nil
	}

	vested := g.Terms.VestedAt(g.Total, on)
	g.Vested = vested

	var target GrantStatus
	switch {
	case vested.Equal(g.Total):
		target = GrantFullyVested
	case vested.IsPositive():
		target = GrantPartiallyVested
	default:
		target = GrantActive
	}
	if g.Status == target {
		return nil
	}
	var ev grantEvent
	switch target {
	case GrantActive:
		ev = evActivate
	case GrantPartiallyVested:
		ev = evVestPart
	default:
		ev = evVestFull
	}
	next, err := transition(g.Status, ev)
	if err != nil {
		// Vesting only moves forward; an already promoted status stays.
		return nil
	}
	g.Status = next
	return nil
}

// RecordExercise appends an exercise event for 'shares' and promotes the
// grant to exercised once everything vested is exercised and the grant is
// fully vested. The request must not exceed the exercisable remainder.
func (g *Grant) RecordExercise(on Date, shares Quantity) (*ExerciseEvent, error) {
	if g.Status == GrantDraft || g.Status == GrantApproved {
		return nil, fmt.Errorf("grant %s is not active yet: %w", g.ID, ErrInvalidState)
	}
	if g.Status.Terminal() {
		return nil, fmt.Errorf("grant %s is %s: %w", g.ID, g.Status, ErrInvalidState)
	}
	if !g.Expiration.IsZero() && on.After(g.Expiration) {
		return nil, fmt.Errorf("grant %s expired on %s: %w", g.ID, g.Expiration, ErrInvalidState)
	}
	if shares.IsNegative() || shares.IsZero() {
		return nil, fmt.Errorf("exercise shares must be positive, got %s", shares)
	}
	if shares.GreaterThan(g.Exercisable()) {
		return nil, fmt.Errorf("grant %s has %s exercisable shares, cannot exercise %s: %w",
			g.ID, g.Exercisable(), shares, ErrInsufficientCapacity)
	}

	event := ExerciseEvent{
		ID:     uuid.NewString(),
		Date:   on,
		Shares: shares,
		Price:  g.Price,
		Cost:   g.Price.Mul(shares),
	}
	g.Exercises = append(g.Exercises, event)
	g.Exercised = g.Exercised.Add(shares)

	if !g.Exercised.LessThan(g.Vested) && g.Vested.Equal(g.Total) {
		if next, err := transition(g.Status, evExercised); err == nil {
			g.Status = next
		}
	}
	return &g.Exercises[len(g.Exercises)-1], nil
}

// CancelGrant cancels the grant irreversibly and returns the share count
// released back to the pool: everything never exercised, vested or not.
func (g *Grant) CancelGrant() (Quantity, error) {
	next, err := transition(g.Status, evCancel)
	if err != nil {
		return Q(0), err
	}
	freed := g.Total.Sub(g.Exercised)
	g.Status = next
	return freed, nil
}

// Pool is the reserve of shares set aside for employee grants.
type Pool struct {
	Class string   `json:"class"` // Class is the share class grants draw on.
	Total Quantity `json:"total"` // Total is the number of shares reserved.
}

// GrantBook holds the pool and all grants of one organization. Allocation
// figures are always derived from the live grant set; there is no
// incrementally maintained counter to drift.
type GrantBook struct {
	pool   Pool
	grants []*Grant
	index  map[string]*Grant
}

// NewGrantBook creates a grant book over a pool.
func NewGrantBook(pool Pool) *GrantBook {
	return &GrantBook{pool: pool, index: make(map[string]*Grant)}
}

// Pool returns the pool definition.
func (b *GrantBook) Pool() Pool { return b.pool }

// Grant returns the grant with this id.
func (b *GrantBook) Grant(id string) (*Grant, error) {
	g, ok := b.index[id]
	if !ok {
		return nil, fmt.Errorf("grant %q: %w", id, ErrNotFound)
	}
	return g, nil
}

// AllGrants returns an iterator over grants in creation order.
func (b *GrantBook) AllGrants() iter.Seq[*Grant] {
	return slices.Values(b.grants)
}

// Allocated returns the pool shares currently reserved: live grants reserve
// their full size, terminal grants only what was actually exercised.
func (b *GrantBook) Allocated() Quantity {
	var total Quantity
	for _, g := range b.grants {
		if g.Status.Terminal() && g.Status != GrantExercised {
			total = total.Add(g.Exercised)
		} else {
			total = total.Add(g.Total)
		}
	}
	return total
}

// Available returns the unreserved pool shares.
func (b *GrantBook) Available() Quantity {
	return b.pool.Total.Sub(b.Allocated())
}

// PercentOfCompany returns the pool reserve as a percentage of the total
// issued shares on a date.
func (b *GrantBook) PercentOfCompany(l *Ledger, on Date) Percent {
	return b.pool.Total.Percent(l.TotalIssued(on))
}

// NewGrant creates a draft grant drawing on the pool. The pool must have
// enough available shares.
func (b *GrantBook) NewGrant(grantee string, kind GrantKind, total Quantity, price Money, terms VestingTerms) (*Grant, error) {
	if grantee == "" {
		return nil, fmt.Errorf("grantee is missing")
	}
	if _, err := ParseGrantKind(string(kind)); err != nil {
		return nil, err
	}
	if total.IsNegative() || total.IsZero() {
		return nil, fmt.Errorf("grant shares must be positive, got %s", total)
	}
	if err := terms.Validate(); err != nil {
		return nil, err
	}
	if total.GreaterThan(b.Available()) {
		return nil, fmt.Errorf("pool has %s available shares, cannot grant %s: %w",
			b.Available(), total, ErrInsufficientCapacity)
	}

	g := &Grant{
		ID:      uuid.NewString(),
		Grantee: grantee,
		Kind:    kind,
		Status:  GrantDraft,
		Class:   b.pool.Class,
		Total:   total,
		Price:   price,
		Terms:   terms,
	}
	b.grants = append(b.grants, g)
	b.index[g.ID] = g
	return g, nil
}

// Delete removes a draft grant from the book entirely. Any other status must
// go through Cancel to keep the exercise record.
func (b *GrantBook) Delete(id string) error {
	g, err := b.Grant(id)
	if err != nil {
		return err
	}
	if g.Status != GrantDraft {
		return fmt.Errorf("grant %q is %s, only drafts can be deleted: %w", id, g.Status, ErrInvalidState)
	}
	delete(b.index, id)
	b.grants = slices.DeleteFunc(b.grants, func(x *Grant) bool { return x.ID == id })
	return nil
}

// restore re-registers a decoded grant, keeping its id.
func (b *GrantBook) restore(g *Grant) {
	b.grants = append(b.grants, g)
	b.index[g.ID] = g
}
