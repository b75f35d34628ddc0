package captable

import (
	"fmt"
	"slices"
	"time"
)

// RoundType is a typed string identifying the stage of a funding round.
type RoundType string

const (
	RoundPreSeed RoundType = "pre-seed"
	RoundSeed    RoundType = "seed"
	RoundSeriesA RoundType = "series-a"
	RoundSeriesB RoundType = "series-b"
	RoundSeriesC RoundType = "series-c"
	RoundBridge  RoundType = "bridge"
)

// RoundStatus is the lifecycle state of a funding round.
type RoundStatus string

const (
	RoundPlanning  RoundStatus = "planning"
	RoundActive    RoundStatus = "active"
	RoundClosed    RoundStatus = "closed"
	RoundCancelled RoundStatus = "cancelled"
)

// roundTransitions lists the legal status changes. Executing a closed round
// happens by appending issue entries to the ledger, never by mutating the
// round itself.
var roundTransitions = map[RoundStatus][]RoundStatus{
	RoundPlanning: {RoundActive, RoundCancelled},
	RoundActive:   {RoundClosed, RoundCancelled},
}

// Round captures the proposed terms of a funding round. The simulator reads
// it as a source of terms only.
type Round struct {
	Name           string
	Type           RoundType
	Status         RoundStatus
	Target         Money
	Raised         Money
	PreMoney       Money
	PostMoney      Money
	Class          string // Class is the share class the round will issue into.
	LeadInvestor   string
	LiquidationPrf float64 // term sheet: liquidation preference multiple
	AntiDilution   string  // term sheet: anti-dilution clause, free form
	BoardSeats     int     // term sheet: board seats granted
}

// Advance moves the round to a new status, rejecting illegal transitions.
func (r *Round) Advance(to RoundStatus) error {
	if slices.Contains(roundTransitions[r.Status], to) {
		r.Status = to
		return nil
	}
	return fmt.Errorf("round %q cannot move from %s to %s: %w", r.Name, r.Status, to, ErrInvalidState)
}

// Terms extracts the simulation input from the round.
func (r *Round) Terms() RoundTerms {
	return RoundTerms{
		Name:       r.Name,
		Investment: r.Target,
		PreMoney:   r.PreMoney,
		Class:      r.Class,
	}
}

// RoundTerms is the input of a round simulation.
type RoundTerms struct {
	Name             string
	Investment       Money
	PreMoney         Money
	Class            string  // Class optionally names the target share class.
	PoolTopUpPercent float64 // PoolTopUpPercent optionally sizes an option pool top-up on the post-money share count.
}

// RoundInvestorsHolder names the synthetic row standing for the incoming
// investors of a simulated round.
const RoundInvestorsHolder = "round investors"

// PoolHolder names the synthetic row standing for a simulated option pool
// top-up, when no company holder exists to receive it.
const PoolHolder = "ESOP pool"

// RoundProjection is the outcome of a round simulation: post-round
// capitalization and per-holder dilution. It is a pure projection and never
// writes the ledger.
type RoundProjection struct {
	Name          string
	Date          Date
	Time          time.Time // Generation time
	Organization  string
	Investment    Money
	PreMoney      Money
	PostMoney     Money
	PricePerShare Money
	NewShares     Quantity
	PoolShares    Quantity
	TotalBefore   Quantity
	TotalAfter    Quantity
	Holders       []DilutedHolder
}

// DilutedHolder is one holder's position before and after the simulated
// round. Share counts of existing holders are unchanged; only the
// denominator grows.
type DilutedHolder struct {
	Name          string
	Kind          HolderKind
	Shares        Quantity
	PercentBefore Percent
	PercentAfter  Percent
	Dilution      Percent
	Synthetic     bool // Synthetic marks the round-investors and pool rows.
}

// SimulateRound projects the capitalization after a proposed round.
//
// The price per share derives from the pre-money valuation over the current
// issued count, which must be positive. New investor shares are floored at
// the price; an optional pool top-up is floored on the post-money share
// count so the pool dilutes alongside everyone else.
func (l *Ledger) SimulateRound(on Date, terms RoundTerms) (*RoundProjection, error) {
	if terms.Investment.IsNegative() || terms.Investment.IsZero() {
		return nil, fmt.Errorf("round investment must be positive, got %s", terms.Investment)
	}
	if terms.PreMoney.IsNegative() || terms.PreMoney.IsZero() {
		return nil, fmt.Errorf("pre-money valuation must be positive, got %s", terms.PreMoney)
	}
	if terms.PoolTopUpPercent < 0 || terms.PoolTopUpPercent >= 100 {
		return nil, fmt.Errorf("pool top-up percent must be in [0, 100), got %v", terms.PoolTopUpPercent)
	}
	if terms.Class != "" && l.Class(terms.Class) == nil {
		return nil, fmt.Errorf("share class %q not declared in ledger: %w", terms.Class, ErrNotFound)
	}

	ownership := l.NewOwnershipReport(on)
	if !ownership.TotalIssued.IsPositive() {
		return nil, fmt.Errorf("cannot price a round with no issued shares: %w", ErrInvalidState)
	}

	pricePerShare := terms.PreMoney.Div(ownership.TotalIssued)
	newShares := terms.Investment.DivPrice(pricePerShare).Floor()
	var poolShares Quantity
	if terms.PoolTopUpPercent > 0 {
		postCount := ownership.TotalIssued.Add(newShares)
		poolShares = postCount.Mul(Q(terms.PoolTopUpPercent)).Div(Q(100)).Floor()
	}
	totalAfter := ownership.TotalIssued.Add(newShares).Add(poolShares)

	projection := &RoundProjection{
		Name:          terms.Name,
		Date:          on,
		Time:          time.Now(),
		Organization:  l.org,
		Investment:    terms.Investment,
		PreMoney:      terms.PreMoney,
		PostMoney:     terms.PreMoney.Add(terms.Investment),
		PricePerShare: pricePerShare,
		NewShares:     newShares,
		PoolShares:    poolShares,
		TotalBefore:   ownership.TotalIssued,
		TotalAfter:    totalAfter,
	}

	poolAssigned := poolShares.IsZero()
	for _, h := range ownership.Holders {
		shares := h.Shares
		if !poolAssigned && h.Kind == HolderCompany {
			// The treasury absorbs the pool top-up instead of a synthetic row.
			shares = shares.Add(poolShares)
			poolAssigned = true
		}
		after := shares.Percent(totalAfter)
		projection.Holders = append(projection.Holders, DilutedHolder{
			Name:          h.Name,
			Kind:          h.Kind,
			Shares:        shares,
			PercentBefore: h.Percent,
			PercentAfter:  after,
			Dilution:      h.Percent - after,
		})
	}
	if !poolAssigned {
		projection.Holders = append(projection.Holders, DilutedHolder{
			Name:         PoolHolder,
			Kind:         HolderCompany,
			Shares:       poolShares,
			PercentAfter: poolShares.Percent(totalAfter),
			Dilution:     -poolShares.Percent(totalAfter),
			Synthetic:    true,
		})
	}
	projection.Holders = append(projection.Holders, DilutedHolder{
		Name:         RoundInvestorsHolder,
		Kind:         HolderInvestor,
		Shares:       newShares,
		PercentAfter: newShares.Percent(totalAfter),
		Dilution:     -newShares.Percent(totalAfter),
		Synthetic:    true,
	})

	return projection, nil
}
