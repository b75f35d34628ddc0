package captable

import "fmt"

// VestingTerms are the parameters of a time-based vesting schedule with an
// optional cliff. Vesting is linear from the start date, not from the cliff:
// the cliff only delays when already-accrued shares become vested.
type VestingTerms struct {
	Start       Date `json:"start"`
	Months      int  `json:"months"`
	CliffMonths int  `json:"cliffMonths,omitempty"`
}

// Validate checks the vesting parameters.
func (v VestingTerms) Validate() error {
	if v.Start.IsZero() {
		return fmt.Errorf("vesting start date is missing")
	}
	if v.Months <= 0 {
		return fmt.Errorf("vesting months must be positive, got %d", v.Months)
	}
	if v.CliffMonths < 0 || v.CliffMonths > v.Months {
		return fmt.Errorf("cliff months must be in [0, %d], got %d", v.Months, v.CliffMonths)
	}
	return nil
}

// End returns the date on which the schedule fully vests.
func (v VestingTerms) End() Date { return v.Start.AddMonth(v.Months) }

// VestedAt returns the number of shares out of 'total' vested on a given
// date. It is a pure function of the terms and the date, safe to call any
// number of times.
func (v VestingTerms) VestedAt(total Quantity, on Date) Quantity {
	elapsed := on.MonthsSince(v.Start)
	switch {
	case elapsed < v.CliffMonths:
		return Q(0)
	case elapsed >= v.Months:
		return total
	default:
		return total.Mul(Q(elapsed)).Div(Q(v.Months)).Floor()
	}
}

// VestingEvent is one step of a projected vesting schedule.
type VestingEvent struct {
	Date       Date     `json:"date"`
	Shares     Quantity `json:"shares"`
	Cumulative Quantity `json:"cumulative"`
	Percent    Percent  `json:"percent"`
}

// Schedule projects the full vesting schedule for 'total' shares: one event
// per month from month 1 to the last month, with no event before the cliff
// and a lump credit at the cliff month covering everything accrued during
// the cliff period. The last event always lands exactly on the total.
func (v VestingTerms) Schedule(total Quantity) []VestingEvent {
	monthly := total.Div(Q(v.Months))
	events := make([]VestingEvent, 0, v.Months)

	var cumulative Quantity
	for month := 1; month <= v.Months; month++ {
		if month < v.CliffMonths {
			continue
		}
		shares := monthly
		if month == v.CliffMonths && v.CliffMonths > 0 {
			shares = monthly.Mul(Q(v.CliffMonths))
		}
		if month == v.Months {
			// absorb division remainders in the final step
			shares = total.Sub(cumulative)
		}
		cumulative = cumulative.Add(shares)
		events = append(events, VestingEvent{
			Date:       v.Start.AddMonth(month),
			Shares:     shares,
			Cumulative: cumulative,
			Percent:    cumulative.Percent(total),
		})
	}
	return events
}
