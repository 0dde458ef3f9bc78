package dates

import (
	"errors"
	"fmt"
)

const (
	// DefaultMaxGap is the widest gap in days between two consecutive events
	// that is accepted without attempting a repair.
	DefaultMaxGap = 60

	// AcceptWindow bounds the gap of a repaired pair, whatever the max gap.
	AcceptWindow = 60
)

// ErrInvalidGap is returned for a negative max gap.
var ErrInvalidGap = errors.New("invalid max gap")

// Pair is two events of one record in workflow order, such as symptom onset
// and sample collection.
type Pair struct {
	Early Date
	Late  Date
}

// Delta returns Late minus Early in days.
func (p Pair) Delta() int {
	return p.Early.DaysUntil(p.Late)
}

// Side selects which members of a Pair a strategy rewrites.
type Side uint8

const (
	SideEarly Side = 1 << iota
	SideLate
	SideBoth = SideEarly | SideLate
)

// Strategy is one day/month transposition repair. Applies inspects the pair;
// the fix swaps the day and month of the members named by Swaps.
type Strategy struct {
	Name    string
	Swaps   Side
	Applies func(p Pair) bool
}

// Fix returns the pair with the selected members transposed. A member whose
// day cannot be a month yields Null.
func (s Strategy) Fix(p Pair) Pair {
	if s.Swaps&SideEarly != 0 {
		p.Early = transpose(p.Early)
	}
	if s.Swaps&SideLate != 0 {
		p.Late = transpose(p.Late)
	}
	return p
}

func transpose(d Date) Date {
	if !isMonth(d.Day()) {
		return Null
	}
	return d.swapDayMonth()
}

func isMonth(n int) bool {
	return n >= 1 && n <= 12
}

// Strategies are evaluated in this order; the first whose fix passes the
// acceptance check wins.
var Strategies = []Strategy{
	{
		Name:  "late-day-is-early-month",
		Swaps: SideLate,
		Applies: func(p Pair) bool {
			return p.Late.Day() == int(p.Early.Month()) && isMonth(p.Late.Day())
		},
	},
	{
		Name:  "early-day-is-late-month",
		Swaps: SideEarly,
		Applies: func(p Pair) bool {
			return p.Early.Day() == int(p.Late.Month()) && isMonth(p.Early.Day())
		},
	},
	{
		Name:  "same-day",
		Swaps: SideBoth,
		Applies: func(p Pair) bool {
			return p.Early.Day() == p.Late.Day() && isMonth(p.Early.Day())
		},
	},
	{
		Name:  "late-day-after-early-month",
		Swaps: SideLate,
		Applies: func(p Pair) bool {
			return p.Late.Day()-int(p.Early.Month()) == 1 && isMonth(p.Late.Day())
		},
	},
	{
		Name:  "early-day-before-late-month",
		Swaps: SideEarly,
		Applies: func(p Pair) bool {
			return p.Early.Day()-int(p.Late.Month()) == -1
		},
	},
}

// Reconciler repairs transposed day and month fields between consecutive
// event dates.
type Reconciler struct {
	maxGap int
	bounds Bounds
}

// NewReconciler returns a Reconciler that leaves pairs whose gap lies in
// [0, maxGapDays] alone. Repaired dates must fall inside bounds.
func NewReconciler(maxGapDays int, bounds Bounds) (*Reconciler, error) {
	if maxGapDays < 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidGap, maxGapDays)
	}
	if err := bounds.Validate(); err != nil {
		return nil, err
	}
	return &Reconciler{maxGap: maxGapDays, bounds: bounds}, nil
}

// MaxGap returns the configured gap in days.
func (r *Reconciler) MaxGap() int {
	return r.maxGap
}

// Bounds returns the admissible window used for repairs.
func (r *Reconciler) Bounds() Bounds {
	return r.bounds
}

// Outcome describes what Reconcile did to a pair.
type Outcome struct {
	Pair     Pair
	Strategy string // empty when the pair was left unchanged
}

// Changed reports whether a strategy rewrote the pair.
func (o Outcome) Changed() bool {
	return o.Strategy != ""
}

// Reconcile returns the repaired pair, or p itself when it is consistent, has
// a null member, or no strategy yields an acceptable fix.
func (r *Reconciler) Reconcile(p Pair) Pair {
	return r.ReconcileExplain(p).Pair
}

// ReconcileExplain is Reconcile that also names the winning strategy.
func (r *Reconciler) ReconcileExplain(p Pair) Outcome {
	if !p.Early.Valid || !p.Late.Valid {
		return Outcome{Pair: p}
	}
	if delta := p.Delta(); delta >= 0 && delta <= r.maxGap {
		return Outcome{Pair: p}
	}

	for _, s := range Strategies {
		if !s.Applies(p) {
			continue
		}
		fixed := s.Fix(p)
		if r.acceptable(fixed, s.Swaps) {
			return Outcome{Pair: fixed, Strategy: s.Name}
		}
	}
	return Outcome{Pair: p}
}

// acceptable checks a candidate: both members present, the gap within
// AcceptWindow and every rewritten member inside the bounds.
func (r *Reconciler) acceptable(p Pair, swapped Side) bool {
	if !p.Early.Valid || !p.Late.Valid {
		return false
	}
	if delta := p.Delta(); delta < 0 || delta > AcceptWindow {
		return false
	}
	if swapped&SideEarly != 0 && !r.bounds.Contains(p.Early) {
		return false
	}
	if swapped&SideLate != 0 && !r.bounds.Contains(p.Late) {
		return false
	}
	return true
}

// Chain is the result of reconciling the three dates of one record.
type Chain struct {
	Symptom Date
	Sample  Date
	Result  Date
	Steps   []Step
}

// Step records a repair made while reconciling a Chain.
type Step struct {
	Pair     string `json:"pair"` // "symptom-sample" or "sample-result"
	Strategy string `json:"strategy"`
}

// ReconcileChain repairs the symptom, sample and result dates of one record:
// symptom against sample, sample against result, then symptom against the
// possibly repaired sample once more. It does not iterate further.
func (r *Reconciler) ReconcileChain(symptom, sample, result Date) (Date, Date, Date) {
	c := r.ReconcileChainExplain(symptom, sample, result)
	return c.Symptom, c.Sample, c.Result
}

// ReconcileChainExplain is ReconcileChain that also lists the repairs made.
func (r *Reconciler) ReconcileChainExplain(symptom, sample, result Date) Chain {
	c := Chain{Symptom: symptom, Sample: sample, Result: result}

	c.Symptom, c.Sample = r.step(&c, "symptom-sample", c.Symptom, c.Sample)
	c.Sample, c.Result = r.step(&c, "sample-result", c.Sample, c.Result)
	c.Symptom, c.Sample = r.step(&c, "symptom-sample", c.Symptom, c.Sample)
	return c
}

func (r *Reconciler) step(c *Chain, name string, early, late Date) (Date, Date) {
	out := r.ReconcileExplain(Pair{Early: early, Late: late})
	if out.Changed() {
		c.Steps = append(c.Steps, Step{Pair: name, Strategy: out.Strategy})
	}
	return out.Pair.Early, out.Pair.Late
}
