package reaction

import (
	"pillars/internal/chart"
	"pillars/internal/symbol"
)

// Options switches optional rules on and off.
type Options struct {
	// HiddenStemPairs pairs each visible stem with the hidden stems of the
	// other pillars' branches when looking for stem combinations.
	HiddenStemPairs bool
	// HiddenStemSupport lets any hidden stem of the month branch satisfy the
	// month-support condition, not only the branch's own element.
	HiddenStemSupport bool
	// MajoritySupport lets a combination transform when its element holds a
	// strict majority of the branch and main-qi votes.
	MajoritySupport bool

	Punishment  bool
	Harm        bool
	Destruction bool
}

// DefaultOptions enables every table and the majority rule, and leaves both
// hidden-stem extensions off.
func DefaultOptions() Options {
	return Options{
		MajoritySupport: true,
		Punishment:      true,
		Harm:            true,
		Destruction:     true,
	}
}

// support decides whether a combination producing e actually transforms in c.
type support struct {
	reg  *symbol.Registry
	opts Options
}

func (s support) transforms(c chart.Chart, e symbol.Element) bool {
	month := c.Branch(chart.Month)
	if month.Element == e {
		return true
	}
	if s.opts.HiddenStemSupport {
		for _, h := range s.reg.HiddenStems(month) {
			if h.Stem.Element == e {
				return true
			}
		}
	}
	if s.opts.MajoritySupport {
		return s.dominant(c, e)
	}
	return false
}

// dominant counts one vote per branch element and one per branch main qi.
func (s support) dominant(c chart.Chart, e symbol.Element) bool {
	votes, total := 0, 0
	for _, p := range chart.Positions() {
		b := c.Branch(p)
		total += 2
		if b.Element == e {
			votes++
		}
		if s.reg.PrimaryHiddenStem(b).Element == e {
			votes++
		}
	}
	return votes*2 > total
}
