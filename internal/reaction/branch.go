package reaction

import (
	"pillars/internal/chart"
	"pillars/internal/symbol"
)

// BranchDetector finds every branch relationship: bureaus and six harmonies
// first, then clashes, punishments, harms and destructions. Only the visible
// branches take part.
type BranchDetector struct {
	reg     *symbol.Registry
	opts    Options
	support support
}

func NewBranchDetector(reg *symbol.Registry, opts Options) *BranchDetector {
	return &BranchDetector{reg: reg, opts: opts, support: support{reg: reg, opts: opts}}
}

func (d *BranchDetector) Name() string {
	return "branch_relationship"
}

func (d *BranchDetector) Detect(c chart.Chart) []Reaction {
	var out []Reaction
	out = append(out, d.bureaus(c, SanHeBureau, d.reg.SanHeBureaus())...)
	out = append(out, d.bureaus(c, SanHuiBureau, d.reg.SanHuiBureaus())...)
	out = append(out, d.harmonies(c)...)
	out = append(out, d.clashes(c)...)
	if d.opts.Punishment {
		out = append(out, d.punishments(c)...)
	}
	if d.opts.Harm {
		out = append(out, d.pairs(c, Harm, d.reg.Harm)...)
	}
	if d.opts.Destruction {
		out = append(out, d.pairs(c, Destruction, d.reg.Destruction)...)
	}
	return out
}

// bureaus emits one full bureau per pillar triple holding all three members.
// When a bureau has no full match, every pillar pair holding its center plus
// one other member is a half bureau.
func (d *BranchDetector) bureaus(c chart.Chart, kind Kind, table []symbol.Bureau) []Reaction {
	var out []Reaction
	for _, bu := range table {
		full := false
		for _, tr := range positionTriples {
			if !coversTriad(bu.Members, c.Branch(tr[0]), c.Branch(tr[1]), c.Branch(tr[2])) {
				continue
			}
			r := newReaction(kind, bu.Element, branchMember(c, tr[0]), branchMember(c, tr[1]), branchMember(c, tr[2]))
			r.Resolved = true
			out = append(out, r)
			full = true
		}
		if full {
			continue
		}
		for _, pp := range positionPairs {
			a, b := c.Branch(pp[0]), c.Branch(pp[1])
			if !isHalfPair(bu, a, b) {
				continue
			}
			r := newReaction(kind, bu.Element, branchMember(c, pp[0]), branchMember(c, pp[1]))
			r.Resolved = true
			r.Partial = true
			out = append(out, r)
		}
	}
	return out
}

func (d *BranchDetector) harmonies(c chart.Chart) []Reaction {
	var out []Reaction
	for _, pp := range positionPairs {
		e, ok := d.reg.Harmony(c.Branch(pp[0]), c.Branch(pp[1]))
		if !ok {
			continue
		}
		r := newReaction(BranchHarmony, e, branchMember(c, pp[0]), branchMember(c, pp[1]))
		r.Resolved = d.support.transforms(c, e)
		out = append(out, r)
	}
	return out
}

func (d *BranchDetector) clashes(c chart.Chart) []Reaction {
	return d.pairs(c, Clash, d.reg.Clash)
}

// punishments emits a three-way punishment for each complete triad; pairs
// inside a complete triad are covered by it and not repeated.
func (d *BranchDetector) punishments(c chart.Chart) []Reaction {
	var out []Reaction
	var complete [][3]symbol.Branch
	for _, triad := range d.reg.PunishmentTriads() {
		found := false
		for _, tr := range positionTriples {
			if !coversTriad(triad, c.Branch(tr[0]), c.Branch(tr[1]), c.Branch(tr[2])) {
				continue
			}
			out = append(out, newReaction(Punishment, symbol.NoElement, branchMember(c, tr[0]), branchMember(c, tr[1]), branchMember(c, tr[2])))
			found = true
		}
		if found {
			complete = append(complete, triad)
		}
	}

	for _, pp := range positionPairs {
		a, b := c.Branch(pp[0]), c.Branch(pp[1])
		if !d.reg.Punishment(a, b) || insideAny(complete, a, b) {
			continue
		}
		out = append(out, newReaction(Punishment, symbol.NoElement, branchMember(c, pp[0]), branchMember(c, pp[1])))
	}
	return out
}

func (d *BranchDetector) pairs(c chart.Chart, kind Kind, match func(a, b symbol.Branch) bool) []Reaction {
	var out []Reaction
	for _, pp := range positionPairs {
		if match(c.Branch(pp[0]), c.Branch(pp[1])) {
			out = append(out, newReaction(kind, symbol.NoElement, branchMember(c, pp[0]), branchMember(c, pp[1])))
		}
	}
	return out
}

func branchMember(c chart.Chart, p chart.Position) member {
	return member{pos: p, glyph: c.Branch(p).Glyph}
}

// coversTriad reports whether a, b and c are exactly the three members.
func coversTriad(members [3]symbol.Branch, a, b, c symbol.Branch) bool {
	var hit [3]bool
	for _, x := range []symbol.Branch{a, b, c} {
		matched := false
		for i, m := range members {
			if !hit[i] && m.Index == x.Index {
				hit[i] = true
				matched = true
				break
			}
		}
		if !matched {
			return false
		}
	}
	return true
}

func isHalfPair(bu symbol.Bureau, a, b symbol.Branch) bool {
	for _, hp := range bu.HalfPairs() {
		if (hp[0].Index == a.Index && hp[1].Index == b.Index) || (hp[0].Index == b.Index && hp[1].Index == a.Index) {
			return true
		}
	}
	return false
}

func insideAny(triads [][3]symbol.Branch, a, b symbol.Branch) bool {
	for _, t := range triads {
		if triadHas(t, a) && triadHas(t, b) {
			return true
		}
	}
	return false
}

func triadHas(t [3]symbol.Branch, b symbol.Branch) bool {
	for _, m := range t {
		if m.Index == b.Index {
			return true
		}
	}
	return false
}
