package reaction

import (
	"pillars/internal/chart"
	"pillars/internal/symbol"
)

// Detector finds one family of relationships in a chart.
type Detector interface {
	Name() string
	Detect(c chart.Chart) []Reaction
}

// positionPairs are the six unordered pillar pairs in canonical order.
var positionPairs = [][2]chart.Position{
	{chart.Year, chart.Month},
	{chart.Year, chart.Day},
	{chart.Year, chart.Hour},
	{chart.Month, chart.Day},
	{chart.Month, chart.Hour},
	{chart.Day, chart.Hour},
}

// positionTriples are the four unordered pillar triples in canonical order.
var positionTriples = [][3]chart.Position{
	{chart.Year, chart.Month, chart.Day},
	{chart.Year, chart.Month, chart.Hour},
	{chart.Year, chart.Day, chart.Hour},
	{chart.Month, chart.Day, chart.Hour},
}

// StemDetector finds the five stem combinations.
type StemDetector struct {
	reg     *symbol.Registry
	opts    Options
	support support
}

func NewStemDetector(reg *symbol.Registry, opts Options) *StemDetector {
	return &StemDetector{reg: reg, opts: opts, support: support{reg: reg, opts: opts}}
}

func (d *StemDetector) Name() string {
	return "stem_combination"
}

func (d *StemDetector) Detect(c chart.Chart) []Reaction {
	var out []Reaction
	type seenKey struct {
		pair    [2]chart.Position
		element symbol.Element
	}
	seen := make(map[seenKey]bool)

	for _, pp := range positionPairs {
		a, b := c.Stem(pp[0]), c.Stem(pp[1])
		e, ok := d.reg.Combination(a, b)
		if !ok {
			continue
		}
		r := newReaction(StemCombine, e, member{pp[0], a.Glyph}, member{pp[1], b.Glyph})
		r.Resolved = d.support.transforms(c, e)
		out = append(out, r)
		seen[seenKey{pp, e}] = true
	}

	if !d.opts.HiddenStemPairs {
		return out
	}

	// visible stem at one pillar against hidden stems of another pillar's branch
	for _, pp := range positionPairs {
		for _, dir := range [][2]chart.Position{{pp[0], pp[1]}, {pp[1], pp[0]}} {
			visible := c.Stem(dir[0])
			for _, h := range c.Pillar(dir[1]).Hidden {
				e, ok := d.reg.Combination(visible, h.Stem)
				if !ok || seen[seenKey{pp, e}] {
					continue
				}
				r := newReaction(StemCombine, e, member{dir[0], visible.Glyph}, member{dir[1], h.Stem.Glyph})
				r.Hidden = true
				r.Resolved = d.support.transforms(c, e)
				out = append(out, r)
				seen[seenKey{pp, e}] = true
			}
		}
	}
	return out
}
