package symbol

import (
	"fmt"
	"strings"
)

type pairKey [2]int

func keyOf(a, b int) pairKey {
	if a > b {
		a, b = b, a
	}
	return pairKey{a, b}
}

// Registry holds every symbol and relationship table. It is built once and
// only read afterwards, so a single value can be shared by any number of
// goroutines.
type Registry struct {
	stems     []Stem
	branches  []Branch
	stemIdx   map[string]int
	branchIdx map[string]int
	hidden    [][]HiddenStemEntry

	combinations map[pairKey]Element
	harmonies    map[pairKey]Element
	sanHe        []Bureau
	sanHui       []Bureau

	clashes      map[pairKey]bool
	harms        map[pairKey]bool
	destructions map[pairKey]bool
	punishments  map[pairKey]bool
	punishTriads [][3]Branch
}

var defaultRegistry = mustBuild()

// Default returns the process-wide registry.
func Default() *Registry {
	return defaultRegistry
}

func mustBuild() *Registry {
	r, err := build()
	if err != nil {
		panic(err)
	}
	return r
}

func build() (*Registry, error) {
	r := &Registry{
		stemIdx:      make(map[string]int),
		branchIdx:    make(map[string]int),
		combinations: make(map[pairKey]Element),
		harmonies:    make(map[pairKey]Element),
		clashes:      make(map[pairKey]bool),
		harms:        make(map[pairKey]bool),
		destructions: make(map[pairKey]bool),
		punishments:  make(map[pairKey]bool),
	}

	for i, d := range stemTable {
		r.stems = append(r.stems, Stem{Index: i, Glyph: d.glyph, Pinyin: d.pinyin, Element: d.element, Polarity: Polarity(i % 2)})
		r.stemIdx[d.glyph] = i
		r.stemIdx[d.pinyin] = i
	}
	for i, d := range branchTable {
		r.branches = append(r.branches, Branch{Index: i, Glyph: d.glyph, Pinyin: d.pinyin, Element: d.element, Polarity: Polarity(i % 2)})
		r.branchIdx[d.glyph] = i
		// "wu" names both a stem and a branch; the two maps keep them apart.
		r.branchIdx[d.pinyin] = i
	}

	r.hidden = make([][]HiddenStemEntry, len(r.branches))
	for _, b := range r.branches {
		defs := hiddenTable[b.Glyph]
		if len(defs) == 0 {
			return nil, fmt.Errorf("branch %s has no hidden stems", b.Glyph)
		}
		for phase, d := range defs {
			s, ok := r.Stem(d.stem)
			if !ok {
				return nil, fmt.Errorf("branch %s: unknown hidden stem %q", b.Glyph, d.stem)
			}
			r.hidden[b.Index] = append(r.hidden[b.Index], HiddenStemEntry{Branch: b, Stem: s, Phase: Phase(phase), Weight: d.weight})
		}
		if r.hidden[b.Index][0].Stem.Element != b.Element {
			return nil, fmt.Errorf("branch %s: main qi %s does not share its element", b.Glyph, r.hidden[b.Index][0].Stem.Glyph)
		}
	}

	for _, d := range stemCombinationTable {
		a, okA := r.Stem(d.a)
		b, okB := r.Stem(d.b)
		if !okA || !okB {
			return nil, fmt.Errorf("combination %s%s: unknown stem", d.a, d.b)
		}
		r.combinations[keyOf(a.Index, b.Index)] = d.element
	}
	for _, d := range sixHarmonyTable {
		a, b, err := r.branchPair(d.a, d.b)
		if err != nil {
			return nil, fmt.Errorf("six harmony: %w", err)
		}
		r.harmonies[keyOf(a.Index, b.Index)] = d.element
	}

	var err error
	if r.sanHe, err = r.bureaus(sanHeTable, 4); err != nil {
		return nil, fmt.Errorf("three-harmony bureau: %w", err)
	}
	if r.sanHui, err = r.bureaus(sanHuiTable, 1); err != nil {
		return nil, fmt.Errorf("directional bureau: %w", err)
	}

	for _, p := range clashTable {
		a, b, err := r.branchPair(p[0], p[1])
		if err != nil {
			return nil, fmt.Errorf("clash: %w", err)
		}
		if (b.Index-a.Index+12)%12 != 6 {
			return nil, fmt.Errorf("clash %s%s is not 6 positions apart", a, b)
		}
		r.clashes[keyOf(a.Index, b.Index)] = true
	}
	if err := r.fillPairs(r.harms, harmTable); err != nil {
		return nil, fmt.Errorf("harm: %w", err)
	}
	if err := r.fillPairs(r.destructions, destructionTable); err != nil {
		return nil, fmt.Errorf("destruction: %w", err)
	}
	if err := r.fillPairs(r.punishments, punishmentPairTable); err != nil {
		return nil, fmt.Errorf("punishment: %w", err)
	}
	for _, t := range punishmentTriadTable {
		var triad [3]Branch
		for i, g := range t {
			b, ok := r.Branch(g)
			if !ok {
				return nil, fmt.Errorf("punishment triad: unknown branch %q", g)
			}
			triad[i] = b
		}
		r.punishTriads = append(r.punishTriads, triad)
	}

	return r, nil
}

func (r *Registry) branchPair(a, b string) (Branch, Branch, error) {
	ba, okA := r.Branch(a)
	bb, okB := r.Branch(b)
	if !okA || !okB {
		return Branch{}, Branch{}, fmt.Errorf("unknown branch in pair %s%s", a, b)
	}
	return ba, bb, nil
}

func (r *Registry) fillPairs(dst map[pairKey]bool, table [][2]string) error {
	for _, p := range table {
		a, b, err := r.branchPair(p[0], p[1])
		if err != nil {
			return err
		}
		dst[keyOf(a.Index, b.Index)] = true
	}
	return nil
}

// bureaus resolves triad definitions and checks that consecutive members sit
// step positions apart in the twelve-cycle.
func (r *Registry) bureaus(defs []triadDef, step int) ([]Bureau, error) {
	out := make([]Bureau, 0, len(defs))
	for _, d := range defs {
		var bu Bureau
		for i, g := range d.members {
			b, ok := r.Branch(g)
			if !ok {
				return nil, fmt.Errorf("unknown branch %q", g)
			}
			bu.Members[i] = b
		}
		for i := 1; i < 3; i++ {
			if (bu.Members[i].Index-bu.Members[i-1].Index+12)%12 != step {
				return nil, fmt.Errorf("%s: members are not %d apart", bu, step)
			}
		}
		bu.Center = bu.Members[1]
		bu.Element = d.element
		out = append(out, bu)
	}
	return out, nil
}

// Stem looks a stem up by glyph or pinyin.
func (r *Registry) Stem(name string) (Stem, bool) {
	i, ok := r.stemIdx[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return Stem{}, false
	}
	return r.stems[i], true
}

// Branch looks a branch up by glyph or pinyin.
func (r *Registry) Branch(name string) (Branch, bool) {
	i, ok := r.branchIdx[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return Branch{}, false
	}
	return r.branches[i], true
}

// MustStem is Stem for symbols that have already been validated.
func (r *Registry) MustStem(name string) Stem {
	s, ok := r.Stem(name)
	if !ok {
		panic(LookupError{Table: "stem", Symbol: name})
	}
	return s
}

// MustBranch is Branch for symbols that have already been validated.
func (r *Registry) MustBranch(name string) Branch {
	b, ok := r.Branch(name)
	if !ok {
		panic(LookupError{Table: "branch", Symbol: name})
	}
	return b
}

func (r *Registry) Stems() []Stem {
	return append([]Stem(nil), r.stems...)
}

func (r *Registry) Branches() []Branch {
	return append([]Branch(nil), r.branches...)
}

// HiddenStems returns the branch's hidden stems, main qi first.
func (r *Registry) HiddenStems(b Branch) []HiddenStemEntry {
	if b.Index < 0 || b.Index >= len(r.hidden) || r.branches[b.Index].Glyph != b.Glyph {
		panic(LookupError{Table: "hidden stems", Symbol: b.Glyph})
	}
	return append([]HiddenStemEntry(nil), r.hidden[b.Index]...)
}

// PrimaryHiddenStem returns the main qi of the branch.
func (r *Registry) PrimaryHiddenStem(b Branch) Stem {
	return r.HiddenStems(b)[0].Stem
}

// Combination reports the element two stems combine into.
func (r *Registry) Combination(a, b Stem) (Element, bool) {
	e, ok := r.combinations[keyOf(a.Index, b.Index)]
	return e, ok
}

// Harmony reports the element a six-harmony pair combines into.
func (r *Registry) Harmony(a, b Branch) (Element, bool) {
	e, ok := r.harmonies[keyOf(a.Index, b.Index)]
	return e, ok
}

func (r *Registry) Clash(a, b Branch) bool       { return r.clashes[keyOf(a.Index, b.Index)] }
func (r *Registry) Harm(a, b Branch) bool        { return r.harms[keyOf(a.Index, b.Index)] }
func (r *Registry) Destruction(a, b Branch) bool { return r.destructions[keyOf(a.Index, b.Index)] }

// Punishment reports a two-branch punishment: the fixed pairs, self-punishment,
// and any two members of a punishment triad.
func (r *Registry) Punishment(a, b Branch) bool {
	if r.punishments[keyOf(a.Index, b.Index)] {
		return true
	}
	if a.Index == b.Index {
		return false
	}
	for _, t := range r.punishTriads {
		if triadHas(t, a) && triadHas(t, b) {
			return true
		}
	}
	return false
}

func (r *Registry) PunishmentTriads() [][3]Branch {
	return append([][3]Branch(nil), r.punishTriads...)
}

func (r *Registry) SanHeBureaus() []Bureau {
	return append([]Bureau(nil), r.sanHe...)
}

func (r *Registry) SanHuiBureaus() []Bureau {
	return append([]Bureau(nil), r.sanHui...)
}

func triadHas(t [3]Branch, b Branch) bool {
	for _, m := range t {
		if m.Index == b.Index {
			return true
		}
	}
	return false
}
