package reaction

import (
	"sort"
	"strings"

	"pillars/internal/chart"
	"pillars/internal/symbol"
)

// ElementCount is one line of the report summary.
type ElementCount struct {
	Element symbol.Element `json:"element"`
	Count   int            `json:"count"`
}

// StageStat records how many reactions one detector produced.
type StageStat struct {
	Detector string `json:"detector"`
	Found    int    `json:"found"`
}

// Report is the result of analysing one chart.
type Report struct {
	Chart     string         `json:"chart"`
	Reactions []Reaction     `json:"reactions"`
	Summary   []ElementCount `json:"summary"`
	Stages    []StageStat    `json:"stages,omitempty"`
}

// Active returns the resolved, unsuppressed reactions.
func (r Report) Active() []Reaction {
	var out []Reaction
	for _, x := range r.Reactions {
		if x.Active() {
			out = append(out, x)
		}
	}
	return out
}

// Unsuppressed returns every reaction that kept precedence, resolved or not.
func (r Report) Unsuppressed() []Reaction {
	var out []Reaction
	for _, x := range r.Reactions {
		if !x.Suppressed {
			out = append(out, x)
		}
	}
	return out
}

// ByKind returns every reaction of kind k, suppressed ones included.
func (r Report) ByKind(k Kind) []Reaction {
	var out []Reaction
	for _, x := range r.Reactions {
		if x.Kind == k {
			out = append(out, x)
		}
	}
	return out
}

func (r Report) Count(k Kind) int {
	return len(r.ByKind(k))
}

// Analyzer runs the detectors over a chart and resolves precedence. It holds
// no per-call state and may be shared between goroutines.
type Analyzer struct {
	reg       *symbol.Registry
	detectors []Detector
}

// NewAnalyzer wires the stem and branch detectors against reg.
func NewAnalyzer(reg *symbol.Registry, opts Options) *Analyzer {
	return NewAnalyzerWithDetectors(reg, NewStemDetector(reg, opts), NewBranchDetector(reg, opts))
}

// NewAnalyzerWithDetectors runs the given detectors in order.
func NewAnalyzerWithDetectors(reg *symbol.Registry, detectors ...Detector) *Analyzer {
	return &Analyzer{reg: reg, detectors: detectors}
}

var defaultAnalyzer = NewAnalyzer(symbol.Default(), DefaultOptions())

// Analyze parses in and analyses it with the default registry and options.
func Analyze(in chart.Input) (Report, error) {
	return defaultAnalyzer.AnalyzeInput(in)
}

// AnalyzeInput validates the mapping form and analyses the resulting chart.
func (a *Analyzer) AnalyzeInput(in chart.Input) (Report, error) {
	c, err := chart.Parse(a.reg, in)
	if err != nil {
		return Report{}, err
	}
	return a.Analyze(c)
}

// Analyze returns every relationship in c, in canonical order, with
// precedence applied. It fails only when c was not built by the chart
// package.
func (a *Analyzer) Analyze(c chart.Chart) (Report, error) {
	if err := a.check(c); err != nil {
		return Report{}, err
	}

	report := Report{Chart: c.Key()}
	reactions := []Reaction{}
	for _, d := range a.detectors {
		found := d.Detect(c)
		report.Stages = append(report.Stages, StageStat{Detector: d.Name(), Found: len(found)})
		reactions = append(reactions, found...)
	}

	sortReactions(reactions)
	Resolve(reactions)

	report.Reactions = reactions
	report.Summary = summarize(reactions)
	return report, nil
}

// check rejects zero or hand-built charts whose symbols the registry does
// not know.
func (a *Analyzer) check(c chart.Chart) error {
	for _, p := range c.Pillars() {
		if s, ok := a.reg.Stem(p.Stem.Glyph); !ok || s != p.Stem {
			return &chart.ValidationError{Position: p.Position.String(), Symbol: p.Stem.Glyph, Reason: "unknown stem"}
		}
		if b, ok := a.reg.Branch(p.Branch.Glyph); !ok || b != p.Branch {
			return &chart.ValidationError{Position: p.Position.String(), Symbol: p.Branch.Glyph, Reason: "unknown branch"}
		}
	}
	return nil
}

func summarize(rs []Reaction) []ElementCount {
	counts := make(map[symbol.Element]int)
	for _, r := range rs {
		if r.Active() && r.Element != symbol.NoElement {
			counts[r.Element]++
		}
	}
	out := []ElementCount{}
	for _, e := range symbol.Elements() {
		if n := counts[e]; n > 0 {
			out = append(out, ElementCount{Element: e, Count: n})
		}
	}
	return out
}

// sortReactions puts reactions in canonical order: precedence first, then
// kind, pillars, element and symbols.
func sortReactions(rs []Reaction) {
	sort.SliceStable(rs, func(i, j int) bool {
		a, b := rs[i], rs[j]
		if ra, rb := a.Rank(), b.Rank(); ra != rb {
			return ra < rb
		}
		if a.Kind != b.Kind {
			return a.Kind < b.Kind
		}
		if lessParticipants(a.Participants, b.Participants) {
			return true
		}
		if lessParticipants(b.Participants, a.Participants) {
			return false
		}
		if a.Element != b.Element {
			return a.Element < b.Element
		}
		if a.Hidden != b.Hidden {
			return !a.Hidden
		}
		return strings.Join(a.Symbols, "") < strings.Join(b.Symbols, "")
	})
}
