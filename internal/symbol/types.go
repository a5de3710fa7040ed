package symbol

import "fmt"

// Element is one of the five phases. NoElement marks relationships that do
// not produce anything.
type Element int

const (
	NoElement Element = iota
	Wood
	Fire
	Earth
	Metal
	Water
)

var elementNames = [...]string{
	NoElement: "",
	Wood:      "Wood",
	Fire:      "Fire",
	Earth:     "Earth",
	Metal:     "Metal",
	Water:     "Water",
}

var elementGlyphs = [...]string{
	NoElement: "",
	Wood:      "木",
	Fire:      "火",
	Earth:     "土",
	Metal:     "金",
	Water:     "水",
}

// Elements returns the five elements in generating-cycle order.
func Elements() []Element {
	return []Element{Wood, Fire, Earth, Metal, Water}
}

func (e Element) String() string {
	if e < 0 || int(e) >= len(elementNames) {
		return fmt.Sprintf("Element(%d)", int(e))
	}
	return elementNames[e]
}

// Glyph returns the single-character Chinese name.
func (e Element) Glyph() string {
	if e < 0 || int(e) >= len(elementGlyphs) {
		return ""
	}
	return elementGlyphs[e]
}

func (e Element) MarshalText() ([]byte, error) {
	return []byte(e.String()), nil
}

func (e *Element) UnmarshalText(b []byte) error {
	s := string(b)
	for i, name := range elementNames {
		if name == s || (s != "" && elementGlyphs[i] == s) {
			*e = Element(i)
			return nil
		}
	}
	return fmt.Errorf("unknown element %q", s)
}

type Polarity int

const (
	Yang Polarity = iota
	Yin
)

func (p Polarity) String() string {
	if p == Yin {
		return "Yin"
	}
	return "Yang"
}

// Stem is one of the ten Heavenly Stems.
type Stem struct {
	Index    int
	Glyph    string
	Pinyin   string
	Element  Element
	Polarity Polarity
}

func (s Stem) String() string { return s.Glyph }

// Branch is one of the twelve Earthly Branches. Index is the position in the
// twelve-cycle starting at 子 and drives all offset arithmetic.
type Branch struct {
	Index    int
	Glyph    string
	Pinyin   string
	Element  Element
	Polarity Polarity
}

func (b Branch) String() string { return b.Glyph }

// Phase ranks a hidden stem inside its branch.
type Phase int

const (
	MainQi Phase = iota
	MiddleQi
	ResidualQi
)

func (p Phase) String() string {
	switch p {
	case MainQi:
		return "main"
	case MiddleQi:
		return "middle"
	case ResidualQi:
		return "residual"
	default:
		return fmt.Sprintf("Phase(%d)", int(p))
	}
}

// HiddenStemEntry is one stem concealed in a branch.
type HiddenStemEntry struct {
	Branch Branch
	Stem   Stem
	Phase  Phase
	Weight int
}

// Bureau is a three-branch grouping with a resultant element. Center is the
// branch every half bureau must contain.
type Bureau struct {
	Members [3]Branch
	Center  Branch
	Element Element
}

// HalfPairs returns the two sub-pairs anchored on the center branch.
func (b Bureau) HalfPairs() [2][2]Branch {
	var out [2][2]Branch
	n := 0
	for _, m := range b.Members {
		if m.Index == b.Center.Index {
			continue
		}
		out[n] = [2]Branch{b.Center, m}
		n++
	}
	return out
}

// Contains reports whether br is one of the bureau's members.
func (b Bureau) Contains(br Branch) bool {
	for _, m := range b.Members {
		if m.Index == br.Index {
			return true
		}
	}
	return false
}

func (b Bureau) String() string {
	return b.Members[0].Glyph + b.Members[1].Glyph + b.Members[2].Glyph
}

// LookupError is raised (via panic) when a symbol that already passed
// validation is missing from the registry.
type LookupError struct {
	Table  string
	Symbol string
}

func (e LookupError) Error() string {
	return fmt.Sprintf("symbol registry: %s %q not found", e.Table, e.Symbol)
}
