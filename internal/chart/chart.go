package chart

import (
	"fmt"
	"strings"

	"pillars/internal/symbol"
)

// Position is one of the four time slots of a chart.
type Position int

const (
	Year Position = iota
	Month
	Day
	Hour
)

const positionCount = 4

var positionNames = [positionCount]string{
	Year:  "year",
	Month: "month",
	Day:   "day",
	Hour:  "hour",
}

// Positions returns the four slots in chart order.
func Positions() []Position {
	return []Position{Year, Month, Day, Hour}
}

func (p Position) String() string {
	if p < 0 || p >= positionCount {
		return fmt.Sprintf("Position(%d)", int(p))
	}
	return positionNames[p]
}

func (p Position) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

func (p *Position) UnmarshalText(b []byte) error {
	v, ok := ParsePosition(string(b))
	if !ok {
		return fmt.Errorf("unknown position %q", string(b))
	}
	*p = v
	return nil
}

// ParsePosition accepts "year", "month", "day" or "hour" in any case.
func ParsePosition(s string) (Position, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	for i, name := range positionNames {
		if name == s {
			return Position(i), true
		}
	}
	return 0, false
}

// Pillar is a stem/branch pair at one position. Hidden is always derived from
// the registry.
type Pillar struct {
	Position Position
	Stem     symbol.Stem
	Branch   symbol.Branch
	Hidden   []symbol.HiddenStemEntry
}

func (p Pillar) String() string {
	return p.Stem.Glyph + p.Branch.Glyph
}

// Chart holds exactly one pillar per position. The zero value is not a valid
// chart; build one with New, Parse or ParseJSON.
type Chart struct {
	pillars [positionCount]Pillar
}

// Pillar returns the pillar at p.
func (c Chart) Pillar(p Position) Pillar {
	return c.pillars[p]
}

// Pillars returns the four pillars in year, month, day, hour order.
func (c Chart) Pillars() []Pillar {
	out := make([]Pillar, positionCount)
	copy(out, c.pillars[:])
	return out
}

func (c Chart) Stem(p Position) symbol.Stem     { return c.pillars[p].Stem }
func (c Chart) Branch(p Position) symbol.Branch { return c.pillars[p].Branch }

// Key is the canonical eight-glyph form, e.g. "甲子 己丑 丙寅 辛卯".
func (c Chart) Key() string {
	parts := make([]string, positionCount)
	for i, p := range c.pillars {
		parts[i] = p.String()
	}
	return strings.Join(parts, " ")
}

func (c Chart) String() string {
	return c.Key()
}

// Input returns the chart in its wire form.
func (c Chart) Input() Input {
	in := make(Input, positionCount)
	for _, p := range c.pillars {
		in[p.Position.String()] = RawPillar{Stem: p.Stem.Glyph, Branch: p.Branch.Glyph}
	}
	return in
}
