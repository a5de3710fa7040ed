package chart

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"unicode/utf8"

	"pillars/internal/symbol"
)

// ErrInvalidChart is matched by every ValidationError.
var ErrInvalidChart = errors.New("invalid chart")

// ValidationError names the offending position and symbol.
type ValidationError struct {
	Position string
	Symbol   string
	Reason   string
}

func (e *ValidationError) Error() string {
	var sb strings.Builder
	sb.WriteString("invalid chart")
	if e.Position != "" {
		fmt.Fprintf(&sb, ": %s", e.Position)
	}
	fmt.Fprintf(&sb, ": %s", e.Reason)
	if e.Symbol != "" {
		fmt.Fprintf(&sb, " %q", e.Symbol)
	}
	return sb.String()
}

func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidChart
}

// RawPillar is one pillar as supplied by a caller. HiddenStems is accepted so
// that round-tripped reports decode, but it is never read.
type RawPillar struct {
	Position    string   `json:"position,omitempty" yaml:"position,omitempty"`
	Stem        string   `json:"stem" yaml:"stem"`
	Branch      string   `json:"branch" yaml:"branch"`
	HiddenStems []string `json:"hidden_stems,omitempty" yaml:"hidden_stems,omitempty"`
}

// Input is the mapping form of a chart: position name -> pillar.
type Input map[string]RawPillar

// New validates raw pillars and builds a Chart. Each pillar must name its
// position.
func New(reg *symbol.Registry, raw []RawPillar) (Chart, error) {
	var c Chart
	var seen [positionCount]bool

	for _, rp := range raw {
		pos, ok := ParsePosition(rp.Position)
		if !ok {
			return Chart{}, &ValidationError{Symbol: rp.Position, Reason: "unknown position"}
		}
		if seen[pos] {
			return Chart{}, &ValidationError{Position: pos.String(), Reason: "duplicate position"}
		}
		seen[pos] = true

		stem, ok := reg.Stem(rp.Stem)
		if !ok {
			return Chart{}, &ValidationError{Position: pos.String(), Symbol: rp.Stem, Reason: "unknown stem"}
		}
		branch, ok := reg.Branch(rp.Branch)
		if !ok {
			return Chart{}, &ValidationError{Position: pos.String(), Symbol: rp.Branch, Reason: "unknown branch"}
		}

		c.pillars[pos] = Pillar{
			Position: pos,
			Stem:     stem,
			Branch:   branch,
			Hidden:   reg.HiddenStems(branch),
		}
	}

	for _, pos := range Positions() {
		if !seen[pos] {
			return Chart{}, &ValidationError{Position: pos.String(), Reason: "missing position"}
		}
	}
	return c, nil
}

// Parse builds a Chart from the mapping form. Keys are checked in chart order
// first, so the same bad input always reports the same error.
func Parse(reg *symbol.Registry, in Input) (Chart, error) {
	keys := make([]string, 0, len(in))
	for k := range in {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		pi, oki := ParsePosition(keys[i])
		pj, okj := ParsePosition(keys[j])
		switch {
		case oki && okj:
			return pi < pj
		case oki != okj:
			return oki
		default:
			return keys[i] < keys[j]
		}
	})

	raw := make([]RawPillar, 0, len(keys))
	for _, k := range keys {
		rp := in[k]
		rp.Position = k
		raw = append(raw, rp)
	}
	return New(reg, raw)
}

// ParseJSON accepts either {"year": {...}, ...} or [{"position": "year", ...}, ...].
func ParseJSON(reg *symbol.Registry, data []byte) (Chart, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var raw []RawPillar
		if err := json.Unmarshal(trimmed, &raw); err != nil {
			return Chart{}, &ValidationError{Reason: "malformed chart json: " + err.Error()}
		}
		return New(reg, raw)
	}

	var in Input
	if err := json.Unmarshal(trimmed, &in); err != nil {
		return Chart{}, &ValidationError{Reason: "malformed chart json: " + err.Error()}
	}
	return Parse(reg, in)
}

// FromGanZhi builds a chart from four stem-branch strings such as "甲子" or
// "jia-zi".
func FromGanZhi(reg *symbol.Registry, year, month, day, hour string) (Chart, error) {
	values := [positionCount]string{year, month, day, hour}
	raw := make([]RawPillar, 0, positionCount)
	for i, v := range values {
		pos := Position(i)
		stem, branch, ok := splitGanZhi(v)
		if !ok {
			return Chart{}, &ValidationError{Position: pos.String(), Symbol: v, Reason: "expected stem and branch"}
		}
		raw = append(raw, RawPillar{Position: pos.String(), Stem: stem, Branch: branch})
	}
	return New(reg, raw)
}

func splitGanZhi(s string) (string, string, bool) {
	s = strings.TrimSpace(s)
	if fields := strings.FieldsFunc(s, func(r rune) bool { return r == '-' || r == ' ' || r == '/' }); len(fields) == 2 {
		return fields[0], fields[1], true
	}
	if utf8.RuneCountInString(s) == 2 {
		_, size := utf8.DecodeRuneInString(s)
		return s[:size], s[size:], true
	}
	return "", "", false
}
