package reaction

import (
	"strings"

	"pillars/internal/chart"
	"pillars/internal/symbol"
)

// Reaction is one detected relationship between two or three pillars.
// Participants are kept sorted; Symbols lists the glyphs involved in the same
// order.
type Reaction struct {
	Kind         Kind             `json:"kind"`
	Participants []chart.Position `json:"participants"`
	Symbols      []string         `json:"symbols"`
	Element      symbol.Element   `json:"element,omitempty"`
	Resolved     bool             `json:"resolved"`
	Suppressed   bool             `json:"suppressed"`
	Partial      bool             `json:"partial,omitempty"`
	Hidden       bool             `json:"hidden,omitempty"`
	SuppressedBy []int            `json:"suppressed_by,omitempty"`
}

// Rank is the reaction's precedence. Half bureaus sit below full ones.
func (r Reaction) Rank() Rank {
	if (r.Kind == SanHeBureau || r.Kind == SanHuiBureau) && r.Partial {
		return RankHalfBureau
	}
	return kindRank[r.Kind]
}

// Involves reports whether p is one of the participants.
func (r Reaction) Involves(p chart.Position) bool {
	for _, q := range r.Participants {
		if q == p {
			return true
		}
	}
	return false
}

// SharesParticipant reports whether the two reactions touch a common pillar.
func (r Reaction) SharesParticipant(other Reaction) bool {
	for _, p := range r.Participants {
		if other.Involves(p) {
			return true
		}
	}
	return false
}

// Active reports whether the reaction is resolved and not suppressed.
func (r Reaction) Active() bool {
	return r.Resolved && !r.Suppressed
}

func (r Reaction) String() string {
	var sb strings.Builder
	sb.WriteString(r.Kind.String())
	sb.WriteString("(")
	sb.WriteString(strings.Join(r.Symbols, ""))
	if r.Element != symbol.NoElement {
		sb.WriteString("→")
		sb.WriteString(r.Element.String())
	}
	sb.WriteString(")@")
	names := make([]string, len(r.Participants))
	for i, p := range r.Participants {
		names[i] = p.String()
	}
	sb.WriteString(strings.Join(names, ","))
	return sb.String()
}

// member is one participating symbol before it becomes part of a Reaction.
type member struct {
	pos   chart.Position
	glyph string
}

func newReaction(kind Kind, element symbol.Element, members ...member) Reaction {
	// at most three members: insertion sort by position
	for i := 1; i < len(members); i++ {
		for j := i; j > 0 && members[j].pos < members[j-1].pos; j-- {
			members[j], members[j-1] = members[j-1], members[j]
		}
	}
	r := Reaction{
		Kind:         kind,
		Element:      element,
		Participants: make([]chart.Position, len(members)),
		Symbols:      make([]string, len(members)),
	}
	for i, m := range members {
		r.Participants[i] = m.pos
		r.Symbols[i] = m.glyph
	}
	return r
}

func lessParticipants(a, b []chart.Position) bool {
	for i := 0; i < len(a) && i < len(b); i++ {
		if a[i] != b[i] {
			return a[i] < b[i]
		}
	}
	return len(a) < len(b)
}
