package reaction

import "fmt"

// Kind enumerates every relationship the engine can detect.
type Kind int

const (
	StemCombine Kind = iota
	BranchHarmony
	SanHeBureau
	SanHuiBureau
	Clash
	Punishment
	Harm
	Destruction

	kindCount
)

// Every per-kind table is a keyed array literal. A new Kind lengthens
// kindCount, and the index expressions below stop compiling until each table
// has an entry for it.
var kindNames = [...]string{
	StemCombine:   "stem_combine",
	BranchHarmony: "branch_harmony",
	SanHeBureau:   "san_he_bureau",
	SanHuiBureau:  "san_hui_bureau",
	Clash:         "clash",
	Punishment:    "punishment",
	Harm:          "harm",
	Destruction:   "destruction",
}

var kindLabels = [...]string{
	StemCombine:   "Stem combination",
	BranchHarmony: "Six harmony",
	SanHeBureau:   "Three-harmony bureau",
	SanHuiBureau:  "Directional bureau",
	Clash:         "Clash",
	Punishment:    "Punishment",
	Harm:          "Harm",
	Destruction:   "Destruction",
}

// kindRank is the rank of a complete relationship of each kind. Partial
// bureaus are demoted in Reaction.Rank.
var kindRank = [...]Rank{
	StemCombine:   RankStemCombine,
	BranchHarmony: RankHarmony,
	SanHeBureau:   RankFullBureau,
	SanHuiBureau:  RankFullBureau,
	Clash:         RankClash,
	Punishment:    RankPunishment,
	Harm:          RankHarm,
	Destruction:   RankDestruction,
}

// producesElement marks kinds that carry a resultant element.
var producesElement = [...]bool{
	StemCombine:   true,
	BranchHarmony: true,
	SanHeBureau:   true,
	SanHuiBureau:  true,
	Clash:         false,
	Punishment:    false,
	Harm:          false,
	Destruction:   false,
}

var (
	_ = [1]struct{}{}[len(kindNames)-int(kindCount)]
	_ = [1]struct{}{}[len(kindLabels)-int(kindCount)]
	_ = [1]struct{}{}[len(kindRank)-int(kindCount)]
	_ = [1]struct{}{}[len(producesElement)-int(kindCount)]
)

// Kinds returns every kind in declaration order.
func Kinds() []Kind {
	out := make([]Kind, 0, kindCount)
	for k := Kind(0); k < kindCount; k++ {
		out = append(out, k)
	}
	return out
}

func (k Kind) valid() bool { return k >= 0 && k < kindCount }

func (k Kind) String() string {
	if !k.valid() {
		return fmt.Sprintf("Kind(%d)", int(k))
	}
	return kindNames[k]
}

// Label is the human-readable name used by renderers.
func (k Kind) Label() string {
	if !k.valid() {
		return k.String()
	}
	return kindLabels[k]
}

// ProducesElement reports whether reactions of this kind carry an element.
func (k Kind) ProducesElement() bool {
	return k.valid() && producesElement[k]
}

func (k Kind) MarshalText() ([]byte, error) {
	if !k.valid() {
		return nil, fmt.Errorf("invalid reaction kind %d", int(k))
	}
	return []byte(kindNames[k]), nil
}

func (k *Kind) UnmarshalText(b []byte) error {
	v, ok := ParseKind(string(b))
	if !ok {
		return fmt.Errorf("unknown reaction kind %q", string(b))
	}
	*k = v
	return nil
}

// ParseKind maps a kind name back to its value.
func ParseKind(s string) (Kind, bool) {
	for i, name := range kindNames {
		if name == s {
			return Kind(i), true
		}
	}
	return 0, false
}

// Rank orders relationships by precedence. Lower ranks dominate.
type Rank int

const (
	RankFullBureau Rank = iota
	RankHalfBureau
	RankHarmony
	RankStemCombine
	RankClash
	RankPunishment
	RankHarm
	RankDestruction
)

// Outranks reports whether r takes precedence over other.
func (r Rank) Outranks(other Rank) bool {
	return r < other
}
