package reaction

import (
	"math/rand"
	"testing"

	"pillars/internal/chart"
	"pillars/internal/symbol"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// sweepCharts builds charts over every branch combination. Stems rotate with
// the branches so that stem combinations show up as well.
func sweepCharts(t *testing.T, step int) []chart.Chart {
	t.Helper()
	reg := symbol.Default()
	stems, branches := reg.Stems(), reg.Branches()

	var out []chart.Chart
	n := 0
	for y := range branches {
		for m := range branches {
			for d := range branches {
				for h := range branches {
					n++
					if n%step != 0 {
						continue
					}
					idx := [4]int{y, m, d, h}
					raw := make([]chart.RawPillar, 4)
					for i, p := range chart.Positions() {
						raw[i] = chart.RawPillar{
							Position: p.String(),
							Stem:     stems[(idx[i]*7+i*3)%len(stems)].Glyph,
							Branch:   branches[idx[i]].Glyph,
						}
					}
					c, err := chart.New(reg, raw)
					require.NoError(t, err)
					out = append(out, c)
				}
			}
		}
	}
	return out
}

func sweepStep() int {
	if testing.Short() {
		return 37
	}
	return 1
}

func TestResolve_PrecedenceIsMonotonic(t *testing.T) {
	a := NewAnalyzer(symbol.Default(), DefaultOptions())
	for _, c := range sweepCharts(t, sweepStep()) {
		report, err := a.Analyze(c)
		require.NoError(t, err)
		rs := report.Reactions

		for i := range rs {
			for _, by := range rs[i].SuppressedBy {
				require.True(t, rs[by].Rank().Outranks(rs[i].Rank()), "%s: %s suppressed by %s", c, rs[i], rs[by])
				require.True(t, rs[by].SharesParticipant(rs[i]))
			}
			for j := range rs {
				if i == j || !rs[i].SharesParticipant(rs[j]) {
					continue
				}
				if rs[i].Rank().Outranks(rs[j].Rank()) {
					require.True(t, rs[j].Suppressed, "%s: %s should suppress %s", c, rs[i], rs[j])
				}
				if rs[i].Rank() == rs[j].Rank() && rs[i].Suppressed {
					require.NotContains(t, rs[i].SuppressedBy, j, "equal ranks never suppress")
				}
			}
		}
	}
}

func TestResolve_OrderIndependent(t *testing.T) {
	a := NewAnalyzer(symbol.Default(), DefaultOptions())
	rng := rand.New(rand.NewSource(7))

	for _, c := range sweepCharts(t, 97) {
		report, err := a.Analyze(c)
		require.NoError(t, err)

		shuffled := make([]Reaction, len(report.Reactions))
		copy(shuffled, report.Reactions)
		rng.Shuffle(len(shuffled), func(i, j int) { shuffled[i], shuffled[j] = shuffled[j], shuffled[i] })
		Resolve(shuffled)

		want := make(map[string]bool)
		for _, r := range report.Reactions {
			want[r.String()] = r.Suppressed
		}
		for _, r := range shuffled {
			assert.Equal(t, want[r.String()], r.Suppressed, "%s: %s", c, r)
		}
	}
}

func TestAnalyze_Completeness(t *testing.T) {
	reg := symbol.Default()
	a := NewAnalyzer(reg, DefaultOptions())

	for _, c := range sweepCharts(t, sweepStep()*3) {
		report, err := a.Analyze(c)
		require.NoError(t, err)

		for _, pp := range positionPairs {
			b1, b2 := c.Branch(pp[0]), c.Branch(pp[1])
			s1, s2 := c.Stem(pp[0]), c.Stem(pp[1])

			_, clash := find(report.Reactions, Clash, pp[0], pp[1])
			assert.Equal(t, reg.Clash(b1, b2), clash)
			_, harm := find(report.Reactions, Harm, pp[0], pp[1])
			assert.Equal(t, reg.Harm(b1, b2), harm)
			_, destruction := find(report.Reactions, Destruction, pp[0], pp[1])
			assert.Equal(t, reg.Destruction(b1, b2), destruction)
			_, wantHarmony := reg.Harmony(b1, b2)
			_, harmony := find(report.Reactions, BranchHarmony, pp[0], pp[1])
			assert.Equal(t, wantHarmony, harmony)
			_, wantCombine := reg.Combination(s1, s2)
			_, combine := find(report.Reactions, StemCombine, pp[0], pp[1])
			assert.Equal(t, wantCombine, combine)
		}
	}
}

func TestResolve_EqualRanksCoexist(t *testing.T) {
	rs := []Reaction{
		{Kind: Clash, Participants: []chart.Position{chart.Year, chart.Month}},
		{Kind: Clash, Participants: []chart.Position{chart.Month, chart.Day}},
		{Kind: Harm, Participants: []chart.Position{chart.Day, chart.Hour}},
	}
	Resolve(rs)
	assert.False(t, rs[0].Suppressed)
	assert.False(t, rs[1].Suppressed)
	assert.True(t, rs[2].Suppressed)
	assert.Equal(t, []int{1}, rs[2].SuppressedBy)
}

func TestResolve_ClearsStaleFlags(t *testing.T) {
	rs := []Reaction{
		{Kind: Destruction, Participants: []chart.Position{chart.Year, chart.Month}, Suppressed: true, SuppressedBy: []int{4}},
	}
	Resolve(rs)
	assert.False(t, rs[0].Suppressed)
	assert.Nil(t, rs[0].SuppressedBy)
}

func TestKind_Tables(t *testing.T) {
	for _, k := range Kinds() {
		parsed, ok := ParseKind(k.String())
		require.True(t, ok)
		assert.Equal(t, k, parsed)
		assert.NotEmpty(t, k.Label())
	}
	assert.True(t, StemCombine.ProducesElement())
	assert.False(t, Clash.ProducesElement())
	assert.True(t, RankFullBureau.Outranks(RankHalfBureau))
	assert.True(t, RankHarmony.Outranks(RankStemCombine))
	assert.True(t, RankStemCombine.Outranks(RankClash))
	assert.True(t, RankHarm.Outranks(RankDestruction))
}
