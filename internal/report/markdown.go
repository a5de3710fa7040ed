package report

import (
	"fmt"
	"strings"

	"pillars/internal/chart"
	"pillars/internal/reaction"
	"pillars/internal/symbol"
)

// Options controls what the renderers include.
type Options struct {
	IncludeSuppressed bool
	IncludeHidden     bool
}

// Markdown renders a chart and its analysis as a Markdown document.
func Markdown(c chart.Chart, r reaction.Report, opts Options) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "# Chart %s\n\n", c.Key())

	sb.WriteString("## Pillars\n\n")
	sb.WriteString(PillarTable(c, opts.IncludeHidden))

	sb.WriteString("\n## Reactions\n\n")
	rows := r.Reactions
	if !opts.IncludeSuppressed {
		rows = r.Unsuppressed()
	}
	if len(rows) == 0 {
		sb.WriteString("_No relationships detected._\n")
	} else {
		sb.WriteString("| Relationship | Pillars | Symbols | Element | Status |\n")
		sb.WriteString("|---|---|---|---|---|\n")
		for _, x := range rows {
			fmt.Fprintf(&sb, "| %s | %s | %s | %s | %s |\n",
				Label(x), Participants(x), strings.Join(x.Symbols, ""), elementCell(x.Element), Status(x))
		}
	}

	sb.WriteString("\n## Summary\n\n")
	sb.WriteString(SummaryLine(r))
	sb.WriteString("\n")
	return sb.String()
}

// PillarTable renders the four pillars, optionally with hidden stems.
func PillarTable(c chart.Chart, hidden bool) string {
	var sb strings.Builder
	if hidden {
		sb.WriteString("| Position | Stem | Branch | Hidden stems |\n|---|---|---|---|\n")
	} else {
		sb.WriteString("| Position | Stem | Branch |\n|---|---|---|\n")
	}
	for _, p := range c.Pillars() {
		fmt.Fprintf(&sb, "| %s | %s %s | %s %s |", p.Position, p.Stem.Glyph, p.Stem.Element, p.Branch.Glyph, p.Branch.Element)
		if hidden {
			parts := make([]string, len(p.Hidden))
			for i, h := range p.Hidden {
				parts[i] = fmt.Sprintf("%s(%d)", h.Stem.Glyph, h.Weight)
			}
			fmt.Fprintf(&sb, " %s |", strings.Join(parts, " "))
		}
		sb.WriteString("\n")
	}
	return sb.String()
}

// Label names the relationship, marking half bureaus and hidden combinations.
func Label(x reaction.Reaction) string {
	label := x.Kind.Label()
	if x.Partial {
		label = "Half " + strings.ToLower(label[:1]) + label[1:]
	}
	if x.Hidden {
		label += " (hidden)"
	}
	return label
}

func Participants(x reaction.Reaction) string {
	names := make([]string, len(x.Participants))
	for i, p := range x.Participants {
		names[i] = p.String()
	}
	return strings.Join(names, ", ")
}

// Status is "transforms", "combines", "active" or "suppressed".
func Status(x reaction.Reaction) string {
	switch {
	case x.Suppressed:
		return "suppressed"
	case !x.Kind.ProducesElement():
		return "active"
	case x.Resolved:
		return "transforms"
	default:
		return "combines"
	}
}

// SummaryLine lists the resolved elements, e.g. "Wood ×1, Metal ×2".
func SummaryLine(r reaction.Report) string {
	if len(r.Summary) == 0 {
		return "No transformations in effect."
	}
	parts := make([]string, len(r.Summary))
	for i, ec := range r.Summary {
		parts[i] = fmt.Sprintf("%s ×%d", ec.Element, ec.Count)
	}
	return strings.Join(parts, ", ")
}

func elementCell(e symbol.Element) string {
	if e == symbol.NoElement {
		return "-"
	}
	return e.String() + " " + e.Glyph()
}
