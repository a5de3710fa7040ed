package advisor

import (
	"fmt"
	"strings"

	"pillars/internal/chart"
	"pillars/internal/reaction"
	"pillars/internal/report"
	"pillars/internal/symbol"
)

// PromptBuilder constructs the reading prompt from the formatted chart and
// the reaction summary.
type PromptBuilder struct {
	// IncludeSuppressed lists overridden reactions as background context.
	IncludeSuppressed bool
}

func (pb *PromptBuilder) BuildReadingPrompt(c chart.Chart, r reaction.Report) string {
	var sb strings.Builder
	sb.WriteString("Role: Experienced BaZi practitioner. Task: Explain the elemental interactions in the four-pillar chart below.\n")
	sb.WriteString("Only discuss the relationships listed. Do not invent additional combinations or clashes.\n")

	sb.WriteString("\n### Chart\n")
	fmt.Fprintf(&sb, "%s\n\n", c.Key())
	sb.WriteString(report.PillarTable(c, true))

	sb.WriteString("\n### Relationships in effect\n")
	active := r.Active()
	if len(active) == 0 {
		sb.WriteString("- none\n")
	}
	for _, x := range active {
		writeReaction(&sb, x)
	}

	if pb.IncludeSuppressed {
		var overridden []reaction.Reaction
		for _, x := range r.Reactions {
			if x.Suppressed {
				overridden = append(overridden, x)
			}
		}
		if len(overridden) > 0 {
			sb.WriteString("\n### Overridden by stronger relationships\n")
			for _, x := range overridden {
				writeReaction(&sb, x)
			}
		}
	}

	sb.WriteString("\n### Transformation summary\n")
	fmt.Fprintf(&sb, "%s\n", report.SummaryLine(r))

	sb.WriteString("\n**INSTRUCTION**:\n")
	sb.WriteString("1. Describe each relationship in effect in one or two sentences.\n")
	sb.WriteString("2. Explain which element the chart leans toward, based on the transformation summary.\n")
	sb.WriteString("3. Keep the answer under 300 words and use Markdown.\n")
	return sb.String()
}

func writeReaction(sb *strings.Builder, x reaction.Reaction) {
	fmt.Fprintf(sb, "- %s between %s (%s)", report.Label(x), report.Participants(x), strings.Join(x.Symbols, ""))
	if x.Element != symbol.NoElement {
		fmt.Fprintf(sb, ", element %s", x.Element)
	}
	fmt.Fprintf(sb, ", %s\n", report.Status(x))
}
