package advisor

import (
	"context"

	"pillars/internal/chart"
	"pillars/internal/reaction"
)

// Advisor turns an analysed chart into a written reading.
type Advisor interface {
	Advise(ctx context.Context, c chart.Chart, r reaction.Report) (string, error)
}

const noAdvice = "No analysis available."
