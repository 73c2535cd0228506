package analysis

// Trend is the direction of a score series
type Trend string

const (
	TrendImproving Trend = "improving"
	TrendStable    Trend = "stable"
	TrendDeclining Trend = "declining"
)

const (
	trendWindow    = 7
	trendThreshold = 3.0
)

// ClassifyTrend compares the mean of the latest 7 points against the mean of
// the 7 before them. Series are oldest first.
func ClassifyTrend(series []float64) Trend {
	if len(series) < 3 {
		return TrendStable
	}

	recentStart := len(series) - trendWindow
	if recentStart < 0 {
		recentStart = 0
	}
	olderStart := recentStart - trendWindow
	if olderStart < 0 {
		olderStart = 0
	}

	recent := series[recentStart:]
	older := series[olderStart:recentStart]
	if len(older) == 0 {
		return TrendStable
	}

	change := mean(recent) - mean(older)
	switch {
	case change > trendThreshold:
		return TrendImproving
	case change < -trendThreshold:
		return TrendDeclining
	default:
		return TrendStable
	}
}

// Arrow returns a glyph for display
func (t Trend) Arrow() string {
	switch t {
	case TrendImproving:
		return "↑"
	case TrendDeclining:
		return "↓"
	default:
		return "→"
	}
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}
