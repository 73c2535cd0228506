package service

const (
	// Time windows
	ScoreHistoryDays  = 30
	AdherenceDays     = 7
	ChartDays         = 14
	FastingChartFasts = 20

	// State key of the last metric date uploaded to the gateway
	MetricsSyncCursorKey = "gateway-metrics-cursor"
)
