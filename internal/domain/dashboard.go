package domain

// OperationalMetrics are figures the backend doesn't measure itself. They
// come from a pluggable source so the alert counts stay deterministic.
type OperationalMetrics struct {
	IncidentsPrevented  int     `json:"incidents_prevented"`
	SystemUptime        float64 `json:"system_uptime"`
	MonitoredTrackKm    int     `json:"monitored_track_km"`
	AverageResponseTime float64 `json:"average_response_time"`
}

type DashboardStats struct {
	TotalAlerts             int64 `json:"total_alerts"`
	ActiveAlerts            int64 `json:"active_alerts"`
	CriticalAlerts          int64 `json:"critical_alerts"`
	ActiveTrains            int64 `json:"active_trains"`
	SabotageAttemptsBlocked int64 `json:"sabotage_attempts_blocked"`

	OperationalMetrics
}
