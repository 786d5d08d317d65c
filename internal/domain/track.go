package domain

type Track struct {
	ID        string     `json:"id"`
	Name      string     `json:"name"`
	Start     [2]float64 `json:"start"`
	End       [2]float64 `json:"end"`
	Status    string     `json:"status"`
	RiskLevel int        `json:"risk_level"`
}

// DefaultTracks is the digital-twin catalog served to the dashboard map.
var DefaultTracks = []Track{
	{ID: "track-1", Name: "Delhi-Mumbai Mainline", Start: [2]float64{28.6139, 77.2090}, End: [2]float64{19.0760, 72.8777}, Status: "safe", RiskLevel: 15},
	{ID: "track-2", Name: "Chennai-Bangalore Route", Start: [2]float64{13.0827, 80.2707}, End: [2]float64{12.9716, 77.5946}, Status: "monitoring", RiskLevel: 45},
	{ID: "track-3", Name: "Kolkata-Howrah Bridge", Start: [2]float64{22.5726, 88.3639}, End: [2]float64{22.5958, 88.2636}, Status: "safe", RiskLevel: 10},
	{ID: "track-4", Name: "Jaipur-Ajmer Line", Start: [2]float64{26.9124, 75.7873}, End: [2]float64{26.4499, 74.6399}, Status: "alert", RiskLevel: 85},
}

type DroneDispatch struct {
	Success  bool   `json:"success"`
	DroneID  string `json:"drone_id"`
	Location string `json:"location"`
	ETA      int    `json:"eta"`
	AlertID  string `json:"alert_id"`
	Status   string `json:"status"`
}
