package domain

// Band clasifica el nivel de riesgo derivado de un historial de check-ins.
type Band string

const (
	BandLow              Band = "low"
	BandElevated         Band = "elevated"
	BandModerate         Band = "moderate"
	BandHigh             Band = "high"
	BandInsufficientData Band = "insufficient_data"
)

// RiskAssessment es el resultado derivado del scoring. No se persiste.
type RiskAssessment struct {
	Band       Band   `json:"band"`
	Score      int    `json:"score"`
	Reflection string `json:"reflection"`
	Footer     string `json:"footer"`
}

// Insufficient indica que el historial no alcanza el piso de observaciones.
func (a RiskAssessment) Insufficient() bool {
	return a.Band == BandInsufficientData
}
