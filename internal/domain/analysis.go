package domain

// Ventanas temporales del análisis de patrones.
const (
	Window3Day  = "3day"
	Window14Day = "14day"
	Window30Day = "30day"
)

// Signal es una señal de riesgo individual detectada en una ventana.
type Signal struct {
	SignalType string   `json:"signal_type"`
	Window     string   `json:"window"`
	Value      float64  `json:"value"`
	Baseline   float64  `json:"baseline"`
	Deviation  *float64 `json:"deviation,omitempty"` // nil con baselines por defecto
	Confidence float64  `json:"confidence"`
}

// WindowStats son los agregados de una ventana temporal.
type WindowStats struct {
	Available    bool    `json:"available"`
	Count        int     `json:"count"`
	SleepAvg     float64 `json:"sleep_avg,omitempty"`
	SleepMin     float64 `json:"sleep_min,omitempty"`
	IsolationAvg float64 `json:"isolation_avg,omitempty"`
	IsolationMax float64 `json:"isolation_max,omitempty"`
	AdherenceAvg float64 `json:"adherence_avg,omitempty"`
	AdherenceMin float64 `json:"adherence_min,omitempty"`
	CravingsAvg  float64 `json:"cravings_avg,omitempty"`
	CravingsMax  float64 `json:"cravings_max,omitempty"`
	MoodAvg      float64 `json:"mood_avg,omitempty"`
	MoodMin      float64 `json:"mood_min,omitempty"`
}

// Baselines son los valores de referencia por sujeto para medir desviaciones.
type Baselines struct {
	SleepHours float64 `json:"sleep_hours"`
	Isolation  float64 `json:"isolation"`
	Adherence  float64 `json:"adherence"`
	Cravings   float64 `json:"cravings"`
	MoodTrend  float64 `json:"mood_trend"`
	IsDefault  bool    `json:"is_default"`
}

// PatternsAnalysis es la salida estructurada del analista de patrones.
type PatternsAnalysis struct {
	RiskBand    Band                   `json:"risk_band"`
	Score       *int                   `json:"score"` // nil con historial insuficiente
	Signals     []Signal               `json:"signals"`
	Windows     map[string]WindowStats `json:"windows"`
	ReasonCodes []string               `json:"reason_codes"`
	Confidence  float64                `json:"confidence"`
	Metadata    map[string]any         `json:"metadata"`
}
