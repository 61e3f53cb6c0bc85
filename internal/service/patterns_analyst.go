package service

import (
	"sync"
	"time"

	"recoveryos/internal/domain"
)

/*
========================
 Umbrales del analista
========================
*/

const (
	minCheckinsForBaseline = 3
	baselineSampleMax      = 10

	sleepLowThreshold      = 5.0  // horas
	isolationHighThreshold = 70.0 // escala 0-100
	adherenceLowThreshold  = 50.0 // porcentaje
	cravingsHighThreshold  = 60.0 // escala 0-100
	moodDeclineThreshold   = -5.0 // escala -10..10
)

// analysisWindows fija el orden de evaluación de las ventanas.
var analysisWindows = []struct {
	name string
	days int
}{
	{domain.Window3Day, 3},
	{domain.Window14Day, 14},
	{domain.Window30Day, 30},
}

/*
========================
 Patterns Analyst
========================
*/

// PatternsAnalyst detecta señales tempranas de riesgo sobre ventanas de
// 3, 14 y 30 días: reglas deterministas primero, con baselines por sujeto
// y códigos de razón para revisión clínica.
type PatternsAnalyst struct {
	mu        sync.Mutex
	baselines map[string]domain.Baselines
}

// NewPatternsAnalyst crea un analista con cache de baselines vacío.
func NewPatternsAnalyst() *PatternsAnalyst {
	return &PatternsAnalyst{baselines: make(map[string]domain.Baselines)}
}

// Analyze evalúa el historial usando el reloj del sistema.
func (a *PatternsAnalyst) Analyze(subject string, history []domain.CheckinRecord) domain.PatternsAnalysis {
	return a.AnalyzeAt(subject, history, time.Now().UTC())
}

// AnalyzeAt evalúa el historial contra el instante dado. Las baselines del
// sujeto se calculan una vez con sus primeros check-ins y quedan cacheadas.
func (a *PatternsAnalyst) AnalyzeAt(subject string, history []domain.CheckinRecord, now time.Time) domain.PatternsAnalysis {
	if len(history) < minCheckinsForBaseline {
		return domain.PatternsAnalysis{
			RiskBand:    domain.BandInsufficientData,
			Windows:     map[string]domain.WindowStats{},
			ReasonCodes: []string{"INSUFFICIENT_DATA"},
			Confidence:  0,
			Metadata: map[string]any{
				"checkins_count": len(history),
				"min_required":   minCheckinsForBaseline,
			},
		}
	}

	base := a.baselinesFor(subject, history)

	windows := make(map[string]domain.WindowStats, len(analysisWindows))
	var signals []domain.Signal
	for _, w := range analysisWindows {
		stats := windowStats(history, now.AddDate(0, 0, -w.days))
		windows[w.name] = stats
		signals = append(signals, detectWindowSignals(w.name, stats, base)...)
	}

	codes := reasonCodes(signals)
	score, confidence := signalRiskScore(signals)

	return domain.PatternsAnalysis{
		RiskBand:    bandFromScore(score),
		Score:       &score,
		Signals:     signals,
		Windows:     windows,
		ReasonCodes: codes,
		Confidence:  confidence,
		Metadata: map[string]any{
			"checkins_analyzed": len(history),
			"baselines":         base,
			"windows_available": []string{domain.Window3Day, domain.Window14Day, domain.Window30Day},
		},
	}
}

// baselinesFor devuelve las baselines cacheadas del sujeto, calculándolas
// de sus primeros check-ins la primera vez.
func (a *PatternsAnalyst) baselinesFor(subject string, history []domain.CheckinRecord) domain.Baselines {
	a.mu.Lock()
	defer a.mu.Unlock()
	if base, ok := a.baselines[subject]; ok {
		return base
	}
	base := calculateBaselines(history)
	a.baselines[subject] = base
	return base
}

func calculateBaselines(history []domain.CheckinRecord) domain.Baselines {
	sample := history
	if len(sample) > baselineSampleMax {
		sample = sample[:baselineSampleMax]
	}
	if len(sample) < minCheckinsForBaseline {
		return domain.Baselines{
			SleepHours: 7.0,
			Isolation:  30.0,
			Adherence:  70.0,
			Cravings:   40.0,
			MoodTrend:  0.0,
			IsDefault:  true,
		}
	}

	var sleep, isolation, adherence, cravings, mood float64
	for _, c := range sample {
		sleep += c.SleepHours
		isolation += float64(c.Isolation)
		adherence += float64(c.Adherence)
		cravings += float64(c.Cravings)
		mood += float64(c.MoodTrend)
	}
	n := float64(len(sample))
	return domain.Baselines{
		SleepHours: sleep / n,
		Isolation:  isolation / n,
		Adherence:  adherence / n,
		Cravings:   cravings / n,
		MoodTrend:  mood / n,
	}
}

/*
========================
 Ventanas y señales
========================
*/

func windowStats(history []domain.CheckinRecord, cutoff time.Time) domain.WindowStats {
	var inWindow []domain.CheckinRecord
	for _, c := range history {
		if !c.RecordedAt.Before(cutoff) {
			inWindow = append(inWindow, c)
		}
	}
	if len(inWindow) == 0 {
		return domain.WindowStats{}
	}

	stats := domain.WindowStats{
		Available:    true,
		Count:        len(inWindow),
		SleepMin:     inWindow[0].SleepHours,
		IsolationMax: float64(inWindow[0].Isolation),
		AdherenceMin: float64(inWindow[0].Adherence),
		CravingsMax:  float64(inWindow[0].Cravings),
		MoodMin:      float64(inWindow[0].MoodTrend),
	}
	var sleep, isolation, adherence, cravings, mood float64
	for _, c := range inWindow {
		sleep += c.SleepHours
		isolation += float64(c.Isolation)
		adherence += float64(c.Adherence)
		cravings += float64(c.Cravings)
		mood += float64(c.MoodTrend)

		if c.SleepHours < stats.SleepMin {
			stats.SleepMin = c.SleepHours
		}
		if float64(c.Isolation) > stats.IsolationMax {
			stats.IsolationMax = float64(c.Isolation)
		}
		if float64(c.Adherence) < stats.AdherenceMin {
			stats.AdherenceMin = float64(c.Adherence)
		}
		if float64(c.Cravings) > stats.CravingsMax {
			stats.CravingsMax = float64(c.Cravings)
		}
		if float64(c.MoodTrend) < stats.MoodMin {
			stats.MoodMin = float64(c.MoodTrend)
		}
	}
	n := float64(len(inWindow))
	stats.SleepAvg = sleep / n
	stats.IsolationAvg = isolation / n
	stats.AdherenceAvg = adherence / n
	stats.CravingsAvg = cravings / n
	stats.MoodAvg = mood / n
	return stats
}

// detectWindowSignals aplica las reglas deterministas sobre una ventana.
// Con baselines por defecto la desviación queda en nil.
func detectWindowSignals(window string, stats domain.WindowStats, base domain.Baselines) []domain.Signal {
	if !stats.Available {
		return nil
	}

	var signals []domain.Signal
	deviation := func(value, baseline float64) *float64 {
		if base.IsDefault {
			return nil
		}
		d := value - baseline
		return &d
	}

	if stats.SleepAvg < sleepLowThreshold {
		dev := deviation(stats.SleepAvg, base.SleepHours)
		confidence := 0.7
		if dev != nil && *dev < -1.5 {
			confidence = 0.9
		}
		signals = append(signals, domain.Signal{
			SignalType: "sleep_low",
			Window:     window,
			Value:      stats.SleepAvg,
			Baseline:   base.SleepHours,
			Deviation:  dev,
			Confidence: confidence,
		})
	}

	if stats.IsolationAvg > isolationHighThreshold {
		dev := deviation(stats.IsolationAvg, base.Isolation)
		confidence := 0.7
		if dev != nil && *dev > 20 {
			confidence = 0.85
		}
		signals = append(signals, domain.Signal{
			SignalType: "isolation_up",
			Window:     window,
			Value:      stats.IsolationAvg,
			Baseline:   base.Isolation,
			Deviation:  dev,
			Confidence: confidence,
		})
	}

	if stats.AdherenceAvg < adherenceLowThreshold {
		signals = append(signals, domain.Signal{
			SignalType: "adherence_low",
			Window:     window,
			Value:      stats.AdherenceAvg,
			Baseline:   base.Adherence,
			Deviation:  deviation(stats.AdherenceAvg, base.Adherence),
			Confidence: 0.9, // medida directa
		})
	}

	if stats.CravingsAvg > cravingsHighThreshold {
		signals = append(signals, domain.Signal{
			SignalType: "cravings_high",
			Window:     window,
			Value:      stats.CravingsAvg,
			Baseline:   base.Cravings,
			Deviation:  deviation(stats.CravingsAvg, base.Cravings),
			Confidence: 0.85,
		})
	}

	if stats.MoodAvg < moodDeclineThreshold {
		signals = append(signals, domain.Signal{
			SignalType: "mood_decline",
			Window:     window,
			Value:      stats.MoodAvg,
			Baseline:   base.MoodTrend,
			Deviation:  deviation(stats.MoodAvg, base.MoodTrend),
			Confidence: 0.75, // el ánimo es subjetivo
		})
	}

	return signals
}

/*
========================
 Razones y score
========================
*/

func reasonCodes(signals []domain.Signal) []string {
	types := make(map[string]bool)
	for _, s := range signals {
		types[s.SignalType] = true
	}

	var codes []string
	if types["sleep_low"] {
		codes = append(codes, "SLEEP_DISRUPTION")
	}
	if types["isolation_up"] {
		codes = append(codes, "SOCIAL_WITHDRAWAL")
	}
	if types["adherence_low"] {
		codes = append(codes, "ADHERENCE_DECLINE")
	}
	if types["cravings_high"] {
		codes = append(codes, "CRAVING_SPIKE")
	}
	if types["mood_decline"] {
		codes = append(codes, "MOOD_DETERIORATION")
	}
	if types["sleep_low"] && types["isolation_up"] {
		codes = append(codes, "SLEEP_ISOLATION_PATTERN")
	}
	if types["mood_decline"] && types["adherence_low"] {
		codes = append(codes, "MOOD_ADHERENCE_PATTERN")
	}
	if len(types) >= 3 {
		codes = append(codes, "MULTIPLE_RISK_FACTORS")
	}
	return codes
}

// signalRiskScore compone el score 0-100 ponderando cada señal por su
// confianza y el peso de su ventana. Sin señales: score 0, confianza 1.
func signalRiskScore(signals []domain.Signal) (int, float64) {
	if len(signals) == 0 {
		return 0, 1.0
	}

	baseScores := map[string]float64{
		"sleep_low":     20,
		"isolation_up":  25,
		"adherence_low": 30,
		"cravings_high": 15,
		"mood_decline":  15,
	}
	windowWeights := map[string]float64{
		domain.Window3Day:  1.5,
		domain.Window14Day: 1.0,
		domain.Window30Day: 0.7,
	}

	var weightedSum, totalWeight, confidenceSum float64
	for _, s := range signals {
		base, ok := baseScores[s.SignalType]
		if !ok {
			base = 10
		}
		weight, ok := windowWeights[s.Window]
		if !ok {
			weight = 1.0
		}
		weightedSum += base * s.Confidence * weight
		totalWeight += s.Confidence * weight
		confidenceSum += s.Confidence
	}

	score := 0
	if totalWeight > 0 {
		score = int(weightedSum / totalWeight)
	}
	if score > 100 {
		score = 100
	}
	return score, confidenceSum / float64(len(signals))
}
