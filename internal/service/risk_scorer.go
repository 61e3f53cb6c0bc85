package service

import (
	"math"

	"recoveryos/internal/domain"
)

/*
========================
 Versiones y plantillas
========================
*/

const (
	// RiskScoreVersion identifica la política de scoring vigente.
	RiskScoreVersion = "0.1.0"
	// PromptVersion identifica el set de plantillas de reflexión.
	PromptVersion = "0.1.0"
)

// DefaultMinCheckins es el piso de observaciones antes de emitir un score.
const DefaultMinCheckins = 3

// CrisisFooter acompaña toda respuesta de check-in. Nunca se personaliza.
const CrisisFooter = "You're not alone. If this is an emergency, call or text 988 (Suicide and Crisis Lifeline) right away."

const (
	reflectionInsufficient = "We don't yet have enough check-ins to assess risk. Keep checking in; every entry strengthens your recovery."
	reflectionLow          = "You're steady today. Let's keep building on what's working, one small healthy choice at a time."
	reflectionElevated     = "Some stress signals showed up. What's one support or coping tool you can use in the next hour?"
	reflectionModerate     = "Several stress points are present. Consider pausing now to breathe, text a supporter, or use a craving coping skill."
	reflectionHigh         = "Today looks tough. You're not alone; reach out to your supports now. Safety first, one step at a time."
)

func reflectionFor(band domain.Band) string {
	switch band {
	case domain.BandLow:
		return reflectionLow
	case domain.BandElevated:
		return reflectionElevated
	case domain.BandModerate:
		return reflectionModerate
	case domain.BandHigh:
		// En banda high la línea de recursos de crisis nunca se omite.
		return reflectionHigh + "\n" + CrisisFooter
	default:
		return reflectionInsufficient
	}
}

/*
========================
 Scoring
========================
*/

// RiskScorer evalúa riesgo sobre el historial de check-ins de un sujeto.
// Evaluate es pura: sin I/O, sin estado mutable, determinista.
type RiskScorer struct {
	minCheckins int
}

// NewRiskScorer crea un scorer con el piso de observaciones dado.
func NewRiskScorer(minCheckins int) *RiskScorer {
	if minCheckins <= 0 {
		minCheckins = DefaultMinCheckins
	}
	return &RiskScorer{minCheckins: minCheckins}
}

// Evaluate devuelve la evaluación para el historial dado. Con menos
// observaciones que el piso devuelve insufficient_data sin score; con
// historial suficiente puntúa únicamente el registro más reciente.
func (s *RiskScorer) Evaluate(history []domain.CheckinRecord) domain.RiskAssessment {
	if len(history) < s.minCheckins {
		return domain.RiskAssessment{
			Band:       domain.BandInsufficientData,
			Reflection: reflectionInsufficient,
			Footer:     CrisisFooter,
		}
	}

	latest := history[len(history)-1]
	score := clampScore(
		adherenceComponent(latest) +
			moodComponent(latest) +
			cravingComponent(latest) +
			sleepComponent(latest) +
			isolationComponent(latest),
	)
	band := bandFromScore(score)

	return domain.RiskAssessment{
		Band:       band,
		Score:      score,
		Reflection: reflectionFor(band),
		Footer:     CrisisFooter,
	}
}

/*
========================
 Componentes del score
========================
*/

// Adherencia perdida: 0-25 puntos.
func adherenceComponent(r domain.CheckinRecord) int {
	missed := 100 - r.Adherence
	if missed < 0 {
		missed = 0
	}
	return missed / 4
}

// Declive de ánimo: 0-30 puntos.
func moodComponent(r domain.CheckinRecord) int {
	decline := -r.MoodTrend
	if decline < 0 {
		decline = 0
	}
	return decline * 3
}

// Intensidad de cravings: 0-33 puntos.
func cravingComponent(r domain.CheckinRecord) int {
	return r.Cravings / 3
}

// Déficit de sueño contra 8 horas: 0-32 puntos.
func sleepComponent(r domain.CheckinRecord) int {
	deficit := 8.0 - r.SleepHours
	if deficit < 0 {
		deficit = 0
	}
	return int(math.Floor(deficit * 4))
}

// Aislamiento: 0-50 puntos.
func isolationComponent(r domain.CheckinRecord) int {
	return r.Isolation / 2
}

func clampScore(score int) int {
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}

func bandFromScore(score int) domain.Band {
	switch {
	case score < 30:
		return domain.BandLow
	case score < 55:
		return domain.BandElevated
	case score < 75:
		return domain.BandModerate
	default:
		return domain.BandHigh
	}
}
