package service

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"recoveryos/internal/domain"
	"recoveryos/internal/metrics"
	"recoveryos/internal/ratelimit"
	"recoveryos/internal/store"
)

// ErrRateLimited indica que el cliente agotó su ventana de admisión.
// No es una falla del sistema: el caller responde 429 y el miembro reintenta.
var ErrRateLimited = errors.New("rate limited")

// CheckinService coordina el camino de ingesta: admisión, escritura del
// registro, scoring sobre el historial resultante y métricas.
type CheckinService struct {
	logger   *zap.Logger
	limiter  *ratelimit.Limiter
	checkins *store.CheckinStore
	scorer   *RiskScorer
	metrics  *metrics.Metrics
}

func NewCheckinService(logger *zap.Logger, limiter *ratelimit.Limiter, checkins *store.CheckinStore, scorer *RiskScorer, m *metrics.Metrics) *CheckinService {
	return &CheckinService{
		logger:   logger,
		limiter:  limiter,
		checkins: checkins,
		scorer:   scorer,
		metrics:  m,
	}
}

// Process admite el check-in por clientKey, lo agrega al historial del
// sujeto y evalúa el riesgo sobre el historial que incluye ese registro.
// El registro llega ya validado por el borde HTTP.
func (s *CheckinService) Process(_ context.Context, clientKey, subject string, rec domain.CheckinRecord) (domain.RiskAssessment, error) {
	if !s.limiter.Admit(clientKey) {
		s.metrics.RecordRateLimited()
		return domain.RiskAssessment{}, ErrRateLimited
	}

	// Append y lectura en una sola sección crítica: el score siempre ve
	// el registro recién escrito aunque haya escritores concurrentes.
	history := s.checkins.AppendAndReadAll(subject, rec)
	assessment := s.scorer.Evaluate(history)

	s.metrics.RecordCheckin()
	s.metrics.RecordRiskBand(string(assessment.Band))

	if !assessment.Insufficient() {
		// Solo metadata derivada llega al log; nunca valores del registro
		// ni el identificador del sujeto en claro.
		s.logger.Info("check_in_scored",
			zap.String("user_id_hash", domain.SubjectHash(subject)),
			zap.Int("score", assessment.Score),
			zap.String("band", string(assessment.Band)),
			zap.String("risk_score_version", RiskScoreVersion),
			zap.String("prompt_version", PromptVersion),
		)
	}

	return assessment, nil
}

// History devuelve una copia del historial del sujeto.
func (s *CheckinService) History(_ context.Context, subject string) []domain.CheckinRecord {
	return s.checkins.ReadAll(subject)
}

// Total expone el total de check-ins de todos los sujetos.
func (s *CheckinService) Total() int64 {
	return s.checkins.Count()
}
