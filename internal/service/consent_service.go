package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"recoveryos/internal/domain"
	"recoveryos/internal/metrics"
	"recoveryos/internal/notify"
	"recoveryos/internal/store"
)

// ErrConsentNotFound indica que el sujeto nunca registró un consentimiento.
var ErrConsentNotFound = errors.New("consent record not found")

// ConsentService maneja el registro de consentimiento por sujeto. El camino
// de consentimiento no pasa por el rate limiter: rechazar un cambio de
// consentimiento por throttling sería peor que absorber el tráfico.
type ConsentService struct {
	logger   *zap.Logger
	consents *store.ConsentStore
	notifier notify.Notifier
	metrics  *metrics.Metrics
}

func NewConsentService(logger *zap.Logger, consents *store.ConsentStore, notifier notify.Notifier, m *metrics.Metrics) *ConsentService {
	return &ConsentService{
		logger:   logger,
		consents: consents,
		notifier: notifier,
		metrics:  m,
	}
}

// Record guarda el consentimiento del sujeto, reemplazando cualquier
// registro anterior. Si el miembro aceptó, dispara la confirmación; un
// fallo del canal de notificación no revierte la escritura.
func (s *ConsentService) Record(ctx context.Context, subject string, rec domain.ConsentRecord) domain.ConsentRecord {
	if rec.RecordedAt.IsZero() {
		rec.RecordedAt = time.Now().UTC()
	}
	s.consents.Put(subject, rec)
	s.metrics.RecordConsentWrite()

	if rec.Accepted && s.notifier != nil {
		if err := s.notifier.SendConsentConfirmation(ctx, subject, rec.TermsVersion); err != nil {
			s.logger.Warn("consent confirmation failed",
				zap.String("user_id_hash", domain.SubjectHash(subject)),
				zap.Error(err),
			)
		} else {
			s.metrics.RecordNotification()
		}
	}
	return rec
}

// Current devuelve el consentimiento vigente del sujeto.
func (s *ConsentService) Current(_ context.Context, subject string) (domain.ConsentRecord, error) {
	rec, ok := s.consents.Get(subject)
	if !ok {
		return domain.ConsentRecord{}, ErrConsentNotFound
	}
	return rec, nil
}

// Scope deriva la vista de consentimiento que consume el auditor de
// seguridad. Sin registro devuelve nil, que el auditor trata como deny.
func (s *ConsentService) Scope(_ context.Context, subject string) *domain.ConsentScope {
	rec, ok := s.consents.Get(subject)
	if !ok {
		return nil
	}
	if !rec.Accepted {
		return &domain.ConsentScope{Status: "revoked"}
	}
	return &domain.ConsentScope{
		Status: "active",
		Permissions: []string{
			domain.PermSendMemberMessages,
			domain.PermShareWithClinician,
			domain.PermShareWithFamily,
		},
	}
}
