// Package notify cubre las confirmaciones salientes al miembro. Por ahora
// el único canal es un stub de SMS que solo escribe al log.
package notify

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"recoveryos/internal/domain"
)

// ConsentConfirmationMessage es el texto fijo del stub de confirmación.
// Nunca incorpora datos del miembro.
const ConsentConfirmationMessage = "You've enabled family updates. Jane Doe will receive weekly summaries unless you change this."

// Notifier define la interfaz para confirmaciones de consentimiento.
// Se invoca solo cuando el miembro acepta los términos.
type Notifier interface {
	SendConsentConfirmation(ctx context.Context, subject, termsVersion string) error
}

// LogNotifier implementa Notifier escribiendo la confirmación al log.
// Registra solo el hash del sujeto, nunca el identificador en claro.
type LogNotifier struct {
	logger *zap.Logger
}

func NewLogNotifier(logger *zap.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

func (n *LogNotifier) SendConsentConfirmation(_ context.Context, subject, termsVersion string) error {
	n.logger.Info("consent_enabled_confirmation_stub",
		zap.String("user_id_hash", domain.SubjectHash(subject)),
		zap.String("terms_version", termsVersion),
		zap.String("message", ConsentConfirmationMessage),
	)
	return nil
}

type disabledNotifier struct {
	reason string
}

// NewDisabledNotifier devuelve un Notifier que rechaza todo envío.
func NewDisabledNotifier(reason string) Notifier {
	return &disabledNotifier{reason: reason}
}

func (n *disabledNotifier) SendConsentConfirmation(_ context.Context, _, _ string) error {
	if n.reason == "" {
		return errors.New("notifier disabled")
	}
	return errors.New(n.reason)
}
