package http

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"recoveryos/internal/domain"
	"recoveryos/internal/service"
)

// ConsentHandler atiende el registro y la consulta de consentimientos.
// Este camino no pasa por el rate limiter.
type ConsentHandler struct {
	logger   *zap.Logger
	consents *service.ConsentService
}

func NewConsentHandler(logger *zap.Logger, consents *service.ConsentService) *ConsentHandler {
	return &ConsentHandler{
		logger:   logger,
		consents: consents,
	}
}

// PutConsent maneja POST /consents. Accepted va como puntero para que
// false sea un valor válido y no un campo faltante.
func (h *ConsentHandler) PutConsent(c *gin.Context) {
	var req struct {
		UserID       string `json:"user_id" binding:"required"`
		TermsVersion string `json:"terms_version" binding:"required"`
		Accepted     *bool  `json:"accepted" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, validationEnvelope("user_id, terms_version and accepted are required."))
		return
	}

	rec := h.consents.Record(c.Request.Context(), req.UserID, domain.ConsentRecord{
		Accepted:     *req.Accepted,
		TermsVersion: req.TermsVersion,
		RecordedAt:   time.Now().UTC(),
	})

	c.JSON(http.StatusOK, gin.H{
		"user_id":       req.UserID,
		"accepted":      rec.Accepted,
		"terms_version": rec.TermsVersion,
		"recorded_at":   rec.RecordedAt,
	})
}

// GetConsent maneja GET /consents/:user_id.
func (h *ConsentHandler) GetConsent(c *gin.Context) {
	userID := c.Param("user_id")

	rec, err := h.consents.Current(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, service.ErrConsentNotFound) {
			c.JSON(http.StatusNotFound, errorEnvelope(
				"E_CONSENT_NOT_FOUND",
				errTypeNotFound,
				"Consent Record Not Found",
				"No consent record exists for the given user ID.",
				docsBaseURL+"/api/errors#not-found",
			))
			return
		}
		h.logger.Error("get consent failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, internalEnvelope("Could not read the consent record."))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"user_id":       userID,
		"accepted":      rec.Accepted,
		"terms_version": rec.TermsVersion,
		"recorded_at":   rec.RecordedAt,
	})
}
