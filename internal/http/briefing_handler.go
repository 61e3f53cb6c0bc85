package http

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"recoveryos/internal/service"
)

const defaultAuditPageSize = 50

// BriefingHandler expone el flujo de agentes a la superficie clínica
// autenticada: briefings bajo consentimiento y lectura del audit trail.
type BriefingHandler struct {
	logger       *zap.Logger
	checkins     *service.CheckinService
	consents     *service.ConsentService
	orchestrator *service.Orchestrator
}

func NewBriefingHandler(logger *zap.Logger, checkins *service.CheckinService, consents *service.ConsentService, orchestrator *service.Orchestrator) *BriefingHandler {
	return &BriefingHandler{
		logger:       logger,
		checkins:     checkins,
		consents:     consents,
		orchestrator: orchestrator,
	}
}

// CreateBriefing maneja POST /briefings/:user_id. Un briefing bloqueado por
// el auditor no es un error HTTP: la decisión y sus reglas van en el cuerpo.
func (h *BriefingHandler) CreateBriefing(c *gin.Context) {
	userID := c.Param("user_id")
	ctx := c.Request.Context()

	history := h.checkins.History(ctx, userID)
	scope := h.consents.Scope(ctx, userID)
	briefing := h.orchestrator.PrepareClinicianBriefing(userID, history, scope)

	c.JSON(http.StatusOK, briefing)
}

// ListAudit maneja GET /audit.
func (h *BriefingHandler) ListAudit(c *gin.Context) {
	limit := defaultAuditPageSize
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			c.JSON(http.StatusBadRequest, validationEnvelope("limit must be a positive integer."))
			return
		}
		limit = parsed
	}

	entries := h.orchestrator.RecentAuditEntries(limit)
	c.JSON(http.StatusOK, gin.H{
		"entries": entries,
		"count":   len(entries),
	})
}
