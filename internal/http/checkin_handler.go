package http

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"recoveryos/internal/domain"
	"recoveryos/internal/service"
)

// CheckinHandler atiende el camino de ingesta de check-ins.
type CheckinHandler struct {
	logger   *zap.Logger
	checkins *service.CheckinService
	keySalt  string
	window   time.Duration
}

func NewCheckinHandler(logger *zap.Logger, checkins *service.CheckinService, keySalt string, window time.Duration) *CheckinHandler {
	return &CheckinHandler{
		logger:   logger,
		checkins: checkins,
		keySalt:  keySalt,
		window:   window,
	}
}

// CheckIn maneja POST /check-in. El binding hace la validación de rangos;
// el núcleo recibe valores ya verificados. Punteros en los campos numéricos
// para que el cero sea un valor válido y no un campo faltante.
func (h *CheckinHandler) CheckIn(c *gin.Context) {
	var req struct {
		UserID     string   `json:"user_id" binding:"required"`
		Adherence  *int     `json:"adherence" binding:"required,gte=0,lte=100"`
		MoodTrend  *int     `json:"mood_trend" binding:"required,gte=-10,lte=10"`
		Cravings   *int     `json:"cravings" binding:"required,gte=0,lte=100"`
		SleepHours *float64 `json:"sleep_hours" binding:"required,gte=0,lte=24"`
		Isolation  *int     `json:"isolation" binding:"required,gte=0,lte=100"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, validationEnvelope("One or more check-in fields are missing or out of range."))
		return
	}

	key := deriveClientKey(h.keySalt, c.ClientIP(), c.Request.UserAgent())
	rec := domain.CheckinRecord{
		Adherence:  *req.Adherence,
		MoodTrend:  *req.MoodTrend,
		Cravings:   *req.Cravings,
		SleepHours: *req.SleepHours,
		Isolation:  *req.Isolation,
		RecordedAt: time.Now().UTC(),
	}

	assessment, err := h.checkins.Process(c.Request.Context(), key, req.UserID, rec)
	if err != nil {
		if errors.Is(err, service.ErrRateLimited) {
			seconds := int(h.window.Seconds())
			c.Header("Retry-After", strconv.Itoa(seconds))
			c.JSON(http.StatusTooManyRequests, errorEnvelope(
				"E_RATE_LIMITED",
				errTypeRateLimit,
				"Rate Limit Exceeded",
				fmt.Sprintf("Too many check-in requests from this client. Try again in %d seconds.", seconds),
				docsBaseURL+"/api/errors#rate-limit",
			))
			return
		}
		h.logger.Error("check-in failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, internalEnvelope("Could not process the check-in."))
		return
	}

	resp := gin.H{
		"risk_score_version": service.RiskScoreVersion,
		"prompt_version":     service.PromptVersion,
		"reflection":         assessment.Reflection,
		"footer":             assessment.Footer,
	}
	if assessment.Insufficient() {
		resp["state"] = "insufficient_data"
		resp["score"] = nil
		resp["band"] = nil
	} else {
		resp["state"] = "ok"
		resp["score"] = assessment.Score
		resp["band"] = assessment.Band
	}
	c.JSON(http.StatusOK, resp)
}

// deriveClientKey construye la clave de rate limiting: hash salteado de IP
// y user agent. Los valores crudos nunca se guardan ni se loguean.
func deriveClientKey(salt, ip, userAgent string) string {
	sum := sha256.Sum256([]byte(salt + "|" + ip + "|" + userAgent))
	return hex.EncodeToString(sum[:])
}
