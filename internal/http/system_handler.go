package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

const apiVersion = "0.0.1"

// SystemHandler atiende los endpoints operativos: health checks y la
// documentación de autoayuda del API.
type SystemHandler struct {
	appVersion string
}

func NewSystemHandler(appVersion string) *SystemHandler {
	return &SystemHandler{appVersion: appVersion}
}

// Healthz maneja GET /healthz.
func (h *SystemHandler) Healthz(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "version": h.appVersion})
}

// Readyz maneja GET /readyz. Todo el estado vive en memoria, así que el
// proceso está listo en cuanto atiende.
func (h *SystemHandler) Readyz(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ready"})
}

type endpointDoc struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	URL         string   `json:"url"`
	StatusCodes []string `json:"status_codes"`
}

// Help maneja GET /help: el mapa completo del API con guía de resolución
// de los errores más comunes.
func (h *SystemHandler) Help(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"api_version":       apiVersion,
		"documentation_url": docsBaseURL,
		"support_contact":   "support@recoveryos.org",
		"endpoints": []endpointDoc{
			{
				Name:        "POST /check-in",
				Description: "Submit a wellbeing check-in and receive a deterministic risk assessment.",
				URL:         docsBaseURL + "/api/check-in",
				StatusCodes: []string{"200", "400", "429"},
			},
			{
				Name:        "POST /consents",
				Description: "Record or replace the consent decision for a member.",
				URL:         docsBaseURL + "/api/consents",
				StatusCodes: []string{"200", "400"},
			},
			{
				Name:        "GET /consents/{user_id}",
				Description: "Read the current consent record for a member.",
				URL:         docsBaseURL + "/api/consents",
				StatusCodes: []string{"200", "404"},
			},
			{
				Name:        "GET /healthz",
				Description: "Liveness probe for the service process.",
				URL:         docsBaseURL + "/api/health",
				StatusCodes: []string{"200"},
			},
			{
				Name:        "GET /readyz",
				Description: "Readiness probe for the service process.",
				URL:         docsBaseURL + "/api/health",
				StatusCodes: []string{"200"},
			},
			{
				Name:        "GET /metrics",
				Description: "Prometheus exposition of service counters.",
				URL:         docsBaseURL + "/api/metrics",
				StatusCodes: []string{"200"},
			},
		},
		"error_types": gin.H{
			"validation":    docsBaseURL + "/api/errors#validation",
			"business-rule": docsBaseURL + "/api/errors#business-rule",
			"rate-limit":    docsBaseURL + "/api/errors#rate-limit",
			"not-found":     docsBaseURL + "/api/errors#not-found",
			"authorization": docsBaseURL + "/api/errors#authorization",
		},
		"troubleshooting": gin.H{
			"rate_limited":       "Wait for the window named in the error detail before retrying; check-ins are throttled per client.",
			"insufficient_data":  "Continue submitting daily check-ins; a score is produced once three observations exist.",
			"validation_failed":  "Check that every numeric field is present and within its documented range before resubmitting.",
			"consent_not_found":  "Ensure a consent decision was recorded via POST /consents for this user ID first.",
			"high_risk_response": "Check the crisis resources included in the response footer and contact your care team if needed.",
		},
	})
}
