package http

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"recoveryos/internal/metrics"
	"recoveryos/internal/notify"
	"recoveryos/internal/ratelimit"
	"recoveryos/internal/service"
	"recoveryos/internal/store"
)

const (
	testJWTSecret  = "test-secret"
	testWindow     = 10 * time.Second
	testMinScoring = 3
)

// newTestRouter arma el stack completo sobre stores frescos, como lo hace
// main pero con dependencias de test.
func newTestRouter(t *testing.T, capacity int) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	logger := zap.NewNop()
	m := metrics.New("test")
	limiter := ratelimit.NewLimiter(capacity, testWindow)
	checkinStore := store.NewCheckinStore()
	consentStore := store.NewConsentStore()
	userStore := store.NewMemoryUserStore()
	auditLog := store.NewAuditLog(64)

	scorer := service.NewRiskScorer(testMinScoring)
	checkinSvc := service.NewCheckinService(logger, limiter, checkinStore, scorer, m)
	consentSvc := service.NewConsentService(logger, consentStore, notify.NewLogNotifier(logger), m)
	userSvc := service.NewUserService(logger, userStore)
	jwtSvc := service.NewJWTServiceWithStore(testJWTSecret, 15*time.Minute, time.Hour, service.NewMemoryRefreshTokenStore())
	orchestrator := service.NewOrchestrator(logger, service.NewPatternsAnalyst(), service.NewSafetyAuditor(), auditLog)

	return NewRouter(logger, RouterConfig{MetricsEnabled: true}, m, jwtSvc,
		NewCheckinHandler(logger, checkinSvc, "test-salt", testWindow),
		NewConsentHandler(logger, consentSvc),
		NewBriefingHandler(logger, checkinSvc, consentSvc, orchestrator),
		NewSystemHandler("test"),
		NewUserHandler(logger, userSvc, jwtSvc),
	)
}

func doJSON(t *testing.T, r *gin.Engine, method, path string, payload any, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	var body *bytes.Buffer
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			t.Fatalf("marshal payload: %v", err)
		}
		body = bytes.NewBuffer(raw)
	} else {
		body = bytes.NewBuffer(nil)
	}
	req := httptest.NewRequest(method, path, body)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body %q: %v", rec.Body.String(), err)
	}
	return body
}

func TestHealthAndReadiness(t *testing.T) {
	r := newTestRouter(t, 5)

	if rec := doJSON(t, r, http.MethodGet, "/healthz", nil, nil); rec.Code != http.StatusOK {
		t.Fatalf("healthz status = %d", rec.Code)
	}
	if rec := doJSON(t, r, http.MethodGet, "/readyz", nil, nil); rec.Code != http.StatusOK {
		t.Fatalf("readyz status = %d", rec.Code)
	}
}

func TestMetricsEndpointExposed(t *testing.T) {
	r := newTestRouter(t, 5)

	rec := doJSON(t, r, http.MethodGet, "/metrics", nil, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("metrics status = %d", rec.Code)
	}
}

func TestRequestIDEchoedInResponse(t *testing.T) {
	r := newTestRouter(t, 5)

	rec := doJSON(t, r, http.MethodGet, "/healthz", nil, map[string]string{"x-request-id": "rid-123"})
	if got := rec.Header().Get("x-request-id"); got != "rid-123" {
		t.Fatalf("expected request id echoed, got %q", got)
	}

	rec = doJSON(t, r, http.MethodGet, "/healthz", nil, nil)
	if rec.Header().Get("x-request-id") == "" {
		t.Fatalf("expected generated request id header")
	}
}

func TestSecurityHeadersPresent(t *testing.T) {
	r := newTestRouter(t, 5)

	rec := doJSON(t, r, http.MethodGet, "/healthz", nil, nil)
	if csp := rec.Header().Get("Content-Security-Policy"); csp == "" {
		t.Fatalf("expected Content-Security-Policy header")
	}
	if rec.Header().Get("X-Content-Type-Options") != "nosniff" {
		t.Fatalf("expected X-Content-Type-Options nosniff")
	}
}

func TestHelpEndpointStructure(t *testing.T) {
	r := newTestRouter(t, 5)

	rec := doJSON(t, r, http.MethodGet, "/help", nil, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("help status = %d", rec.Code)
	}
	body := decodeBody(t, rec)

	if body["api_version"] != "0.0.1" {
		t.Fatalf("unexpected api_version %v", body["api_version"])
	}
	for _, key := range []string{"documentation_url", "support_contact", "endpoints", "error_types", "troubleshooting"} {
		if _, ok := body[key]; !ok {
			t.Fatalf("help body missing %q", key)
		}
	}

	endpoints, ok := body["endpoints"].([]any)
	if !ok || len(endpoints) == 0 {
		t.Fatalf("expected documented endpoints, got %v", body["endpoints"])
	}
	names := make(map[string]bool)
	for _, raw := range endpoints {
		ep := raw.(map[string]any)
		names[ep["name"].(string)] = true
		if ep["description"] == "" || ep["url"] == "" {
			t.Fatalf("endpoint %v lacks description or url", ep["name"])
		}
		if codes, ok := ep["status_codes"].([]any); !ok || len(codes) == 0 {
			t.Fatalf("endpoint %v lacks status codes", ep["name"])
		}
	}
	for _, want := range []string{"POST /check-in", "POST /consents", "GET /consents/{user_id}", "GET /healthz", "GET /readyz", "GET /metrics"} {
		if !names[want] {
			t.Fatalf("help endpoints missing %q", want)
		}
	}

	errorTypes := body["error_types"].(map[string]any)
	for _, want := range []string{"validation", "business-rule", "rate-limit", "not-found", "authorization"} {
		if _, ok := errorTypes[want]; !ok {
			t.Fatalf("error_types missing %q", want)
		}
	}

	troubleshooting := body["troubleshooting"].(map[string]any)
	for _, want := range []string{"rate_limited", "insufficient_data", "validation_failed", "consent_not_found", "high_risk_response"} {
		guidance, ok := troubleshooting[want].(string)
		if !ok || len(guidance) < 20 {
			t.Fatalf("troubleshooting %q missing or too short", want)
		}
	}
}
