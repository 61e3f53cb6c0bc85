package http

import (
	"net/http"
	"strings"
	"testing"
)

func checkinPayload(userID string) map[string]any {
	return map[string]any{
		"user_id":     userID,
		"adherence":   90,
		"mood_trend":  0,
		"cravings":    10,
		"sleep_hours": 8.0,
		"isolation":   10,
	}
}

func TestCheckInInsufficientDataBeforeThreeCheckins(t *testing.T) {
	r := newTestRouter(t, 10)

	for i := 0; i < 2; i++ {
		rec := doJSON(t, r, http.MethodPost, "/check-in", checkinPayload("u1"), nil)
		if rec.Code != http.StatusOK {
			t.Fatalf("check-in %d status = %d body=%s", i+1, rec.Code, rec.Body.String())
		}
		body := decodeBody(t, rec)
		if body["state"] != "insufficient_data" {
			t.Fatalf("check-in %d state = %v", i+1, body["state"])
		}
		if body["score"] != nil {
			t.Fatalf("expected null score, got %v", body["score"])
		}
	}
}

func TestCheckInHighRiskYieldsHighBandAndCrisisFooter(t *testing.T) {
	r := newTestRouter(t, 10)
	bad := map[string]any{
		"user_id":     "u2",
		"adherence":   5,
		"mood_trend":  -10,
		"cravings":    95,
		"sleep_hours": 2.0,
		"isolation":   90,
	}

	var last map[string]any
	for i := 0; i < 3; i++ {
		rec := doJSON(t, r, http.MethodPost, "/check-in", bad, nil)
		if rec.Code != http.StatusOK {
			t.Fatalf("check-in %d status = %d", i+1, rec.Code)
		}
		last = decodeBody(t, rec)
	}

	if last["state"] != "ok" {
		t.Fatalf("state = %v", last["state"])
	}
	if last["band"] != "high" {
		t.Fatalf("band = %v", last["band"])
	}
	footer, _ := last["footer"].(string)
	if !strings.Contains(strings.ToLower(footer), "emergency") {
		t.Fatalf("expected crisis footer to mention emergency, got %q", footer)
	}
	reflection, _ := last["reflection"].(string)
	if !strings.Contains(reflection, "988") {
		t.Fatalf("expected crisis resources appended to high-band reflection, got %q", reflection)
	}
}

func TestCheckInRateLimitReturnsStandardizedEnvelope(t *testing.T) {
	r := newTestRouter(t, 5)

	hit429 := false
	for i := 0; i < 10; i++ {
		rec := doJSON(t, r, http.MethodPost, "/check-in", checkinPayload("u3"), nil)
		if rec.Code == http.StatusTooManyRequests {
			hit429 = true
			if got := rec.Header().Get("Retry-After"); got != "10" {
				t.Fatalf("Retry-After = %q", got)
			}
			body := decodeBody(t, rec)
			if body["status"] != "error" {
				t.Fatalf("status = %v", body["status"])
			}
			errObj := body["error"].(map[string]any)
			if errObj["code"] != "E_RATE_LIMITED" {
				t.Fatalf("code = %v", errObj["code"])
			}
			if errObj["type"] != "https://recoveryos.org/errors/rate-limit" {
				t.Fatalf("type = %v", errObj["type"])
			}
			if errObj["title"] != "Rate Limit Exceeded" {
				t.Fatalf("title = %v", errObj["title"])
			}
			if detail, _ := errObj["detail"].(string); !strings.Contains(detail, "10 seconds") {
				t.Fatalf("detail = %v", errObj["detail"])
			}
			if errObj["help_url"] == "" {
				t.Fatalf("expected help_url")
			}
			meta := body["meta"].(map[string]any)
			if meta["timestamp"] == "" {
				t.Fatalf("expected meta.timestamp")
			}
			break
		}
		if rec.Code != http.StatusOK {
			t.Fatalf("unexpected status %d before rate limit", rec.Code)
		}
	}
	if !hit429 {
		t.Fatalf("expected a 429 after rapid calls")
	}
}

func TestCheckInValidationErrors(t *testing.T) {
	r := newTestRouter(t, 10)

	// Campo faltante.
	missing := checkinPayload("u4")
	delete(missing, "cravings")
	rec := doJSON(t, r, http.MethodPost, "/check-in", missing, nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("missing field status = %d", rec.Code)
	}
	body := decodeBody(t, rec)
	if body["error"].(map[string]any)["code"] != "E_VALIDATION" {
		t.Fatalf("expected E_VALIDATION, got %v", body["error"])
	}

	// Fuera de rango.
	outOfRange := checkinPayload("u4")
	outOfRange["adherence"] = 150
	rec = doJSON(t, r, http.MethodPost, "/check-in", outOfRange, nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("out of range status = %d", rec.Code)
	}
}

func TestCheckInZeroValuesAreValid(t *testing.T) {
	r := newTestRouter(t, 10)
	neutral := map[string]any{
		"user_id":     "u5",
		"adherence":   100,
		"mood_trend":  0,
		"cravings":    0,
		"sleep_hours": 8.0,
		"isolation":   0,
	}

	var last map[string]any
	for i := 0; i < 3; i++ {
		rec := doJSON(t, r, http.MethodPost, "/check-in", neutral, nil)
		if rec.Code != http.StatusOK {
			t.Fatalf("check-in %d status = %d body=%s", i+1, rec.Code, rec.Body.String())
		}
		last = decodeBody(t, rec)
	}

	if last["state"] != "ok" {
		t.Fatalf("state = %v", last["state"])
	}
	if score, ok := last["score"].(float64); !ok || score != 0 {
		t.Fatalf("expected score 0 for all-neutral values, got %v", last["score"])
	}
	if last["band"] != "low" {
		t.Fatalf("band = %v", last["band"])
	}
}
