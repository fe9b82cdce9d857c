package http

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func decodeTriggers(t *testing.T, header string) map[string]json.RawMessage {
	t.Helper()
	out := map[string]json.RawMessage{}
	if err := json.Unmarshal([]byte(header), &out); err != nil {
		t.Fatalf("HX-Trigger is not valid JSON: %q: %v", header, err)
	}
	return out
}

func TestBuilderBundlesTriggers(t *testing.T) {
	rec := httptest.NewRecorder()
	NewHTMXResponse().
		TriggerTransactionCreated(42).
		TriggerFormReset().
		TriggerSuccessNotification("Transaction added").
		Write(rec)

	triggers := decodeTriggers(t, rec.Header().Get("HX-Trigger"))
	for _, name := range []string{"transaction:created", "form:reset", "show-notification"} {
		if _, ok := triggers[name]; !ok {
			t.Errorf("missing trigger %q", name)
		}
	}
	if rec.Code != http.StatusOK {
		t.Errorf("status = %d", rec.Code)
	}
}

func TestBuilderRedirectSetsHeader(t *testing.T) {
	rec := httptest.NewRecorder()
	NewHTMXResponse().Redirect("/dashboard").Write(rec)

	if loc := rec.Header().Get("HX-Redirect"); loc != "/dashboard" {
		t.Fatalf("HX-Redirect = %q", loc)
	}
}

func TestBuilderApplyDoesNotWriteStatus(t *testing.T) {
	rec := httptest.NewRecorder()
	NewHTMXResponse().TriggerBudgetDeleted("Food").Apply(rec)

	// Apply only stages headers so the handler can still render a body.
	if rec.Header().Get("HX-Trigger") == "" {
		t.Fatal("trigger header not set")
	}
	rec.WriteHeader(http.StatusUnprocessableEntity)
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestSessionExpiredResponse(t *testing.T) {
	rec := httptest.NewRecorder()
	SessionExpiredResponse().Write(rec)

	if loc := rec.Header().Get("HX-Redirect"); loc != "/signin" {
		t.Fatalf("HX-Redirect = %q", loc)
	}
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d", rec.Code)
	}
}

func TestErrorResponseEscapesMessage(t *testing.T) {
	rec := httptest.NewRecorder()
	BadRequestError("<b>bad</b> id").Write(rec)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", rec.Code)
	}
	body := rec.Body.String()
	if strings.Contains(body, "<b>") {
		t.Fatalf("message not escaped: %q", body)
	}
	if !strings.Contains(body, "&lt;b&gt;bad&lt;/b&gt; id") {
		t.Fatalf("body = %q", body)
	}
}
