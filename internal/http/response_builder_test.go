package http

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestHTMXResponseBuilderTriggers(t *testing.T) {
	rr := httptest.NewRecorder()

	NewHTMXResponse().
		TriggerExpenseCreated(2024, 5).
		TriggerFormReset().
		TriggerSuccessNotification("saved").
		BodyHTML(`<div class="success">saved</div>`).
		Write(rr)

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}

	var triggers map[string]json.RawMessage
	if err := json.Unmarshal([]byte(rr.Header().Get("HX-Trigger")), &triggers); err != nil {
		t.Fatalf("HX-Trigger not valid JSON: %v", err)
	}
	for _, name := range []string{"expense:created", "form:reset", "show-notification"} {
		if _, ok := triggers[name]; !ok {
			t.Errorf("missing trigger %q", name)
		}
	}

	var created struct {
		Year  int `json:"year"`
		Month int `json:"month"`
	}
	if err := json.Unmarshal(triggers["expense:created"], &created); err != nil {
		t.Fatalf("decode expense:created: %v", err)
	}
	if created.Year != 2024 || created.Month != 5 {
		t.Fatalf("expense:created = %+v", created)
	}

	if ct := rr.Header().Get("Content-Type"); !strings.Contains(ct, "text/html") {
		t.Fatalf("content type = %s", ct)
	}
}

func TestErrorResponseEscapesMessage(t *testing.T) {
	rr := httptest.NewRecorder()
	BadRequestError(`<script>alert("x")</script>`).Write(rr)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status = %d", rr.Code)
	}
	if strings.Contains(rr.Body.String(), "<script>") {
		t.Fatal("error message not escaped")
	}
}

func TestRequireMethod(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)

	if resp := RequireMethod(req, http.MethodGet); resp != nil {
		t.Fatal("matching method rejected")
	}

	resp := RequireMethod(req, http.MethodPost, http.MethodDelete)
	if resp == nil {
		t.Fatal("wrong method accepted")
	}
	rr := httptest.NewRecorder()
	resp.Write(rr)
	if rr.Code != http.StatusMethodNotAllowed {
		t.Fatalf("status = %d", rr.Code)
	}
	if rr.Header().Get("Allow") != "POST, DELETE" {
		t.Fatalf("Allow = %s", rr.Header().Get("Allow"))
	}
}
