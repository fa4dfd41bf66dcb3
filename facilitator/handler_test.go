package facilitator

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestSettleHandlerHappyPath(t *testing.T) {
	p := testPipeline()
	router := NewRouter(p)

	now := time.Now().Unix()
	payload := signedPayload(t, now-10, now+3600)
	body, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	req := httptest.NewRequest(http.MethodPost, "/facilitator", bytes.NewReader(body))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var result Result
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if result.Receipt == "" || result.TxHash == "" {
		t.Errorf("expected non-empty result, got %+v", result)
	}
}

func TestSettleHandlerRejectsMalformedBody(t *testing.T) {
	router := NewRouter(testPipeline())

	req := httptest.NewRequest(http.MethodPost, "/", bytes.NewReader([]byte("not json")))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", rec.Code)
	}
}

func TestHealthEndpoint(t *testing.T) {
	router := NewRouter(testPipeline())

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}

	var body struct {
		Status   string `json:"status"`
		Service  string `json:"service"`
		Version  string `json:"version"`
		MockMode bool   `json:"mockMode"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if body.Status != "ok" || body.Service != ServiceName || body.Version != ServiceVersion || !body.MockMode {
		t.Errorf("unexpected health body: %+v", body)
	}
}
