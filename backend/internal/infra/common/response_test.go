package response

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func newContext() (*gin.Context, *httptest.ResponseRecorder) {
	gin.SetMode(gin.TestMode)
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	return c, rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) Response {
	t.Helper()
	var resp Response
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return resp
}

func TestSuccessDefaultsTo200(t *testing.T) {
	c, rec := newContext()
	Success(c, 0, gin.H{"ok": true}, NewPagination(2, 10, 21))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	resp := decode(t, rec)
	if !resp.Success || resp.Error != nil {
		t.Fatalf("unexpected envelope %+v", resp)
	}
	meta, ok := resp.Meta.(map[string]any)
	if !ok || meta["total_pages"].(float64) != 3 {
		t.Fatalf("expected 3 total pages, got %v", resp.Meta)
	}
}

func TestFailWithErrorUsesMapping(t *testing.T) {
	sentinel := errors.New("answers missing")
	c, rec := newContext()
	FailWithError(c, fmt.Errorf("submit: %w", sentinel), ErrorMapping{Target: sentinel, Status: http.StatusBadRequest, Code: ErrBadRequest})

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	resp := decode(t, rec)
	if resp.Error == nil || resp.Error.Code != ErrBadRequest {
		t.Fatalf("unexpected error body %+v", resp.Error)
	}
}

func TestFailWithErrorPrefersMappedMessage(t *testing.T) {
	sentinel := errors.New("all 5 questions must be answered")
	c, rec := newContext()
	FailWithError(c, sentinel, ErrorMapping{Target: sentinel, Status: http.StatusBadRequest, Code: ErrValidation, Message: "All 5 questions must be answered"})

	resp := decode(t, rec)
	if resp.Error == nil || resp.Error.Message != "All 5 questions must be answered" {
		t.Fatalf("expected mapped message, got %+v", resp.Error)
	}
}

func TestFailWithErrorHidesInternalMessage(t *testing.T) {
	c, rec := newContext()
	FailWithError(c, errors.New("dial tcp 10.0.0.1:3306: refused"))

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
	resp := decode(t, rec)
	if resp.Error.Message != "Internal Server Error" {
		t.Fatalf("internal message leaked: %q", resp.Error.Message)
	}
}
