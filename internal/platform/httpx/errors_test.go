package httpx

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/taskward/taskward/internal/shared"
)

func TestStatusFor(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{fmt.Errorf("%w: bad input", shared.ErrValidation), http.StatusBadRequest},
		{fmt.Errorf("%w: exists", shared.ErrDuplicate), http.StatusBadRequest},
		{fmt.Errorf("%w: own account", shared.ErrSelfModification), http.StatusBadRequest},
		{fmt.Errorf("%w: task 4", shared.ErrNotFound), http.StatusNotFound},
		{fmt.Errorf("%w: bad token", shared.ErrAuthentication), http.StatusUnauthorized},
		{fmt.Errorf("%w: missing tasks:read", shared.ErrAuthorization), http.StatusForbidden},
		{fmt.Errorf("%w: system role", shared.ErrProtectedResource), http.StatusForbidden},
		{errors.New("pq: connection refused"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		if got := StatusFor(tc.err); got != tc.want {
			t.Errorf("StatusFor(%v) = %d, want %d", tc.err, got, tc.want)
		}
	}
}

func TestRespondErrorMasksInternals(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/tasks", nil)
	RespondError(rec, req, errors.New("pq: password authentication failed for user taskward"))

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d", rec.Code)
	}
	var env Envelope
	if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if env.Success {
		t.Fatal("success must be false")
	}
	if env.Error != "internal server error" {
		t.Fatalf("internal detail leaked: %q", env.Error)
	}
}

func TestRespondErrorRecordsAuditMessage(t *testing.T) {
	req := httptest.NewRequest(http.MethodDelete, "/tasks/9", nil)
	req = req.WithContext(shared.ContextWithAuditCapture(req.Context()))

	RespondError(httptest.NewRecorder(), req, fmt.Errorf("%w: task 9", shared.ErrNotFound))

	capture := shared.AuditCaptureFromContext(req.Context())
	if capture == nil || capture.ErrorMessage == "" {
		t.Fatal("error message not recorded in audit capture")
	}
}
