package apiutil

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

type samplePayload struct {
	Name string `json:"name"`
}

func TestDecodeJSON(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr bool
	}{
		{name: "valid", body: `{"name":"Rui"}`},
		{name: "empty", body: "", wantErr: true},
		{name: "unknown field", body: `{"name":"Rui","age":3}`, wantErr: true},
		{name: "trailing data", body: `{"name":"Rui"}{"name":"Ana"}`, wantErr: true},
		{name: "malformed", body: `{"name":`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(tt.body))
			var dst samplePayload
			err := DecodeJSON(req, &dst)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("decode: %v", err)
			}
			if dst.Name != "Rui" {
				t.Fatalf("expected name Rui, got %q", dst.Name)
			}
		})
	}
}

func TestWriteHandlerError(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)

	recorder := httptest.NewRecorder()
	wrapped := fmt.Errorf("outer: %w", HandlerError{Status: http.StatusConflict, Message: "conflict"})
	WriteHandlerError(recorder, req, wrapped)
	if recorder.Code != http.StatusConflict {
		t.Fatalf("status: %d", recorder.Code)
	}
	if got := strings.TrimSpace(recorder.Body.String()); got != `{"error":"conflict"}` {
		t.Fatalf("body: %s", got)
	}
	if recorder.Header().Get("Content-Type") != "application/json" {
		t.Fatalf("content type: %s", recorder.Header().Get("Content-Type"))
	}

	recorder = httptest.NewRecorder()
	WriteHandlerError(recorder, req, errors.New("boom"))
	if recorder.Code != http.StatusInternalServerError {
		t.Fatalf("status: %d", recorder.Code)
	}
}

func TestParseUUIDField(t *testing.T) {
	id, err := ParseUUIDField(" 6F1C2B9E-2D4A-4C1E-9A7B-0C3D5E7F9A11 ", "id")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if id != "6f1c2b9e-2d4a-4c1e-9a7b-0c3d5e7f9a11" {
		t.Fatalf("expected canonical id, got %s", id)
	}

	var fieldErr FieldError
	if _, err := ParseUUIDField("", "id"); !errors.As(err, &fieldErr) || fieldErr.Reason != "is required" {
		t.Fatalf("expected required field error, got %v", err)
	}
	if _, err := ParseUUIDField("not-a-uuid", "id"); !errors.As(err, &fieldErr) || fieldErr.Reason != "must be a valid UUID" {
		t.Fatalf("expected invalid field error, got %v", err)
	}
}

func TestUUIDFromPath(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/v1/events/x/teams", nil)
	req.SetPathValue("id", "x")
	if _, err := UUIDFromPath(req, "id"); err == nil {
		t.Fatalf("expected error for invalid path id")
	}
}
