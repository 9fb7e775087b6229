package server

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/sjawhar/screen-snark/internal/commentary"
	"github.com/sjawhar/screen-snark/internal/session"
)

type apiStoreStub struct {
	byDate     map[string][]commentary.Dispatch
	dispatches map[int64]commentary.Dispatch
	dates      []string
}

func (s apiStoreStub) GetDispatchesByDate(date string) ([]commentary.Dispatch, error) {
	return s.byDate[date], nil
}

func (s apiStoreStub) GetDispatch(id int64) (commentary.Dispatch, error) {
	if d, ok := s.dispatches[id]; ok {
		return d, nil
	}
	return commentary.Dispatch{}, fmt.Errorf("query dispatch %d: %w", id, sql.ErrNoRows)
}

func (s apiStoreStub) GetDates() ([]string, error) {
	return s.dates, nil
}

func serve(h http.Handler, target string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func TestAPIDispatchesList(t *testing.T) {
	at := time.Date(2026, 2, 26, 10, 0, 0, 0, time.UTC)
	store := apiStoreStub{
		byDate: map[string][]commentary.Dispatch{
			"2026-02-26": {{ID: 7, At: at, Status: commentary.StatusDelivered, Commentary: commentary.Commentary{Tone: "roast", Text: "nice inbox"}}},
		},
	}

	rr := serve(Handler(NewHub(), store, StatusHooks{}), "/api/dispatches?date=2026-02-26")

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rr.Code)
	}
	if got := rr.Header().Get("Content-Type"); !strings.Contains(got, "application/json") {
		t.Fatalf("expected application/json content-type, got %q", got)
	}

	var got []commentary.Dispatch
	if err := json.Unmarshal(rr.Body.Bytes(), &got); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if len(got) != 1 || got[0].ID != 7 || got[0].Commentary.Text != "nice inbox" {
		t.Fatalf("unexpected dispatches: %#v", got)
	}
}

func TestAPIDispatchesEmptyDateIsArray(t *testing.T) {
	rr := serve(Handler(NewHub(), apiStoreStub{}, StatusHooks{}), "/api/dispatches?date=2026-01-01")
	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rr.Code)
	}
	if strings.TrimSpace(rr.Body.String()) != "[]" {
		t.Fatalf("expected empty array, got %s", rr.Body.String())
	}
}

func TestAPIDispatchesInvalidDate(t *testing.T) {
	rr := serve(Handler(NewHub(), apiStoreStub{}, StatusHooks{}), "/api/dispatches?date=yesterday")
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", rr.Code)
	}
}

func TestAPIDispatchDetail(t *testing.T) {
	store := apiStoreStub{
		dispatches: map[int64]commentary.Dispatch{
			3: {ID: 3, Status: commentary.StatusFailed, Error: "invalid commentary"},
		},
	}
	h := Handler(NewHub(), store, StatusHooks{})

	tests := []struct {
		path string
		code int
	}{
		{path: "/api/dispatches/3", code: http.StatusOK},
		{path: "/api/dispatches/4", code: http.StatusNotFound},
		{path: "/api/dispatches/abc", code: http.StatusBadRequest},
		{path: "/api/dispatches/-1", code: http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			rr := serve(h, tt.path)
			if rr.Code != tt.code {
				t.Fatalf("expected status %d, got %d: %s", tt.code, rr.Code, rr.Body.String())
			}
		})
	}

	rr := serve(h, "/api/dispatches/3")
	if !strings.Contains(rr.Body.String(), "invalid commentary") {
		t.Fatalf("expected detail body, got %s", rr.Body.String())
	}
}

func TestAPIDates(t *testing.T) {
	rr := serve(Handler(NewHub(), apiStoreStub{dates: []string{"2026-02-26", "2026-02-25"}}, StatusHooks{}), "/api/dates")
	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), "2026-02-25") {
		t.Fatalf("expected dates in body, got %s", rr.Body.String())
	}
}

func TestAPIHistoryDisabled(t *testing.T) {
	h := Handler(NewHub(), nil, StatusHooks{})
	for _, path := range []string{"/api/dispatches", "/api/dispatches/1", "/api/dates"} {
		if rr := serve(h, path); rr.Code != http.StatusServiceUnavailable {
			t.Fatalf("%s: expected status 503, got %d", path, rr.Code)
		}
	}
}

func TestAPIStatus(t *testing.T) {
	hooks := StatusHooks{
		Status: func() session.Status {
			return session.Status{Running: true, BufferedFrames: 4, Delivered: 2}
		},
		Warnings: func() []string { return []string{"GEMINI API key not configured"} },
	}

	rr := serve(Handler(NewHub(), nil, hooks), "/api/status")
	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rr.Code)
	}

	var payload struct {
		Loop     session.Status `json:"loop"`
		Warnings []string       `json:"warnings"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &payload); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if !payload.Loop.Running || payload.Loop.BufferedFrames != 4 || payload.Loop.Delivered != 2 {
		t.Fatalf("unexpected loop status: %#v", payload.Loop)
	}
	if len(payload.Warnings) != 1 {
		t.Fatalf("expected one warning, got %v", payload.Warnings)
	}
}

func TestAPIStatusNoWarningsIsArray(t *testing.T) {
	rr := serve(Handler(NewHub(), nil, StatusHooks{}), "/api/status")
	if !strings.Contains(rr.Body.String(), `"warnings":[]`) {
		t.Fatalf("expected empty warnings array, got %s", rr.Body.String())
	}
}
