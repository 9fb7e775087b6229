package server

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/sjawhar/screen-snark/internal/commentary"
	"github.com/sjawhar/screen-snark/internal/session"
)

type DispatchStore interface {
	GetDispatchesByDate(date string) ([]commentary.Dispatch, error)
	GetDispatch(id int64) (commentary.Dispatch, error)
	GetDates() ([]string, error)
}

type StatusHooks struct {
	Status   func() session.Status
	Warnings func() []string
}

func registerAPIRoutes(mux *http.ServeMux, store DispatchStore, hooks StatusHooks) {
	mux.HandleFunc("GET /api/dispatches", func(w http.ResponseWriter, r *http.Request) {
		if store == nil {
			writeJSONError(w, http.StatusServiceUnavailable, "dispatch history disabled")
			return
		}

		date := r.URL.Query().Get("date")
		if date == "" {
			date = time.Now().Format("2006-01-02")
		} else if _, err := time.Parse("2006-01-02", date); err != nil {
			writeJSONError(w, http.StatusBadRequest, "invalid date, expected YYYY-MM-DD")
			return
		}

		dispatches, err := store.GetDispatchesByDate(date)
		if err != nil {
			writeJSONError(w, http.StatusInternalServerError, fmt.Sprintf("list dispatches: %v", err))
			return
		}
		if dispatches == nil {
			dispatches = []commentary.Dispatch{}
		}

		writeJSON(w, http.StatusOK, dispatches)
	})

	mux.HandleFunc("GET /api/dispatches/{id}", func(w http.ResponseWriter, r *http.Request) {
		if store == nil {
			writeJSONError(w, http.StatusServiceUnavailable, "dispatch history disabled")
			return
		}

		id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
		if err != nil || id <= 0 {
			writeJSONError(w, http.StatusBadRequest, "invalid dispatch id")
			return
		}

		d, err := store.GetDispatch(id)
		if err != nil {
			status := http.StatusInternalServerError
			if errors.Is(err, sql.ErrNoRows) {
				status = http.StatusNotFound
			}
			writeJSONError(w, status, fmt.Sprintf("get dispatch: %v", err))
			return
		}

		writeJSON(w, http.StatusOK, d)
	})

	mux.HandleFunc("GET /api/dates", func(w http.ResponseWriter, r *http.Request) {
		if store == nil {
			writeJSONError(w, http.StatusServiceUnavailable, "dispatch history disabled")
			return
		}

		dates, err := store.GetDates()
		if err != nil {
			writeJSONError(w, http.StatusInternalServerError, fmt.Sprintf("get dates: %v", err))
			return
		}
		if dates == nil {
			dates = []string{}
		}
		writeJSON(w, http.StatusOK, dates)
	})

	mux.HandleFunc("GET /api/status", func(w http.ResponseWriter, r *http.Request) {
		var status session.Status
		if hooks.Status != nil {
			status = hooks.Status()
		}
		var warnings []string
		if hooks.Warnings != nil {
			warnings = hooks.Warnings()
		}
		if warnings == nil {
			warnings = []string{}
		}
		writeJSON(w, http.StatusOK, map[string]any{"loop": status, "warnings": warnings})
	})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeJSONError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
