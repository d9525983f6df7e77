package main

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/benjamonnguyen/pomotodo"
	"github.com/charmbracelet/log"
	"github.com/gorilla/mux"
)

type taskResponse struct {
	ID             pomotodo.TaskID `json:"id"`
	Title          string          `json:"title"`
	FocusedSeconds int             `json:"focusedSeconds"`
}

// NewStatusRouter serves read-only session and task state.
func NewStatusRouter(sessionManager SessionManager, taskSvc TaskService) *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}).Methods("GET")

	r.HandleFunc("/sessions/{userID}", func(w http.ResponseWriter, r *http.Request) {
		owner := pomotodo.OwnerID(mux.Vars(r)["userID"])
		session, err := sessionManager.GetSession(owner)
		if err != nil {
			if errors.Is(err, ErrNoSession) {
				writeJSON(w, http.StatusNotFound, map[string]string{"error": "no active session"})
				return
			}
			log.Error("failed to get session", "userID", owner, "err", err)
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
			return
		}
		writeJSON(w, http.StatusOK, session)
	}).Methods("GET")

	r.HandleFunc("/users/{userID}/tasks", func(w http.ResponseWriter, r *http.Request) {
		owner := pomotodo.OwnerID(mux.Vars(r)["userID"])
		tasks, err := taskSvc.List(r.Context(), owner)
		if err != nil {
			log.Error("failed to list tasks", "userID", owner, "err", err)
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
			return
		}
		resp := make([]taskResponse, 0, len(tasks))
		for _, t := range tasks {
			resp = append(resp, taskResponse{
				ID:             t.ID,
				Title:          t.Title,
				FocusedSeconds: t.FocusedSeconds,
			})
		}
		writeJSON(w, http.StatusOK, resp)
	}).Methods("GET")

	return r
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error("failed to write response", "err", err)
	}
}
