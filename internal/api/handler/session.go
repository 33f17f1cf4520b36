package handler

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/mcoot/gamerelay-go/internal/api/apierr"
	"github.com/mcoot/gamerelay-go/internal/api/response"
	"github.com/mcoot/gamerelay-go/internal/model"
	"github.com/mcoot/gamerelay-go/internal/services/session"
)

// SessionHandler handles read-only session inspection endpoints
type SessionHandler struct {
	sessions *session.Controller
}

// NewSessionHandler creates a new session handler
func NewSessionHandler(sessions *session.Controller) *SessionHandler {
	return &SessionHandler{sessions: sessions}
}

// Get handles GET /api/v1/sessions/{id}
func (h *SessionHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if id == "" {
		apierr.WriteError(w, apierr.NewInvalidRequestError("session id is required"))
		return
	}

	sess, err := h.sessions.Get(r.Context(), model.SessionID(id))
	if err != nil {
		apierr.WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.SessionSummaryFromModel(sess))
}

// List handles GET /api/v1/sessions
func (h *SessionHandler) List(w http.ResponseWriter, r *http.Request) {
	sessions, err := h.sessions.List(r.Context())
	if err != nil {
		apierr.WriteError(w, err)
		return
	}

	summaries := make([]response.SessionSummary, 0, len(sessions))
	for _, sess := range sessions {
		summaries = append(summaries, response.SessionSummaryFromModel(sess))
	}

	response.JSON(w, http.StatusOK, response.SessionList{
		Sessions: summaries,
		Count:    len(summaries),
	})
}
