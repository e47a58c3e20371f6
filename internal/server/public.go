package server

import (
	"net/http"
	"strings"

	"github.com/iwvelando/temple-portal/pkg/constants"
	"github.com/iwvelando/temple-portal/pkg/tamildate"
	"github.com/iwvelando/temple-portal/pkg/validation"
	"go.uber.org/zap"
)

type tamilDateResponse struct {
	Available       bool   `json:"available"`
	Date            string `json:"date,omitempty"`
	Month           string `json:"month,omitempty"`
	Transliteration string `json:"transliteration,omitempty"`
	Day             int    `json:"day,omitempty"`
	Text            string `json:"text,omitempty"`
	Start           string `json:"start,omitempty"`
	Overridden      bool   `json:"overridden,omitempty"`
	Suspect         bool   `json:"suspect"`
}

type transitionResponse struct {
	Month           string `json:"month"`
	Transliteration string `json:"transliteration"`
	Start           string `json:"start"`
	Overridden      bool   `json:"overridden"`
}

type transitionsResponse struct {
	Year        int                  `json:"year"`
	Transitions []transitionResponse `json:"transitions"`
}

type highlightResponse struct {
	Available bool `json:"available"`
	Pooja     any  `json:"pooja,omitempty"`
	Completed bool `json:"completed"`
}

// handleTamilDate resolves ?date=YYYY-MM-DD. Dates that cannot be resolved
// answer {"available": false} rather than an error, so the form can simply
// leave the Tamil date blank.
func (h *handler) handleTamilDate(w http.ResponseWriter, r *http.Request) {
	date := strings.TrimSpace(r.URL.Query().Get("date"))
	result, err := h.content.PreviewTamilDate(date)
	if err != nil {
		h.writeJSON(w, http.StatusOK, tamilDateResponse{Available: false, Date: date})
		return
	}
	h.writeJSON(w, http.StatusOK, tamilDateResponse{
		Available:       true,
		Date:            date,
		Month:           result.Month,
		Transliteration: tamildate.Transliteration(result.Month),
		Day:             result.Day,
		Text:            result.String(),
		Start:           result.Start.Format(constants.DateLayout),
		Overridden:      result.Overridden,
		Suspect:         result.Suspect,
	})
}

func (h *handler) handleTransitions(w http.ResponseWriter, r *http.Request) {
	year, err := validation.Year(r.URL.Query().Get("year"))
	if err != nil {
		h.respondErrorWithOp(w, http.StatusBadRequest, err.Error(), "server.handleTransitions")
		return
	}
	transitions := h.content.Calendar().Transitions(year)
	resp := transitionsResponse{Year: year, Transitions: make([]transitionResponse, 0, len(transitions))}
	for _, t := range transitions {
		resp.Transitions = append(resp.Transitions, transitionResponse{
			Month:           t.Month,
			Transliteration: tamildate.Transliteration(t.Month),
			Start:           t.Start.Format(constants.DateLayout),
			Overridden:      t.Overridden,
		})
	}
	h.writeJSON(w, http.StatusOK, resp)
}

func (h *handler) handlePublicNotices(w http.ResponseWriter, r *http.Request) {
	notices, err := h.content.ListNotices(r.Context(), true)
	if err != nil {
		h.respondServiceError(w, err, "server.handlePublicNotices")
		return
	}
	h.writeJSON(w, http.StatusOK, notices)
}

func (h *handler) handleListPoojas(w http.ResponseWriter, r *http.Request) {
	poojas, err := h.content.ListPoojas(r.Context())
	if err != nil {
		h.respondServiceError(w, err, "server.handleListPoojas")
		return
	}
	h.writeJSON(w, http.StatusOK, poojas)
}

func (h *handler) handleHighlight(w http.ResponseWriter, r *http.Request) {
	highlight, ok, err := h.content.HighlightPooja(r.Context())
	if err != nil {
		h.respondServiceError(w, err, "server.handleHighlight")
		return
	}
	if !ok {
		h.writeJSON(w, http.StatusOK, highlightResponse{Available: false})
		return
	}
	h.writeJSON(w, http.StatusOK, highlightResponse{
		Available: true,
		Pooja:     highlight.Pooja,
		Completed: highlight.Completed,
	})
}

func (h *handler) handleListMembers(w http.ResponseWriter, r *http.Request) {
	members, err := h.content.ListMembers(r.Context())
	if err != nil {
		h.respondServiceError(w, err, "server.handleListMembers")
		return
	}
	h.writeJSON(w, http.StatusOK, members)
}

func (h *handler) handleListMedia(w http.ResponseWriter, r *http.Request) {
	items, err := h.content.ListMedia(r.Context(), strings.TrimSpace(r.URL.Query().Get("type")))
	if err != nil {
		h.respondServiceError(w, err, "server.handleListMedia")
		return
	}
	h.writeJSON(w, http.StatusOK, items)
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Code     string `json:"code,omitempty"`
}

func (h *handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	if h.auth == nil {
		h.respondErrorWithOp(w, http.StatusServiceUnavailable, "administrator sign-in is not configured", "server.handleLogin")
		return
	}
	var req loginRequest
	if err := h.decodeJSON(w, r, &req); err != nil {
		h.respondServiceError(w, err, "server.handleLogin")
		return
	}
	session, err := h.auth.Login(req.Email, req.Password, req.Code)
	if h.metrics != nil {
		result := "success"
		if err != nil {
			result = "failure"
		}
		h.metrics.LoginAttempts.WithLabelValues(result).Inc()
	}
	if err != nil {
		h.logger.Warn("administrator sign-in failed",
			zap.String("op", "server.handleLogin"),
			zap.String("remote", r.RemoteAddr),
		)
		h.respondServiceError(w, err, "server.handleLogin")
		return
	}
	h.writeJSON(w, http.StatusOK, session)
}
