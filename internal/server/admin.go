package server

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/iwvelando/temple-portal/internal/content"
	"github.com/iwvelando/temple-portal/internal/store"
	"go.uber.org/zap"
)

type noticeRequest struct {
	Content *string `json:"content,omitempty"`
	Active  *bool   `json:"active,omitempty"`
}

type linkRequest struct {
	URL  string `json:"url"`
	Type string `json:"type"`
}

func (h *handler) handleAdminNotices(w http.ResponseWriter, r *http.Request) {
	notices, err := h.content.ListNotices(r.Context(), false)
	if err != nil {
		h.respondServiceError(w, err, "server.handleAdminNotices")
		return
	}
	h.writeJSON(w, http.StatusOK, notices)
}

func (h *handler) handleAddNotice(w http.ResponseWriter, r *http.Request) {
	var req noticeRequest
	if err := h.decodeJSON(w, r, &req); err != nil {
		h.respondServiceError(w, err, "server.handleAddNotice")
		return
	}
	text := ""
	if req.Content != nil {
		text = *req.Content
	}
	notice, err := h.content.AddNotice(r.Context(), text)
	if err != nil {
		h.respondServiceError(w, err, "server.handleAddNotice")
		return
	}
	h.writeJSON(w, http.StatusCreated, notice)
}

// handleUpdateNotice changes the text, the visibility, or both.
func (h *handler) handleUpdateNotice(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	var req noticeRequest
	if err := h.decodeJSON(w, r, &req); err != nil {
		h.respondServiceError(w, err, "server.handleUpdateNotice")
		return
	}
	if req.Content == nil && req.Active == nil {
		h.respondErrorWithOp(w, http.StatusBadRequest, "nothing to update", "server.handleUpdateNotice")
		return
	}
	if req.Content != nil {
		if _, err := h.content.UpdateNotice(r.Context(), id, *req.Content); err != nil {
			h.respondServiceError(w, err, "server.handleUpdateNotice")
			return
		}
	}
	if req.Active != nil {
		if err := h.content.SetNoticeActive(r.Context(), id, *req.Active); err != nil {
			h.respondServiceError(w, err, "server.handleUpdateNotice")
			return
		}
	}
	notice, err := h.content.GetNotice(r.Context(), id)
	if err != nil {
		h.respondServiceError(w, err, "server.handleUpdateNotice")
		return
	}
	h.writeJSON(w, http.StatusOK, notice)
}

func (h *handler) handleDeleteNotice(w http.ResponseWriter, r *http.Request) {
	if err := h.content.DeleteNotice(r.Context(), r.PathValue("id")); err != nil {
		h.respondServiceError(w, err, "server.handleDeleteNotice")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleSavePooja serves both create (POST) and update (PUT /{id}).
func (h *handler) handleSavePooja(w http.ResponseWriter, r *http.Request) {
	var in content.PoojaInput
	if err := h.decodeJSON(w, r, &in); err != nil {
		h.respondServiceError(w, err, "server.handleSavePooja")
		return
	}
	in.ID = r.PathValue("id")
	status := http.StatusCreated
	if in.ID != "" {
		status = http.StatusOK
	}
	pooja, err := h.content.SavePooja(r.Context(), in)
	if err != nil {
		h.respondServiceError(w, err, "server.handleSavePooja")
		return
	}
	h.writeJSON(w, status, pooja)
}

func (h *handler) handlePoojaForm(w http.ResponseWriter, r *http.Request) {
	pooja, err := h.content.GetPooja(r.Context(), r.PathValue("id"))
	if err != nil {
		h.respondServiceError(w, err, "server.handlePoojaForm")
		return
	}
	h.writeJSON(w, http.StatusOK, content.EditForm(pooja))
}

func (h *handler) handleDeletePooja(w http.ResponseWriter, r *http.Request) {
	if err := h.content.DeletePooja(r.Context(), r.PathValue("id")); err != nil {
		h.respondServiceError(w, err, "server.handleDeletePooja")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *handler) handleRestorePoojas(w http.ResponseWriter, r *http.Request) {
	created, err := h.content.RestoreDefaultPoojas(r.Context())
	if err != nil {
		h.respondServiceError(w, err, "server.handleRestorePoojas")
		return
	}
	h.writeJSON(w, http.StatusCreated, created)
}

func (h *handler) handleAddMember(w http.ResponseWriter, r *http.Request) {
	var m store.CommitteeMember
	if err := h.decodeJSON(w, r, &m); err != nil {
		h.respondServiceError(w, err, "server.handleAddMember")
		return
	}
	m.ID = ""
	member, err := h.content.AddMember(r.Context(), m)
	if err != nil {
		h.respondServiceError(w, err, "server.handleAddMember")
		return
	}
	h.writeJSON(w, http.StatusCreated, member)
}

func (h *handler) handleDeleteMember(w http.ResponseWriter, r *http.Request) {
	if err := h.content.DeleteMember(r.Context(), r.PathValue("id")); err != nil {
		h.respondServiceError(w, err, "server.handleDeleteMember")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *handler) handleUploadMedia(w http.ResponseWriter, r *http.Request) {
	if h.maxUploadSize > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadSize)
	}
	if err := r.ParseMultipartForm(h.maxUploadSize); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			h.respondErrorWithOp(w, http.StatusRequestEntityTooLarge,
				fmt.Sprintf("upload exceeds limit of %d bytes", h.maxUploadSize), "server.handleUploadMedia")
			return
		}
		h.respondErrorWithOp(w, http.StatusBadRequest, fmt.Sprintf("failed to parse upload: %v", err), "server.handleUploadMedia")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		h.respondErrorWithOp(w, http.StatusBadRequest, "missing media file", "server.handleUploadMedia")
		return
	}
	defer func() {
		if closeErr := file.Close(); closeErr != nil {
			h.logger.Warn("failed to close uploaded file",
				zap.String("op", "server.handleUploadMedia"),
				zap.Error(closeErr),
			)
		}
	}()

	data, err := io.ReadAll(file)
	if err != nil {
		h.respondErrorWithOp(w, http.StatusInternalServerError, fmt.Sprintf("failed to read upload: %v", err), "server.handleUploadMedia")
		return
	}

	item, err := h.content.UploadMedia(r.Context(), header.Filename, header.Header.Get("Content-Type"), r.FormValue("type"), data)
	if err != nil {
		h.respondServiceError(w, err, "server.handleUploadMedia")
		return
	}
	h.writeJSON(w, http.StatusCreated, item)
}

func (h *handler) handleLinkMedia(w http.ResponseWriter, r *http.Request) {
	var req linkRequest
	if err := h.decodeJSON(w, r, &req); err != nil {
		h.respondServiceError(w, err, "server.handleLinkMedia")
		return
	}
	item, err := h.content.LinkMedia(r.Context(), req.URL, req.Type)
	if err != nil {
		h.respondServiceError(w, err, "server.handleLinkMedia")
		return
	}
	h.writeJSON(w, http.StatusCreated, item)
}

func (h *handler) handleDeleteMedia(w http.ResponseWriter, r *http.Request) {
	if err := h.content.DeleteMedia(r.Context(), r.PathValue("id")); err != nil {
		h.respondServiceError(w, err, "server.handleDeleteMedia")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
