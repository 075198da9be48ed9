package http

import (
	"encoding/json"
	"net/http"

	"github.com/mailpilot/mailpilot/internal/domain"
	"github.com/mailpilot/mailpilot/pkg/logger"
)

type errorResponse struct {
	Error string `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}

type TemplateHandler struct {
	service domain.TemplateService
	logger  logger.Logger
}

func NewTemplateHandler(service domain.TemplateService, logger logger.Logger) *TemplateHandler {
	return &TemplateHandler{
		service: service,
		logger:  logger,
	}
}

// RegisterRoutes registers the RPC-style template endpoints.
func (h *TemplateHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/api/templates.list", h.handleList)
	mux.HandleFunc("/api/templates.get", h.handleGet)
	mux.HandleFunc("/api/templates.create", h.handleCreate)
	mux.HandleFunc("/api/templates.update", h.handleUpdate)
	mux.HandleFunc("/api/templates.delete", h.handleDelete)
	mux.HandleFunc("/api/templates.save", h.handleSave)
	mux.HandleFunc("/api/templates.html", h.handleHTML)
	mux.HandleFunc("/api/templates.test", h.handleTest)
}

func (h *TemplateHandler) handleList(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	var req domain.GetTemplatesRequest
	if err := req.FromURLParams(r.URL.Query()); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	templates, err := h.service.GetTemplates(r.Context(), req.WorkspaceID, req.Search)
	if err != nil {
		h.logger.WithField("error", err.Error()).Error("Failed to get templates")
		writeError(w, http.StatusInternalServerError, "Failed to get templates")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"templates": templates,
	})
}

func (h *TemplateHandler) handleGet(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	var req domain.GetTemplateRequest
	if err := req.FromURLParams(r.URL.Query()); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	template, err := h.service.GetTemplateByID(r.Context(), req.WorkspaceID, req.ID)
	if err != nil {
		if _, ok := err.(*domain.ErrTemplateNotFound); ok {
			writeError(w, http.StatusNotFound, "Template not found")
			return
		}
		h.logger.WithField("error", err.Error()).Error("Failed to get template")
		writeError(w, http.StatusInternalServerError, "Failed to get template")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"template": template,
	})
}

func (h *TemplateHandler) handleCreate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	var req domain.CreateTemplateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.WithField("error", err.Error()).Error("Failed to decode request body")
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	template, workspaceID, err := req.Validate()
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.service.CreateTemplate(r.Context(), workspaceID, template); err != nil {
		h.logger.WithField("error", err.Error()).Error("Failed to create template")
		writeError(w, http.StatusInternalServerError, "Failed to create template")
		return
	}

	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"template": template,
	})
}

func (h *TemplateHandler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	var req domain.UpdateTemplateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.WithField("error", err.Error()).Error("Failed to decode request body")
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	template, workspaceID, err := req.Validate()
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.service.UpdateTemplate(r.Context(), workspaceID, template); err != nil {
		if _, ok := err.(*domain.ErrTemplateNotFound); ok {
			writeError(w, http.StatusNotFound, "Template not found")
			return
		}
		h.logger.WithField("error", err.Error()).Error("Failed to update template")
		writeError(w, http.StatusInternalServerError, "Failed to update template")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"template": template,
	})
}

func (h *TemplateHandler) handleDelete(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	var req domain.DeleteTemplateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.WithField("error", err.Error()).Error("Failed to decode request body")
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	workspaceID, id, err := req.Validate()
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.service.DeleteTemplate(r.Context(), workspaceID, id); err != nil {
		if _, ok := err.(*domain.ErrTemplateNotFound); ok {
			writeError(w, http.StatusNotFound, "Template not found")
			return
		}
		h.logger.WithField("error", err.Error()).Error("Failed to delete template")
		writeError(w, http.StatusInternalServerError, "Failed to delete template")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status": "deleted",
	})
}

func (h *TemplateHandler) handleSave(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	var req domain.SaveTemplateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.WithField("error", err.Error()).Error("Failed to decode request body")
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	template, workspaceID, err := req.Validate()
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	var stages []domain.SaveStage
	saved, err := h.service.SaveTemplate(r.Context(), workspaceID, template, func(stage domain.SaveStage) {
		stages = append(stages, stage)
	})
	if err != nil {
		h.logger.WithField("error", err.Error()).Error("Failed to save template")
		writeError(w, http.StatusInternalServerError, "Failed to save template")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"template": saved,
		"stages":   stages,
	})
}

func (h *TemplateHandler) handleHTML(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	var req domain.GetTemplateRequest
	if err := req.FromURLParams(r.URL.Query()); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	html, err := h.service.RenderTemplate(r.Context(), req.WorkspaceID, req.ID)
	if err != nil {
		if _, ok := err.(*domain.ErrTemplateNotFound); ok {
			writeError(w, http.StatusNotFound, "Template not found")
			return
		}
		h.logger.WithField("error", err.Error()).Error("Failed to render template")
		writeError(w, http.StatusInternalServerError, "Failed to render template")
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(html))
}

func (h *TemplateHandler) handleTest(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	var req domain.TestTemplateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.WithField("error", err.Error()).Error("Failed to decode request body")
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := req.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.service.SendTestEmail(r.Context(), req.WorkspaceID, req.ID, req.Recipient); err != nil {
		if _, ok := err.(*domain.ErrTemplateNotFound); ok {
			writeError(w, http.StatusNotFound, "Template not found")
			return
		}
		h.logger.WithField("error", err.Error()).Error("Failed to send test email")
		writeError(w, http.StatusInternalServerError, "Failed to send test email")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status": "sent",
	})
}
