package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/logoslabs/logos/internal/agent"
	"github.com/logoslabs/logos/internal/api/middleware"
	"github.com/logoslabs/logos/internal/domain"
	"github.com/logoslabs/logos/internal/service"
)

type AgentHandler struct {
	registry  *agent.Registry
	execution *service.ExecutionService
	search    *service.SearchService
}

func NewAgentHandler(reg *agent.Registry, ex *service.ExecutionService, se *service.SearchService) *AgentHandler {
	return &AgentHandler{registry: reg, execution: ex, search: se}
}

func (h *AgentHandler) List(w http.ResponseWriter, r *http.Request) {
	category := r.URL.Query().Get("category")
	status := r.URL.Query().Get("status")
	if status != "" && !domain.ValidAgentStatus(status) {
		writeError(w, http.StatusBadRequest, "invalid status filter")
		return
	}
	if status == "" {
		status = string(domain.AgentActive)
	}

	defs := h.registry.List(category, domain.AgentStatus(status))
	writeJSON(w, http.StatusOK, map[string]any{"agents": defs, "count": len(defs)})
}

func (h *AgentHandler) Get(w http.ResponseWriter, r *http.Request) {
	def, err := h.registry.Get(chi.URLParam(r, "slug"))
	if err != nil {
		writeError(w, http.StatusNotFound, "agent not found")
		return
	}
	writeJSON(w, http.StatusOK, def)
}

type executeRequest struct {
	UserID    string         `json:"user_id"`
	SessionID string         `json:"session_id,omitempty"`
	InputData map[string]any `json:"input_data"`
}

func (h *AgentHandler) Execute(w http.ResponseWriter, r *http.Request) {
	tenant := middleware.TenantFromContext(r.Context())
	if tenant == nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var req executeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	userID, err := uuid.Parse(req.UserID)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid user_id")
		return
	}

	in := domain.AgentInput{InputData: req.InputData}
	if req.SessionID != "" {
		sessionID, err := uuid.Parse(req.SessionID)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid session_id")
			return
		}
		in.SessionID = sessionID
	}

	out, err := h.execution.Execute(r.Context(), chi.URLParam(r, "slug"), tenant.ID, userID, in)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrAgentNotFound):
			writeError(w, http.StatusNotFound, "agent not found")
		case errors.Is(err, service.ErrAgentNotAvailable):
			writeError(w, http.StatusConflict, err.Error())
		case errors.Is(err, service.ErrInsufficientFunds):
			writeError(w, http.StatusPaymentRequired, err.Error())
		case errors.Is(err, service.ErrSpendingLimitHit):
			writeError(w, http.StatusUnprocessableEntity, err.Error())
		default:
			writeError(w, http.StatusInternalServerError, "execution failed")
		}
		return
	}

	// Failed executions are a valid outcome, not a transport error.
	writeJSON(w, http.StatusOK, out)
}

func (h *AgentHandler) Search(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	topK := queryInt(r, "top_k", 10)

	matches, err := h.search.Search(r.Context(), query, topK)
	if err != nil {
		if errors.Is(err, service.ErrSearchQueryEmpty) {
			writeError(w, http.StatusBadRequest, "q is required")
			return
		}
		writeError(w, http.StatusInternalServerError, "search failed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"matches": matches, "count": len(matches)})
}

func (h *AgentHandler) SessionHistory(w http.ResponseWriter, r *http.Request) {
	tenant := middleware.TenantFromContext(r.Context())
	if tenant == nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	sessionID, err := uuid.Parse(chi.URLParam(r, "sessionID"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid session id")
		return
	}

	usage, err := h.execution.SessionHistory(r.Context(), sessionID, tenant.ID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load session history")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"usage": usage, "count": len(usage)})
}
