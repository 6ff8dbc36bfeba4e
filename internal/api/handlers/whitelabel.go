package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/logoslabs/logos/internal/api/middleware"
	"github.com/logoslabs/logos/internal/domain"
	"github.com/logoslabs/logos/internal/service"
)

type WhitelabelHandler struct {
	svc *service.WhitelabelService
}

func NewWhitelabelHandler(svc *service.WhitelabelService) *WhitelabelHandler {
	return &WhitelabelHandler{svc: svc}
}

func (h *WhitelabelHandler) Get(w http.ResponseWriter, r *http.Request) {
	tenant := middleware.TenantFromContext(r.Context())
	if tenant == nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	cfg, err := h.svc.Get(r.Context(), tenant.ID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to load branding")
		return
	}
	writeJSON(w, http.StatusOK, cfg)
}

func (h *WhitelabelHandler) Update(w http.ResponseWriter, r *http.Request) {
	tenant := middleware.TenantFromContext(r.Context())
	if tenant == nil {
		writeError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	var cfg domain.WhitelabelConfig
	if err := json.NewDecoder(r.Body).Decode(&cfg); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	cfg.TenantID = tenant.ID

	if err := h.svc.Update(r.Context(), &cfg); err != nil {
		if errors.Is(err, service.ErrInvalidBranding) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to update branding")
		return
	}
	writeJSON(w, http.StatusOK, cfg)
}
