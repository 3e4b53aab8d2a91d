// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/opensurvey/panelboard/auth"
	"github.com/opensurvey/panelboard/cliparse"
	"github.com/opensurvey/panelboard/middleware"
	"github.com/opensurvey/panelboard/models"
	"github.com/opensurvey/panelboard/store"
)

type PanelHandler struct {
	st  store.Store
	cfg cliparse.Config
}

func NewPanelHandler(st store.Store, cfg cliparse.Config) *PanelHandler {
	return &PanelHandler{st: st, cfg: cfg}
}

// CreatePanel handles POST /panels
func (h *PanelHandler) CreatePanel(w http.ResponseWriter, r *http.Request) {
	var req models.CreatePanelRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	if req.Name == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "name is required")
		return
	}
	if req.UserCount < 0 {
		middleware.ErrorResponse(w, http.StatusBadRequest, "user_count must not be negative")
		return
	}
	if err := req.Attributes.Validate(); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, err.Error())
		return
	}
	// An unset requirement can never be satisfied, so reject it up front.
	for _, a := range req.Attributes {
		if a.Unset() {
			middleware.ErrorResponse(w, http.StatusBadRequest, "panel attributes must carry a value")
			return
		}
	}

	panelID, err := auth.GenerateID(12)
	if err != nil {
		slog.Error("failed to generate panel ID", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to create panel")
		return
	}

	panel := &models.Panel{
		ID:         panelID,
		Name:       req.Name,
		UserCount:  req.UserCount,
		Attributes: req.Attributes,
		CreatedAt:  time.Now().UTC(),
	}
	if err := h.st.AddPanel(panel); err != nil {
		slog.Error("failed to insert panel", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to create panel")
		return
	}

	slog.Info("panel created", "panel_id", panelID, "name", req.Name)

	middleware.JSONResponse(w, http.StatusCreated, models.CreatePanelResponse{
		PanelID: panelID,
	})
}

// ListPanels handles GET /panels
func (h *PanelHandler) ListPanels(w http.ResponseWriter, r *http.Request) {
	panels, err := h.st.ListPanels()
	if err != nil {
		slog.Error("failed to list panels", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}
	if panels == nil {
		panels = []*models.Panel{}
	}
	middleware.JSONResponse(w, http.StatusOK, panels)
}
