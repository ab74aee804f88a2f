// Package handler exposes the proposal lifecycle over HTTP.
package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	proposalModel "patrolfund/internal/proposal/models"
	"patrolfund/internal/transport/http/shared"
	id "patrolfund/pkg/domain"
	dErrors "patrolfund/pkg/domain-errors"
)

// Service is the proposal surface the handler needs.
type Service interface {
	Create(ctx context.Context, description string, duration, requiredFunds uint64) (id.ProposalID, error)
	UpdateStatus(ctx context.Context, proposalID id.ProposalID, next proposalModel.Status) error
	Get(ctx context.Context, proposalID id.ProposalID) (proposalModel.Proposal, error)
	Count(ctx context.Context) (uint64, error)
}

type Handler struct {
	proposals Service
	logger    *slog.Logger
}

func New(proposals Service, logger *slog.Logger) *Handler {
	return &Handler{proposals: proposals, logger: logger}
}

// Register mounts the proposal routes.
func (h *Handler) Register(r chi.Router) {
	r.Post("/proposals", h.handleCreate)
	r.Put("/proposals/{proposalID}/status", h.handleUpdateStatus)
	r.Get("/proposals/{proposalID}", h.handleGet)
	r.Get("/proposals/count", h.handleCount)
}

type createRequest struct {
	Description   string `json:"description"`
	Duration      uint64 `json:"duration"`
	RequiredFunds uint64 `json:"required_funds"`
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req createRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}
	proposalID, err := h.proposals.Create(r.Context(), req.Description, req.Duration, req.RequiredFunds)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusCreated, map[string]any{"proposal_id": proposalID})
}

type statusRequest struct {
	Status string `json:"status"`
}

func (h *Handler) handleUpdateStatus(w http.ResponseWriter, r *http.Request) {
	proposalID, err := id.ParseProposalID(chi.URLParam(r, "proposalID"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	var req statusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}
	status, err := proposalModel.ParseStatus(req.Status)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	if err := h.proposals.UpdateStatus(r.Context(), proposalID, status); err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, map[string]string{"status": string(status)})
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	proposalID, err := id.ParseProposalID(chi.URLParam(r, "proposalID"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	proposal, err := h.proposals.Get(r.Context(), proposalID)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, proposal)
}

func (h *Handler) handleCount(w http.ResponseWriter, r *http.Request) {
	count, err := h.proposals.Count(r.Context())
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, map[string]uint64{"count": count})
}
