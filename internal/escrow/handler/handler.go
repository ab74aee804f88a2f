// Package handler exposes escrow custody over HTTP.
package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	escrowModel "patrolfund/internal/escrow/models"
	"patrolfund/internal/transport/http/shared"
	id "patrolfund/pkg/domain"
	dErrors "patrolfund/pkg/domain-errors"
)

// Service is the escrow surface the handler needs.
type Service interface {
	Lock(ctx context.Context, proposalID id.ProposalID, amount uint64, beneficiary id.Principal, asset id.Asset) (escrowModel.Escrow, error)
	Release(ctx context.Context, proposalID id.ProposalID, asset id.Asset) (escrowModel.Escrow, error)
	Get(ctx context.Context, proposalID id.ProposalID) (escrowModel.Escrow, error)
}

type Handler struct {
	escrows Service
	logger  *slog.Logger
}

func New(escrows Service, logger *slog.Logger) *Handler {
	return &Handler{escrows: escrows, logger: logger}
}

// Register mounts the escrow routes.
func (h *Handler) Register(r chi.Router) {
	r.Post("/proposals/{proposalID}/escrow", h.handleLock)
	r.Post("/proposals/{proposalID}/escrow/release", h.handleRelease)
	r.Get("/proposals/{proposalID}/escrow", h.handleGet)
}

type lockRequest struct {
	Amount      uint64 `json:"amount"`
	Beneficiary string `json:"beneficiary"`
	Asset       string `json:"asset"`
}

func (h *Handler) handleLock(w http.ResponseWriter, r *http.Request) {
	proposalID, err := id.ParseProposalID(chi.URLParam(r, "proposalID"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	var req lockRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}
	beneficiary, err := id.ParsePrincipal(req.Beneficiary)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	escrow, err := h.escrows.Lock(r.Context(), proposalID, req.Amount, beneficiary, id.Asset(req.Asset))
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusCreated, escrow)
}

type releaseRequest struct {
	Asset string `json:"asset"`
}

func (h *Handler) handleRelease(w http.ResponseWriter, r *http.Request) {
	proposalID, err := id.ParseProposalID(chi.URLParam(r, "proposalID"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	var req releaseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}
	escrow, err := h.escrows.Release(r.Context(), proposalID, id.Asset(req.Asset))
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, escrow)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	proposalID, err := id.ParseProposalID(chi.URLParam(r, "proposalID"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	escrow, err := h.escrows.Get(r.Context(), proposalID)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, escrow)
}
