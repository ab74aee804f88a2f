// Package handler exposes deployment attestation over HTTP.
package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"patrolfund/internal/transport/http/shared"
	"patrolfund/internal/verification/models"
	id "patrolfund/pkg/domain"
)

// Service is the verification surface the handler needs.
type Service interface {
	Sign(ctx context.Context, proposalID id.ProposalID) (models.Record, error)
	Record(ctx context.Context, proposalID id.ProposalID) (models.Record, error)
}

type Handler struct {
	verifications Service
	logger        *slog.Logger
}

func New(verifications Service, logger *slog.Logger) *Handler {
	return &Handler{verifications: verifications, logger: logger}
}

// Register mounts the verification routes.
func (h *Handler) Register(r chi.Router) {
	r.Post("/proposals/{proposalID}/verifications", h.handleSign)
	r.Get("/proposals/{proposalID}/verifications", h.handleGet)
}

func (h *Handler) handleSign(w http.ResponseWriter, r *http.Request) {
	proposalID, err := id.ParseProposalID(chi.URLParam(r, "proposalID"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	record, err := h.verifications.Sign(r.Context(), proposalID)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusCreated, record)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	proposalID, err := id.ParseProposalID(chi.URLParam(r, "proposalID"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	record, err := h.verifications.Record(r.Context(), proposalID)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, record)
}
