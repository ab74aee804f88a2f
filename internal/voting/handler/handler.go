// Package handler exposes governance voting over HTTP.
package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"patrolfund/internal/transport/http/shared"
	votingModel "patrolfund/internal/voting/models"
	id "patrolfund/pkg/domain"
	dErrors "patrolfund/pkg/domain-errors"
)

// Service is the voting surface the handler needs.
type Service interface {
	Vote(ctx context.Context, proposalID id.ProposalID, voteYes bool, stake uint64, asset id.Asset) (votingModel.Tally, error)
	Result(ctx context.Context, proposalID id.ProposalID) (votingModel.Tally, error)
	Tally(ctx context.Context, proposalID id.ProposalID) (votingModel.Tally, error)
}

type Handler struct {
	voting Service
	logger *slog.Logger
}

func New(voting Service, logger *slog.Logger) *Handler {
	return &Handler{voting: voting, logger: logger}
}

// Register mounts the voting routes.
func (h *Handler) Register(r chi.Router) {
	r.Post("/proposals/{proposalID}/votes", h.handleVote)
	r.Get("/proposals/{proposalID}/result", h.handleResult)
	r.Get("/proposals/{proposalID}/tally", h.handleTally)
}

type voteRequest struct {
	VoteYes bool   `json:"vote_yes"`
	Stake   uint64 `json:"stake"`
	Asset   string `json:"asset"`
}

func (h *Handler) handleVote(w http.ResponseWriter, r *http.Request) {
	proposalID, err := id.ParseProposalID(chi.URLParam(r, "proposalID"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	var req voteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}
	tally, err := h.voting.Vote(r.Context(), proposalID, req.VoteYes, req.Stake, id.Asset(req.Asset))
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, tally)
}

func (h *Handler) handleResult(w http.ResponseWriter, r *http.Request) {
	proposalID, err := id.ParseProposalID(chi.URLParam(r, "proposalID"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	tally, err := h.voting.Result(r.Context(), proposalID)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, tally)
}

func (h *Handler) handleTally(w http.ResponseWriter, r *http.Request) {
	proposalID, err := id.ParseProposalID(chi.URLParam(r, "proposalID"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	tally, err := h.voting.Tally(r.Context(), proposalID)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, tally)
}
