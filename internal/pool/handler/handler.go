// Package handler exposes the pool registry over HTTP. It stays thin:
// parse, delegate to the service, translate errors.
package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	poolModel "patrolfund/internal/pool/models"
	poolService "patrolfund/internal/pool/service"
	"patrolfund/internal/transport/http/shared"
	id "patrolfund/pkg/domain"
	dErrors "patrolfund/pkg/domain-errors"
)

// Service is the pool registry surface the handler needs.
type Service interface {
	CreatePool(ctx context.Context, params poolService.CreatePoolParams) (id.PoolID, error)
	UpdatePool(ctx context.Context, poolID id.PoolID, newName string, newMin, newMax uint64) error
	Donate(ctx context.Context, poolID id.PoolID, amount uint64, asset id.Asset) (poolModel.Donation, error)
	GetPool(ctx context.Context, poolID id.PoolID) (poolModel.Pool, error)
	PoolIDByName(ctx context.Context, name string) (id.PoolID, error)
	GetDonation(ctx context.Context, poolID id.PoolID, donor id.Principal) (poolModel.Donation, error)
	GetUpdates(ctx context.Context, poolID id.PoolID) ([]poolModel.PoolUpdate, error)
	PoolCount(ctx context.Context) (uint64, error)
	GrandTotal(ctx context.Context) (uint64, error)
}

type Handler struct {
	pools  Service
	logger *slog.Logger
}

func New(pools Service, logger *slog.Logger) *Handler {
	return &Handler{pools: pools, logger: logger}
}

// Register mounts the pool routes.
func (h *Handler) Register(r chi.Router) {
	r.Post("/pools", h.handleCreate)
	r.Put("/pools/{poolID}", h.handleUpdate)
	r.Post("/pools/{poolID}/donations", h.handleDonate)
	r.Get("/pools/{poolID}", h.handleGet)
	r.Get("/pools/{poolID}/updates", h.handleUpdates)
	r.Get("/pools/{poolID}/donations/{donor}", h.handleGetDonation)
	r.Get("/pools/lookup", h.handleLookup)
	r.Get("/pools/count", h.handleCount)
	r.Get("/pools/total", h.handleGrandTotal)
}

type createRequest struct {
	Name        string `json:"name"`
	MinDonation uint64 `json:"min_donation"`
	MaxDonation uint64 `json:"max_donation"`
	Type        string `json:"type"`
	FeeRate     uint64 `json:"fee_rate"`
	GracePeriod uint64 `json:"grace_period"`
	Location    string `json:"location"`
	Currency    string `json:"currency"`
	Asset       string `json:"asset"`
}

func (h *Handler) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req createRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}

	// Enum and asset parsing happens in the service's ordered precondition
	// chain, so raw strings pass through here.
	poolID, err := h.pools.CreatePool(r.Context(), poolService.CreatePoolParams{
		Name:        req.Name,
		MinDonation: req.MinDonation,
		MaxDonation: req.MaxDonation,
		Type:        poolModel.PoolType(req.Type),
		FeeRate:     req.FeeRate,
		GracePeriod: req.GracePeriod,
		Location:    req.Location,
		Currency:    poolModel.Currency(req.Currency),
		Asset:       id.Asset(req.Asset),
	})
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusCreated, map[string]any{"pool_id": poolID})
}

type updateRequest struct {
	Name        string `json:"name"`
	MinDonation uint64 `json:"min_donation"`
	MaxDonation uint64 `json:"max_donation"`
}

func (h *Handler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	poolID, err := id.ParsePoolID(chi.URLParam(r, "poolID"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	var req updateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}
	if err := h.pools.UpdatePool(r.Context(), poolID, req.Name, req.MinDonation, req.MaxDonation); err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, map[string]string{"status": "updated"})
}

type donateRequest struct {
	Amount uint64 `json:"amount"`
	Asset  string `json:"asset"`
}

func (h *Handler) handleDonate(w http.ResponseWriter, r *http.Request) {
	poolID, err := id.ParsePoolID(chi.URLParam(r, "poolID"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	var req donateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}
	donation, err := h.pools.Donate(r.Context(), poolID, req.Amount, id.Asset(req.Asset))
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, donation)
}

func (h *Handler) handleGet(w http.ResponseWriter, r *http.Request) {
	poolID, err := id.ParsePoolID(chi.URLParam(r, "poolID"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	pool, err := h.pools.GetPool(r.Context(), poolID)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, pool)
}

func (h *Handler) handleUpdates(w http.ResponseWriter, r *http.Request) {
	poolID, err := id.ParsePoolID(chi.URLParam(r, "poolID"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	updates, err := h.pools.GetUpdates(r.Context(), poolID)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, updates)
}

func (h *Handler) handleGetDonation(w http.ResponseWriter, r *http.Request) {
	poolID, err := id.ParsePoolID(chi.URLParam(r, "poolID"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	donor, err := id.ParsePrincipal(chi.URLParam(r, "donor"))
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	donation, err := h.pools.GetDonation(r.Context(), poolID, donor)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, donation)
}

func (h *Handler) handleLookup(w http.ResponseWriter, r *http.Request) {
	name := r.URL.Query().Get("name")
	if name == "" {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "name query parameter is required"))
		return
	}
	poolID, err := h.pools.PoolIDByName(r.Context(), name)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, map[string]any{"pool_id": poolID})
}

func (h *Handler) handleCount(w http.ResponseWriter, r *http.Request) {
	count, err := h.pools.PoolCount(r.Context())
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, map[string]uint64{"count": count})
}

func (h *Handler) handleGrandTotal(w http.ResponseWriter, r *http.Request) {
	total, err := h.pools.GrandTotal(r.Context())
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, map[string]uint64{"total_donations": total})
}
