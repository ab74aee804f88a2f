// Package handler exposes operator controls: registry configuration,
// chain height advancement, and the recent event feed.
package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"patrolfund/internal/events"
	"patrolfund/internal/transport/http/shared"
	id "patrolfund/pkg/domain"
	dErrors "patrolfund/pkg/domain-errors"
)

// Registry is the configuration surface of the pool service.
type Registry interface {
	SetAuthority(ctx context.Context, recipient id.Principal) error
	SetCreationFee(ctx context.Context, fee uint64) error
	SetMaxPools(ctx context.Context, maxPools uint64) error
}

// Clock advances and reports the logical chain height.
type Clock interface {
	Height() uint64
	Advance(n uint64) uint64
}

// EventLister returns the most recent recorded events.
type EventLister interface {
	List(ctx context.Context, limit int) ([]events.Event, error)
}

// Minter credits token balances. Only the in-memory ledger implements it;
// the faucet route exists for development and test environments.
type Minter interface {
	Mint(asset id.Asset, who id.Principal, amount uint64)
}

type Handler struct {
	registry Registry
	clock    Clock
	events   EventLister
	minter   Minter
	logger   *slog.Logger
}

func New(registry Registry, clock Clock, eventLister EventLister, minter Minter, logger *slog.Logger) *Handler {
	return &Handler{registry: registry, clock: clock, events: eventLister, minter: minter, logger: logger}
}

// Register mounts the operator routes.
func (h *Handler) Register(r chi.Router) {
	r.Post("/admin/authority", h.handleSetAuthority)
	r.Put("/admin/creation-fee", h.handleSetCreationFee)
	r.Put("/admin/max-pools", h.handleSetMaxPools)
	r.Post("/admin/height/advance", h.handleAdvanceHeight)
	r.Post("/admin/faucet", h.handleFaucet)
	r.Get("/admin/height", h.handleGetHeight)
	r.Get("/admin/events", h.handleListEvents)
}

type setAuthorityRequest struct {
	Recipient string `json:"recipient"`
}

func (h *Handler) handleSetAuthority(w http.ResponseWriter, r *http.Request) {
	var req setAuthorityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}
	recipient, err := id.ParsePrincipal(req.Recipient)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	if err := h.registry.SetAuthority(r.Context(), recipient); err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, map[string]string{"authority": recipient.String()})
}

type setFeeRequest struct {
	Fee uint64 `json:"fee"`
}

func (h *Handler) handleSetCreationFee(w http.ResponseWriter, r *http.Request) {
	var req setFeeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}
	if err := h.registry.SetCreationFee(r.Context(), req.Fee); err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, map[string]uint64{"creation_fee": req.Fee})
}

type setMaxPoolsRequest struct {
	MaxPools uint64 `json:"max_pools"`
}

func (h *Handler) handleSetMaxPools(w http.ResponseWriter, r *http.Request) {
	var req setMaxPoolsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}
	if err := h.registry.SetMaxPools(r.Context(), req.MaxPools); err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, map[string]uint64{"max_pools": req.MaxPools})
}

type advanceHeightRequest struct {
	Blocks uint64 `json:"blocks"`
}

func (h *Handler) handleAdvanceHeight(w http.ResponseWriter, r *http.Request) {
	var req advanceHeightRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}
	if req.Blocks == 0 {
		shared.WriteError(w, dErrors.New(dErrors.CodeValidation, "blocks must be greater than zero"))
		return
	}
	height := h.clock.Advance(req.Blocks)
	shared.WriteJSON(w, http.StatusOK, map[string]uint64{"height": height})
}

type faucetRequest struct {
	Asset     string `json:"asset"`
	Recipient string `json:"recipient"`
	Amount    uint64 `json:"amount"`
}

func (h *Handler) handleFaucet(w http.ResponseWriter, r *http.Request) {
	if h.minter == nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeNotFound, "faucet is not enabled"))
		return
	}
	var req faucetRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		shared.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid request body"))
		return
	}
	recipient, err := id.ParsePrincipal(req.Recipient)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	asset, err := id.ParseAsset(req.Asset)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	if req.Amount == 0 {
		shared.WriteError(w, dErrors.New(dErrors.CodeValidation, "amount must be greater than zero"))
		return
	}
	h.minter.Mint(asset, recipient, req.Amount)
	shared.WriteJSON(w, http.StatusOK, map[string]any{
		"asset":     asset.String(),
		"recipient": recipient.String(),
		"amount":    req.Amount,
	})
}

func (h *Handler) handleGetHeight(w http.ResponseWriter, r *http.Request) {
	shared.WriteJSON(w, http.StatusOK, map[string]uint64{"height": h.clock.Height()})
}

func (h *Handler) handleListEvents(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			shared.WriteError(w, dErrors.New(dErrors.CodeInvalidInput, "limit must be a positive integer"))
			return
		}
		limit = parsed
	}
	recent, err := h.events.List(r.Context(), limit)
	if err != nil {
		shared.WriteError(w, err)
		return
	}
	shared.WriteJSON(w, http.StatusOK, map[string]any{"events": recent})
}
