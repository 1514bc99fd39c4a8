/*
handlers.go - HTTP API handlers for the reward engine

PURPOSE:
  Exposes the reward engine via REST. Handles HTTP request/response, JSON
  serialization, and delegates to the estimator, dispatcher, and ledger.

ENDPOINTS:
  POST /api/estimates                                  Cost out a draft task
  POST /api/completions                                Apply all rewards for a completion
  GET  /api/ambassadors/{id}/wallets                   List an ambassador's wallets
  GET  /api/ambassadors/{id}/wallets/{currency}        Single-currency balance
  GET  /api/wallets/{id}/entries                       Ledger history
  POST /api/wallets/{id}/reconcile                     Drift audit
  GET  /api/health                                     Liveness

ARCHITECTURE:
  Handler struct holds all dependencies:
  - Ledger: Wallet reads and reconciliation
  - Calculator: Estimation
  - Dispatcher: Reward application

ERROR HANDLING:
  Errors are returned as JSON with appropriate HTTP status:
  - 400: Configuration/validation errors, invalid input
  - 404: Wallet not found
  - 409: Idempotency conflict
  - 500: Internal errors
  Per-spec reward failures are NOT HTTP errors: a completion returns 200
  with the per-spec result list, because one reward kind failing must not
  look like the whole completion failed.

SECURITY NOTE:
  No authentication middleware. Authorization is owned by the surrounding
  admin backend; this surface is meant to sit behind it.

SEE ALSO:
  - dto.go: Request/response data structures
  - server.go: Router setup and middleware
*/
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/orbit/reward-engine/estimate"
	"github.com/orbit/reward-engine/ledger"
	"github.com/orbit/reward-engine/reward"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Ledger     *ledger.WalletLedger
	Calculator *estimate.Calculator
	Dispatcher *reward.Dispatcher
}

func NewHandler(l *ledger.WalletLedger, calc *estimate.Calculator, d *reward.Dispatcher) *Handler {
	return &Handler{Ledger: l, Calculator: calc, Dispatcher: d}
}

// =============================================================================
// ESTIMATION
// =============================================================================

// Estimate costs out a draft task configuration.
// POST /api/estimates
func (h *Handler) Estimate(w http.ResponseWriter, r *http.Request) {
	var req EstimateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}

	assignees := make([]ledger.AmbassadorID, len(req.AssigneeIDs))
	for i, id := range req.AssigneeIDs {
		assignees[i] = ledger.AmbassadorID(id)
	}

	projection, err := h.Calculator.Estimate(r.Context(), estimate.Input{
		MinLevel:         req.MinLevel,
		MaxLevel:         req.MaxLevel,
		AssigneeIDs:      assignees,
		Participants:     req.Participants,
		LevelCoefficient: req.LevelCoefficient,
		Rewards:          toSpecs(req.Rewards),
	})
	if err != nil {
		writeError(w, statusFor(err), "Estimation failed", err)
		return
	}

	writeJSON(w, http.StatusOK, EstimateResponse{
		Min:   projection.Min.String(),
		Max:   projection.Max.String(),
		Total: projection.Total.String(),
	})
}

// =============================================================================
// COMPLETION
// =============================================================================

// Complete applies every reward of a completed task to one ambassador.
// POST /api/completions
//
// The caller owns completion idempotency: posting the same completion
// twice credits twice.
func (h *Handler) Complete(w http.ResponseWriter, r *http.Request) {
	var req CompleteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body", err)
		return
	}
	if req.TaskID == "" || req.AmbassadorID == "" {
		writeError(w, http.StatusBadRequest, "task_id and ambassador_id are required", nil)
		return
	}

	task := reward.Task{
		ID:               ledger.TaskID(req.TaskID),
		ProjectID:        reward.ProjectID(req.ProjectID),
		LevelCoefficient: req.LevelCoefficient,
		Rewards:          toSpecs(req.Rewards),
	}
	ambassador := reward.Ambassador{
		ID:    ledger.AmbassadorID(req.AmbassadorID),
		Level: req.AmbassadorLevel,
	}

	results := h.Dispatcher.ApplyAll(r.Context(), task, ambassador, req.RatingPoints)

	dtos := make([]AppliedDTO, len(results))
	for i, res := range results {
		dtos[i] = AppliedDTO{
			Kind:      string(res.Kind),
			OK:        res.OK,
			Attempted: res.Attempted,
		}
		if res.Err != nil {
			dtos[i].Error = res.Err.Error()
		}
		if res.Entry != nil {
			e := toEntryDTO(*res.Entry)
			dtos[i].Entry = &e
		}
	}
	writeJSON(w, http.StatusOK, dtos)
}

// =============================================================================
// WALLET QUERIES
// =============================================================================

// ListWallets returns all wallets of an ambassador.
// GET /api/ambassadors/{id}/wallets
func (h *Handler) ListWallets(w http.ResponseWriter, r *http.Request) {
	ambassadorID := ledger.AmbassadorID(chi.URLParam(r, "id"))

	wallets, err := h.Ledger.Wallets(r.Context(), ambassadorID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list wallets", err)
		return
	}

	dtos := make([]WalletDTO, len(wallets))
	for i, wl := range wallets {
		dtos[i] = WalletDTO{
			ID:           string(wl.ID),
			AmbassadorID: string(wl.AmbassadorID),
			Currency:     string(wl.CurrencyID),
			Balance:      wl.Balance.String(),
			UpdatedAt:    wl.UpdatedAt.Format(time.RFC3339),
		}
	}
	writeJSON(w, http.StatusOK, dtos)
}

// GetBalance returns an ambassador's balance in one currency.
// A missing wallet reads as zero; reading never creates one.
// GET /api/ambassadors/{id}/wallets/{currency}
func (h *Handler) GetBalance(w http.ResponseWriter, r *http.Request) {
	ambassadorID := ledger.AmbassadorID(chi.URLParam(r, "id"))
	currencyID := ledger.CurrencyID(chi.URLParam(r, "currency"))

	amount, err := h.Ledger.Balance(r.Context(), ambassadorID, currencyID)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to read balance", err)
		return
	}

	writeJSON(w, http.StatusOK, BalanceDTO{
		AmbassadorID: string(ambassadorID),
		Currency:     string(currencyID),
		Balance:      amount.Value.String(),
	})
}

// ListEntries returns the full credit history of a wallet.
// GET /api/wallets/{id}/entries
func (h *Handler) ListEntries(w http.ResponseWriter, r *http.Request) {
	walletID := ledger.WalletID(chi.URLParam(r, "id"))

	entries, err := h.Ledger.Entries(r.Context(), walletID)
	if err != nil {
		writeError(w, statusFor(err), "Failed to list entries", err)
		return
	}

	dtos := make([]EntryDTO, len(entries))
	for i, e := range entries {
		dtos[i] = toEntryDTO(e)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// Reconcile audits a wallet against its entry history.
// POST /api/wallets/{id}/reconcile
func (h *Handler) Reconcile(w http.ResponseWriter, r *http.Request) {
	walletID := ledger.WalletID(chi.URLParam(r, "id"))

	err := h.Ledger.Reconcile(r.Context(), walletID)
	if err == nil {
		writeJSON(w, http.StatusOK, ReconcileResponse{WalletID: string(walletID), InSync: true})
		return
	}

	var drift *ledger.DriftError
	if errors.As(err, &drift) {
		writeJSON(w, http.StatusOK, ReconcileResponse{
			WalletID: string(walletID),
			InSync:   false,
			Detail:   drift.Error(),
		})
		return
	}
	writeError(w, statusFor(err), "Reconciliation failed", err)
}

// Health is a liveness probe.
// GET /api/health
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// =============================================================================
// HELPERS
// =============================================================================

func toSpecs(dtos []RewardSpecDTO) []reward.Spec {
	specs := make([]reward.Spec, len(dtos))
	for i, d := range dtos {
		specs[i] = reward.Spec{
			Kind:       reward.Kind(d.Kind),
			Value:      d.Value,
			CurrencyID: ledger.CurrencyID(d.Currency),
		}
	}
	return specs
}

func toEntryDTO(e ledger.Entry) EntryDTO {
	return EntryDTO{
		ID:        string(e.ID),
		WalletID:  string(e.WalletID),
		TaskID:    string(e.TaskID),
		Value:     e.Value.String(),
		Points:    e.Points,
		CreatedAt: e.CreatedAt.Format(time.RFC3339),
	}
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, reward.ErrMisconfigured):
		return http.StatusBadRequest
	case ledger.IsNotFound(err):
		return http.StatusNotFound
	case errors.Is(err, ledger.ErrDuplicateIdempotencyKey):
		return http.StatusConflict
	case ledger.IsClientError(err):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}
