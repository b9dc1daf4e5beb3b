package httpx

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/Menelao6/inventory-manager/internal/apperr"
	"github.com/Menelao6/inventory-manager/internal/dashboard"
	"github.com/Menelao6/inventory-manager/internal/ledger"
	"github.com/Menelao6/inventory-manager/internal/orders"
	"github.com/Menelao6/inventory-manager/internal/store"
	"github.com/Menelao6/inventory-manager/internal/workflow"
)

// Reconciliation is the ledger's view of partially applied workflows.
type Reconciliation interface {
	ListUnresolved(ctx context.Context, limit int) ([]ledger.Entry, error)
	Resolve(ctx context.Context, eventID string) (bool, error)
}

type ManagerHandler struct {
	Store     workflow.Store
	Canceller *workflow.Canceller
	Processor *workflow.Processor
	Ledger    Reconciliation // nil disables the reconciliation routes
	Log       *zap.Logger
}

type processResp struct {
	Order  orders.Order   `json:"order"`
	Orders []orders.Order `json:"orders,omitempty"`
}

func (h *ManagerHandler) Register(r chi.Router) {
	r.Route("/manager", func(r chi.Router) {
		r.Get("/orders", h.listOrders)
		r.Get("/orders/{id}", h.getOrder)
		r.Post("/orders/{id}/cancel", h.cancelOrder)
		r.Post("/orders/{id}/process", h.processOrder)
		r.Delete("/orders/{id}", h.deleteOrder)
		r.Get("/reconciliation", h.listReconciliation)
		r.Post("/reconciliation/{eventID}/resolve", h.resolve)
	})
}

func (h *ManagerHandler) listOrders(w http.ResponseWriter, r *http.Request) {
	status := orders.OrderStatus(r.URL.Query().Get("status"))
	if status != "" && !status.Known() {
		writeError(w, h.log(), apperr.Validationf("unknown status %q", status))
		return
	}
	list, err := h.Store.ListOrders(r.Context())
	if err != nil {
		writeError(w, h.log(), apperr.Remote(err, "failed to load orders"))
		return
	}
	writeJSON(w, http.StatusOK, dashboard.Manager(list, status))
}

func (h *ManagerHandler) getOrder(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	o, err := h.Store.GetOrder(r.Context(), id)
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, h.log(), apperr.NotFoundf("order %s not found", id))
		return
	}
	if err != nil {
		writeError(w, h.log(), apperr.Remote(err, "failed to load order %s", id))
		return
	}
	writeJSON(w, http.StatusOK, o)
}

// cancelOrder loads the dashboard view first so the stock restore works
// from the product list the manager is looking at.
func (h *ManagerHandler) cancelOrder(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	view, err := workflow.LoadManagerView(r.Context(), h.Store)
	if err != nil {
		writeError(w, h.log(), err)
		return
	}
	out, err := h.Canceller.Cancel(r.Context(), view, id)
	if err != nil {
		writeError(w, h.log(), err)
		return
	}
	writeJSON(w, http.StatusOK, out)
}

func (h *ManagerHandler) processOrder(w http.ResponseWriter, r *http.Request) {
	o, list, err := h.Processor.Process(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, h.log(), err)
		return
	}
	writeJSON(w, http.StatusOK, processResp{Order: o, Orders: list})
}

func (h *ManagerHandler) deleteOrder(w http.ResponseWriter, r *http.Request) {
	if err := h.Processor.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeError(w, h.log(), err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *ManagerHandler) listReconciliation(w http.ResponseWriter, r *http.Request) {
	if h.Ledger == nil {
		writeJSON(w, http.StatusServiceUnavailable, errorBody{Error: "reconciliation ledger is not configured", Kind: "unavailable"})
		return
	}
	limit := 100
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			writeError(w, h.log(), apperr.Validationf("invalid limit %q", raw))
			return
		}
		limit = n
	}
	entries, err := h.Ledger.ListUnresolved(r.Context(), limit)
	if err != nil {
		writeError(w, h.log(), err)
		return
	}
	writeJSON(w, http.StatusOK, entries)
}

func (h *ManagerHandler) resolve(w http.ResponseWriter, r *http.Request) {
	if h.Ledger == nil {
		writeJSON(w, http.StatusServiceUnavailable, errorBody{Error: "reconciliation ledger is not configured", Kind: "unavailable"})
		return
	}
	id := chi.URLParam(r, "eventID")
	found, err := h.Ledger.Resolve(r.Context(), id)
	if err != nil {
		writeError(w, h.log(), err)
		return
	}
	if !found {
		writeError(w, h.log(), apperr.NotFoundf("no open reconciliation entry %s", id))
		return
	}
	h.log().Info("reconciliation resolved", zap.String("event_id", id))
	w.WriteHeader(http.StatusNoContent)
}

func (h *ManagerHandler) log() *zap.Logger { return loggerOr(h.Log) }
