package httpx

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/Menelao6/inventory-manager/internal/apperr"
	"github.com/Menelao6/inventory-manager/internal/dashboard"
	"github.com/Menelao6/inventory-manager/internal/inventory"
)

type AdminHandler struct {
	Inventory *inventory.Service
	Threshold int // low-stock threshold when the request names none
	Log       *zap.Logger
}

func (h *AdminHandler) Register(r chi.Router) {
	r.Route("/admin", func(r chi.Router) {
		r.Get("/summary", h.summary)
		r.Get("/products", h.listProducts)
		r.Post("/products", h.createProduct)
		r.Patch("/products/{id}", h.updateProduct)
		r.Delete("/products/{id}", h.deleteProduct)
	})
}

func (h *AdminHandler) summary(w http.ResponseWriter, r *http.Request) {
	threshold := h.Threshold
	if raw := r.URL.Query().Get("threshold"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			writeError(w, h.log(), apperr.Validationf("invalid threshold %q", raw))
			return
		}
		threshold = n
	}
	ps, err := h.Inventory.List(r.Context())
	if err != nil {
		writeError(w, h.log(), err)
		return
	}
	writeJSON(w, http.StatusOK, dashboard.Admin(ps, threshold))
}

func (h *AdminHandler) listProducts(w http.ResponseWriter, r *http.Request) {
	ps, err := h.Inventory.List(r.Context())
	if err != nil {
		writeError(w, h.log(), err)
		return
	}
	writeJSON(w, http.StatusOK, ps)
}

func (h *AdminHandler) createProduct(w http.ResponseWriter, r *http.Request) {
	var in inventory.ProductInput
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, h.log(), err)
		return
	}
	p, err := h.Inventory.Create(r.Context(), in)
	if err != nil {
		writeError(w, h.log(), err)
		return
	}
	writeJSON(w, http.StatusCreated, p)
}

func (h *AdminHandler) updateProduct(w http.ResponseWriter, r *http.Request) {
	id, err := intParam(r, "id")
	if err != nil {
		writeError(w, h.log(), err)
		return
	}
	var in inventory.ProductInput
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, h.log(), err)
		return
	}
	p, err := h.Inventory.Update(r.Context(), id, in)
	if err != nil {
		writeError(w, h.log(), err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (h *AdminHandler) deleteProduct(w http.ResponseWriter, r *http.Request) {
	id, err := intParam(r, "id")
	if err != nil {
		writeError(w, h.log(), err)
		return
	}
	if err := h.Inventory.Delete(r.Context(), id, confirmed(r)); err != nil {
		writeError(w, h.log(), err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *AdminHandler) log() *zap.Logger { return loggerOr(h.Log) }
