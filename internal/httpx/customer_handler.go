package httpx

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/Menelao6/inventory-manager/internal/apperr"
	"github.com/Menelao6/inventory-manager/internal/cart"
	"github.com/Menelao6/inventory-manager/internal/dashboard"
	"github.com/Menelao6/inventory-manager/internal/orders"
	"github.com/Menelao6/inventory-manager/internal/store"
	"github.com/Menelao6/inventory-manager/internal/workflow"
)

type Catalog interface {
	ListProducts(ctx context.Context) ([]orders.Product, error)
	GetProduct(ctx context.Context, id int) (orders.Product, error)
}

type CartStore interface {
	Load(ctx context.Context, session string) (*cart.Cart, error)
	Save(ctx context.Context, session string, c *cart.Cart) error
	LockCheckout(ctx context.Context, session string) (unlock func(), err error)
}

type CustomerHandler struct {
	Catalog Catalog
	Carts   CartStore
	Placer  *workflow.Placer
	Log     *zap.Logger
}

type addItemReq struct {
	ProductID int `json:"product_id"`
}

type cartView struct {
	Items []cart.Item `json:"items"`
	Count int         `json:"count"`
	Total float64     `json:"total"`
}

type checkoutResp struct {
	Result workflow.PlacementResult `json:"result"`
	Cart   cartView                 `json:"cart"`
}

func viewOf(c *cart.Cart) cartView {
	items := c.Items()
	if items == nil {
		items = []cart.Item{}
	}
	return cartView{Items: items, Count: c.Count(), Total: c.Total()}
}

func (h *CustomerHandler) Register(r chi.Router) {
	r.Route("/customer", func(r chi.Router) {
		r.Get("/products", h.products)
		r.Get("/cart", h.getCart)
		r.Post("/cart/items", h.addItem)
		r.Post("/cart/items/{productID}/increase", h.mutate((*cart.Cart).Increase))
		r.Post("/cart/items/{productID}/decrease", h.mutate((*cart.Cart).Decrease))
		r.Delete("/cart/items/{productID}", h.mutate((*cart.Cart).Remove))
		r.Delete("/cart", h.clearCart)
		r.Post("/checkout", h.checkout)
	})
}

func (h *CustomerHandler) products(w http.ResponseWriter, r *http.Request) {
	ps, err := h.Catalog.ListProducts(r.Context())
	if err != nil {
		writeError(w, h.log(), apperr.Remote(err, "failed to load products"))
		return
	}
	q := r.URL.Query()
	writeJSON(w, http.StatusOK, dashboard.Browse(ps, q.Get("category"), q.Get("q")))
}

func (h *CustomerHandler) getCart(w http.ResponseWriter, r *http.Request) {
	sid := session(w, r)
	c, err := h.Carts.Load(r.Context(), sid)
	if err != nil {
		writeError(w, h.log(), err)
		return
	}
	writeJSON(w, http.StatusOK, viewOf(c))
}

// addItem puts one unit of a product in the cart, using the product as
// the store has it now.
func (h *CustomerHandler) addItem(w http.ResponseWriter, r *http.Request) {
	sid := session(w, r)
	var req addItemReq
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, h.log(), err)
		return
	}
	if req.ProductID <= 0 {
		writeError(w, h.log(), apperr.Validation("missing product_id"))
		return
	}

	p, err := h.Catalog.GetProduct(r.Context(), req.ProductID)
	if errors.Is(err, store.ErrNotFound) {
		writeError(w, h.log(), apperr.NotFoundf("product %d not found", req.ProductID))
		return
	}
	if err != nil {
		writeError(w, h.log(), apperr.Remote(err, "failed to load product %d", req.ProductID))
		return
	}

	h.update(w, r, sid, func(c *cart.Cart) error { return c.Add(p) })
}

func (h *CustomerHandler) mutate(op func(*cart.Cart, int) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sid := session(w, r)
		id, err := intParam(r, "productID")
		if err != nil {
			writeError(w, h.log(), err)
			return
		}
		h.update(w, r, sid, func(c *cart.Cart) error { return op(c, id) })
	}
}

func (h *CustomerHandler) clearCart(w http.ResponseWriter, r *http.Request) {
	sid := session(w, r)
	ok := confirmed(r)
	h.update(w, r, sid, func(c *cart.Cart) error { return c.Clear(ok) })
}

// update loads the session cart, applies fn and saves the result. A
// refused change leaves the stored cart as it was.
func (h *CustomerHandler) update(w http.ResponseWriter, r *http.Request, sid string, fn func(*cart.Cart) error) {
	c, err := h.Carts.Load(r.Context(), sid)
	if err != nil {
		writeError(w, h.log(), err)
		return
	}
	if err := fn(c); err != nil {
		writeError(w, h.log(), err)
		return
	}
	if err := h.Carts.Save(r.Context(), sid, c); err != nil {
		writeError(w, h.log(), err)
		return
	}
	writeJSON(w, http.StatusOK, viewOf(c))
}

// checkout places the whole cart. 200 means every item became an order;
// 207 means some did not and the per-item outcomes say which.
func (h *CustomerHandler) checkout(w http.ResponseWriter, r *http.Request) {
	sid := session(w, r)
	log := h.log().With(zap.String("session", sid))

	unlock, err := h.Carts.LockCheckout(r.Context(), sid)
	if err != nil {
		writeError(w, log, err)
		return
	}
	defer unlock()

	c, err := h.Carts.Load(r.Context(), sid)
	if err != nil {
		writeError(w, log, err)
		return
	}
	res, err := h.Placer.Place(r.Context(), c)
	if err != nil {
		writeError(w, log, err)
		return
	}
	// Placed items are gone from c whatever happened to the others.
	if err := h.Carts.Save(r.Context(), sid, c); err != nil {
		log.Error("save cart after checkout", zap.Error(err))
	}

	code := http.StatusOK
	if !res.Succeeded() {
		code = http.StatusMultiStatus
	}
	writeJSON(w, code, checkoutResp{Result: res, Cart: viewOf(c)})
}

func (h *CustomerHandler) log() *zap.Logger { return loggerOr(h.Log) }
