// Package storetest provides an in-memory resource store served over
// httptest, answering the same routes as the real backend.
package storetest

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sort"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/Menelao6/inventory-manager/internal/orders"
)

type Server struct {
	*httptest.Server

	mu       sync.Mutex
	products map[int]orders.Product
	nextID   int
	orders   map[string]orders.Order
	seq      []string
	calls    []string
	failures map[string]int
}

// New starts a store seeded with products and registers its shutdown with t.
func New(t testing.TB, products ...orders.Product) *Server {
	s := &Server{
		products: map[int]orders.Product{},
		orders:   map[string]orders.Order{},
		failures: map[string]int{},
		nextID:   1,
	}
	for _, p := range products {
		s.PutProduct(p)
	}

	r := chi.NewRouter()
	r.Use(s.record)
	r.Get("/products", s.listProducts)
	r.Post("/products", s.createProduct)
	r.Get("/products/{id}", s.getProduct)
	r.Patch("/products/{id}", s.patchProduct)
	r.Delete("/products/{id}", s.deleteProduct)
	r.Get("/orders", s.listOrders)
	r.Post("/orders", s.createOrder)
	r.Get("/orders/{id}", s.getOrder)
	r.Put("/orders/{id}", s.putOrder)
	r.Delete("/orders/{id}", s.deleteOrder)

	s.Server = httptest.NewServer(r)
	t.Cleanup(s.Close)
	return s
}

// Fail makes the next n requests matching "METHOD /path" answer code 500.
func (s *Server) Fail(method, path string, n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures[method+" "+path] += n
}

// Calls lists every request received, as "METHOD /path".
func (s *Server) Calls() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.calls...)
}

// CountCalls counts requests with the given method whose path starts with prefix.
func (s *Server) CountCalls(method, prefix string) int {
	n := 0
	for _, c := range s.Calls() {
		if strings.HasPrefix(c, method+" "+prefix) {
			n++
		}
	}
	return n
}

func (s *Server) PutProduct(p orders.Product) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if p.ID == 0 {
		p.ID = s.nextID
	}
	if p.ID >= s.nextID {
		s.nextID = p.ID + 1
	}
	s.products[p.ID] = p
}

func (s *Server) PutOrder(o orders.Order) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.orders[o.ID]; !ok {
		s.seq = append(s.seq, o.ID)
	}
	s.orders[o.ID] = o
}

func (s *Server) Product(id int) (orders.Product, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.products[id]
	return p, ok
}

func (s *Server) Order(id string) (orders.Order, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.orders[id]
	return o, ok
}

func (s *Server) Orders() []orders.Order {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]orders.Order, 0, len(s.seq))
	for _, id := range s.seq {
		out = append(out, s.orders[id])
	}
	return out
}

func (s *Server) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := r.Method + " " + r.URL.Path
		s.mu.Lock()
		s.calls = append(s.calls, key)
		fail := s.failures[key] > 0
		if fail {
			s.failures[key]--
		}
		s.mu.Unlock()
		if fail {
			http.Error(w, "injected failure", http.StatusInternalServerError)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func productID(r *http.Request) (int, bool) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	return id, err == nil
}

func (s *Server) listProducts(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	out := make([]orders.Product, 0, len(s.products))
	for _, p := range s.products {
		out = append(out, p)
	}
	s.mu.Unlock()
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) createProduct(w http.ResponseWriter, r *http.Request) {
	var fields map[string]json.RawMessage
	if err := json.NewDecoder(r.Body).Decode(&fields); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	b, _ := json.Marshal(fields)
	var p orders.Product
	if err := json.Unmarshal(b, &p); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	// Like json-server, a client-sent id is kept as-is, zero included.
	_, sentID := fields["id"]
	s.mu.Lock()
	if !sentID {
		p.ID = s.nextID
	}
	_, taken := s.products[p.ID]
	s.mu.Unlock()
	if taken {
		http.Error(w, "duplicate id", http.StatusInternalServerError)
		return
	}
	s.PutProduct(p)
	writeJSON(w, http.StatusCreated, p)
}

func (s *Server) getProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := productID(r)
	p, found := s.Product(id)
	if !ok || !found {
		http.NotFound(w, r)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *Server) patchProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := productID(r)
	p, found := s.Product(id)
	if !ok || !found {
		http.NotFound(w, r)
		return
	}
	var patch map[string]json.RawMessage
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	merged, err := merge(p, patch)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	merged.ID = id
	s.PutProduct(merged)
	writeJSON(w, http.StatusOK, merged)
}

func merge(p orders.Product, patch map[string]json.RawMessage) (orders.Product, error) {
	b, err := json.Marshal(p)
	if err != nil {
		return p, err
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(b, &fields); err != nil {
		return p, err
	}
	for k, v := range patch {
		fields[k] = v
	}
	b, err = json.Marshal(fields)
	if err != nil {
		return p, err
	}
	var out orders.Product
	err = json.Unmarshal(b, &out)
	return out, err
}

func (s *Server) deleteProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := productID(r)
	s.mu.Lock()
	_, found := s.products[id]
	delete(s.products, id)
	s.mu.Unlock()
	if !ok || !found {
		http.NotFound(w, r)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{})
}

func (s *Server) listOrders(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.Orders())
}

func (s *Server) createOrder(w http.ResponseWriter, r *http.Request) {
	var o orders.Order
	if err := json.NewDecoder(r.Body).Decode(&o); err != nil || o.ID == "" {
		http.Error(w, "invalid order", http.StatusBadRequest)
		return
	}
	if _, exists := s.Order(o.ID); exists {
		http.Error(w, "duplicate id", http.StatusInternalServerError)
		return
	}
	s.PutOrder(o)
	writeJSON(w, http.StatusCreated, o)
}

func (s *Server) getOrder(w http.ResponseWriter, r *http.Request) {
	o, found := s.Order(chi.URLParam(r, "id"))
	if !found {
		http.NotFound(w, r)
		return
	}
	writeJSON(w, http.StatusOK, o)
}

func (s *Server) putOrder(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if _, found := s.Order(id); !found {
		http.NotFound(w, r)
		return
	}
	var o orders.Order
	if err := json.NewDecoder(r.Body).Decode(&o); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	o.ID = id
	s.PutOrder(o)
	writeJSON(w, http.StatusOK, o)
}

func (s *Server) deleteOrder(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	s.mu.Lock()
	_, found := s.orders[id]
	if found {
		delete(s.orders, id)
		for i, v := range s.seq {
			if v == id {
				s.seq = append(s.seq[:i], s.seq[i+1:]...)
				break
			}
		}
	}
	s.mu.Unlock()
	if !found {
		http.NotFound(w, r)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{})
}
