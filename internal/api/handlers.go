package api

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/example/checkout-saga/internal/buyer"
	"github.com/example/checkout-saga/internal/checkout"
	"github.com/example/checkout-saga/internal/inventory"
)

// Ledger is the inventory surface the HTTP layer reads and administers.
// Reservation and release stay behind the checkout service.
type Ledger interface {
	GetProduct(ctx context.Context, id int64) (*inventory.Product, error)
	List(ctx context.Context) ([]inventory.Product, error)
	Add(ctx context.Context, name string, qty int, price float64) (int64, error)
}

// Coordinator runs one checkout saga.
type Coordinator interface {
	Checkout(ctx context.Context, req checkout.Request) (checkout.State, error)
}

type Handlers struct {
	coordinator Coordinator
	ledger      Ledger
}

func NewHandlers(coordinator Coordinator, ledger Ledger) *Handlers {
	return &Handlers{
		coordinator: coordinator,
		ledger:      ledger,
	}
}

// Checkout accepts a checkout request and reports the saga outcome. The
// response distinguishes stock problems from buyer problems; downstream
// payment and notification outcomes are invisible here.
func (h *Handlers) Checkout(w http.ResponseWriter, r *http.Request) {
	var req checkout.Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if req.Qty <= 0 {
		http.Error(w, "Quantity must be positive", http.StatusBadRequest)
		return
	}

	state, err := h.coordinator.Checkout(r.Context(), req)
	switch {
	case err == nil:
		respondJSON(w, http.StatusOK, map[string]string{
			"status": string(state),
		})
	case errors.Is(err, inventory.ErrInsufficientStock):
		http.Error(w, "Not enough quantity", http.StatusBadRequest)
	case errors.Is(err, inventory.ErrNotFound):
		http.Error(w, "Product not found", http.StatusNotFound)
	case errors.Is(err, buyer.ErrNotFound):
		http.Error(w, "Buyer not found", http.StatusNotFound)
	default:
		log.Printf("[Checkout] Error checking out product %d: %v", req.ProductID, err)
		http.Error(w, "Error checking out product", http.StatusInternalServerError)
	}
}

func (h *Handlers) AddProduct(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name  string  `json:"name"`
		Qty   int     `json:"qty"`
		Price float64 `json:"price"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	id, err := h.ledger.Add(r.Context(), req.Name, req.Qty, req.Price)
	if errors.Is(err, inventory.ErrInvalidInput) {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	if err != nil {
		log.Printf("[Checkout] Failed to add product: %v", err)
		http.Error(w, "Failed to add product", http.StatusInternalServerError)
		return
	}

	respondJSON(w, http.StatusCreated, map[string]int64{"id": id})
}

func (h *Handlers) GetProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.ledger.List(r.Context())
	if err != nil {
		log.Printf("[Checkout] Error fetching products: %v", err)
		http.Error(w, "Error fetching products", http.StatusInternalServerError)
		return
	}
	if products == nil {
		products = []inventory.Product{}
	}
	respondJSON(w, http.StatusOK, products)
}

func (h *Handlers) GetProduct(w http.ResponseWriter, r *http.Request) {
	idStr := extractPathParam(r.URL.Path, "/products/")
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil {
		http.Error(w, "Invalid product id", http.StatusBadRequest)
		return
	}

	product, err := h.ledger.GetProduct(r.Context(), id)
	if errors.Is(err, inventory.ErrNotFound) {
		http.Error(w, "Product not found", http.StatusNotFound)
		return
	}
	if err != nil {
		log.Printf("[Checkout] Error fetching product %d: %v", id, err)
		http.Error(w, "Error fetching product", http.StatusInternalServerError)
		return
	}
	respondJSON(w, http.StatusOK, product)
}

func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func extractPathParam(path, prefix string) string {
	return strings.TrimPrefix(path, prefix)
}
