package buyer

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"
)

type Handlers struct {
	directory *Directory
}

func NewHandlers(directory *Directory) *Handlers {
	return &Handlers{directory: directory}
}

func (h *Handlers) CreateBuyer(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name    string `json:"name"`
		Address string `json:"address"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	id, err := h.directory.Create(r.Context(), req.Name, req.Address)
	if err != nil {
		log.Printf("[BuyerDir] Failed to register buyer: %v", err)
		http.Error(w, "Failed to register buyer", http.StatusInternalServerError)
		return
	}

	respondJSON(w, http.StatusCreated, map[string]int64{"id": id})
}

func (h *Handlers) GetBuyers(w http.ResponseWriter, r *http.Request) {
	buyers, err := h.directory.List(r.Context())
	if err != nil {
		log.Printf("[BuyerDir] Error fetching buyers: %v", err)
		http.Error(w, "Error fetching buyers", http.StatusInternalServerError)
		return
	}
	if buyers == nil {
		buyers = []Buyer{}
	}
	respondJSON(w, http.StatusOK, buyers)
}

func (h *Handlers) GetBuyer(w http.ResponseWriter, r *http.Request) {
	idStr := strings.TrimPrefix(r.URL.Path, "/buyers/")
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil {
		http.Error(w, "Invalid buyer id", http.StatusBadRequest)
		return
	}

	b, err := h.directory.FindByID(r.Context(), id)
	if errors.Is(err, ErrNotFound) {
		http.Error(w, "Buyer not found", http.StatusNotFound)
		return
	}
	if err != nil {
		log.Printf("[BuyerDir] Error fetching buyer %d: %v", id, err)
		http.Error(w, "Error fetching buyer", http.StatusInternalServerError)
		return
	}
	respondJSON(w, http.StatusOK, b)
}

// NewRouter wires the buyer directory HTTP surface.
func NewRouter(h *Handlers) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/buyers", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			h.GetBuyers(w, r)
		case http.MethodPost:
			h.CreateBuyer(w, r)
		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
	})

	mux.HandleFunc("/buyers/", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			h.GetBuyer(w, r)
		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
	})

	return mux
}

func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
