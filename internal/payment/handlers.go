package payment

import (
	"encoding/json"
	"log"
	"net/http"
)

// NewRouter exposes the read-only payments listing.
func NewRouter(store *Store) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/payments", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		records, err := store.List(r.Context())
		if err != nil {
			log.Printf("[Payment] Error fetching payments: %v", err)
			http.Error(w, "Error fetching payments", http.StatusInternalServerError)
			return
		}
		if records == nil {
			records = []Record{}
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(records)
	})

	return mux
}
