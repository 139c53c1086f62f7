package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/lehigh-university-libraries/reconciler/internal/records"
	"github.com/lehigh-university-libraries/reconciler/internal/resolve"
)

// HandleResolve runs one resolution pass over a JSON array of raw
// records and returns the full result. The batch is retained in memory
// for later inspection through /api/batches.
func (h *Handler) HandleResolve(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		h.writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var raws []records.RawRecord
	if err := json.NewDecoder(r.Body).Decode(&raws); err != nil {
		h.writeError(w, "Invalid JSON: "+err.Error(), http.StatusBadRequest)
		return
	}

	result, err := h.engine.Resolve(r.Context(), raws)
	if err != nil {
		h.writeError(w, "Resolution failed: "+err.Error(), http.StatusInternalServerError)
		return
	}

	h.batchStore.Set(result.BatchID, result)
	h.writeJSON(w, result)
}

// HandleBatches lists retained batch results.
func (h *Handler) HandleBatches(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case "GET":
		batches := h.batchStore.GetAll()
		batchList := make([]*resolve.Result, 0, len(batches))
		for _, result := range batches {
			batchList = append(batchList, result)
		}
		h.writeJSON(w, batchList)
	default:
		h.writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

// HandleBatchDetail returns or deletes one retained batch.
func (h *Handler) HandleBatchDetail(w http.ResponseWriter, r *http.Request) {
	batchID := strings.TrimPrefix(r.URL.Path, "/api/batches/")

	result, ok := h.getBatchOrError(w, batchID)
	if !ok {
		return
	}

	switch r.Method {
	case "GET":
		h.writeJSON(w, result)
	case "DELETE":
		h.batchStore.Delete(batchID)
		w.WriteHeader(http.StatusNoContent)
	default:
		h.writeError(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}
