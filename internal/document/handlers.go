package document

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/quotelab/backend-quotes/internal/common"
)

// Handler exposes the export endpoint. The actual rendering happens on the
// worker; the endpoint only enqueues.
type Handler struct {
	Queue Queue
}

// Routes mounts the export endpoint on a chi router.
func (h *Handler) Routes(r chi.Router) {
	r.Post("/v1/quotes/{id}/export", h.Export)
}

// Export enqueues an export job for the quote.
func (h *Handler) Export(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid quote id", nil)
		return
	}
	if err := h.Queue.Enqueue(r.Context(), ExportJob{QuoteID: id}); err != nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "unable to enqueue export", nil)
		return
	}
	common.JSON(w, http.StatusAccepted, map[string]any{
		"data": map[string]any{"quoteId": id, "status": "queued"},
	})
}
