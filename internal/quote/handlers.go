package quote

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	validator "github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/quotelab/backend-quotes/internal/common"
	"github.com/quotelab/backend-quotes/internal/pricing"
)

// Handler wires the quote service to HTTP.
type Handler struct {
	Svc *Service
}

// Routes mounts the quote endpoints on a chi router.
func (h *Handler) Routes(r chi.Router) {
	r.Post("/v1/quotes/preview", h.Preview)
	r.Post("/v1/quotes", h.Create)
	r.Get("/v1/quotes/{id}", h.Get)
	r.Put("/v1/quotes/{id}/columns/{idx}", h.EditColumn)
}

// Preview computes a comparison column set without persisting it.
func (h *Handler) Preview(w http.ResponseWriter, r *http.Request) {
	if h.Svc == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "quote service not configured", nil)
		return
	}
	var scenario pricing.Scenario
	if err := json.NewDecoder(r.Body).Decode(&scenario); err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid scenario payload", nil)
		return
	}
	proposal, err := h.Svc.Preview(r.Context(), scenario)
	if err != nil {
		h.writeError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": proposal})
}

// Create persists a quote for sharing and later export.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	if h.Svc == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "quote service not configured", nil)
		return
	}
	var payload struct {
		Reference string           `json:"reference"`
		Scenario  pricing.Scenario `json:"scenario"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid quote payload", nil)
		return
	}
	rec, err := h.Svc.Create(r.Context(), payload.Reference, payload.Scenario)
	if err != nil {
		h.writeError(w, err)
		return
	}
	common.JSON(w, http.StatusCreated, map[string]any{"data": rec})
}

// Get returns a persisted quote.
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid quote id", nil)
		return
	}
	rec, err := h.Svc.Get(r.Context(), id)
	if err != nil {
		h.writeError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": rec})
}

// EditColumn rewrites one comparison column from an override set.
func (h *Handler) EditColumn(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid quote id", nil)
		return
	}
	idx, err := strconv.Atoi(strings.TrimSpace(chi.URLParam(r, "idx")))
	if err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid column index", nil)
		return
	}
	var edit ColumnEdit
	if err := json.NewDecoder(r.Body).Decode(&edit); err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid column edit payload", nil)
		return
	}
	rec, err := h.Svc.EditColumn(r.Context(), id, idx, edit)
	if err != nil {
		h.writeError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{"data": rec})
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	var refErr *pricing.ReferenceError
	var validationErrs validator.ValidationErrors
	switch {
	case errors.Is(err, ErrNotFound):
		common.JSONError(w, http.StatusNotFound, "NOT_FOUND", "quote not found", nil)
	case errors.Is(err, ErrColumnIndex):
		common.JSONError(w, http.StatusUnprocessableEntity, "COLUMN_INDEX", "column index out of range", nil)
	case errors.Is(err, ErrDuplicateReference):
		common.JSONError(w, http.StatusConflict, "DUPLICATE_REFERENCE", "a quote with this reference already exists", nil)
	case errors.As(err, &refErr):
		common.JSONError(w, http.StatusUnprocessableEntity, "UNKNOWN_REFERENCE", refErr.Error(), map[string]string{
			"kind": refErr.Kind,
			"key":  refErr.Key,
		})
	case errors.As(err, &validationErrs):
		common.JSONError(w, http.StatusBadRequest, "VALIDATION", "scenario failed validation", validationErrs.Error())
	default:
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "unable to process quote", nil)
	}
}
