package ratetable

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/quotelab/backend-quotes/internal/app"
	"github.com/quotelab/backend-quotes/internal/common"
	"github.com/quotelab/backend-quotes/internal/events"
	"github.com/quotelab/backend-quotes/internal/pricing"
)

type publisher interface {
	NextVersion(ctx context.Context) (int64, error)
	Publish(ctx context.Context, table *pricing.Table, publishedBy string) error
}

// Handler exposes the administrative rate-table surface.
type Handler struct {
	Svc        *Service
	Publisher  publisher
	Bus        *events.Bus
	AdminToken string
}

// Routes mounts the rate-table endpoints on a chi router.
func (h *Handler) Routes(r chi.Router) {
	r.Get("/v1/ratetable/version", h.Version)
	r.Post("/v1/admin/ratetable", h.Publish)
}

// Version reports the latest published snapshot version.
func (h *Handler) Version(w http.ResponseWriter, r *http.Request) {
	table, err := h.Svc.Snapshot(r.Context())
	if err != nil {
		if errors.Is(err, ErrNoSnapshot) {
			common.JSONError(w, http.StatusNotFound, "NOT_FOUND", "no rate table published yet", nil)
			return
		}
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "unable to resolve rate table", nil)
		return
	}
	common.JSON(w, http.StatusOK, map[string]any{
		"data": map[string]any{"version": table.Version},
	})
}

// Publish validates and stores a new snapshot version. Published versions
// are immutable; fixing a price always means publishing the next version.
func (h *Handler) Publish(w http.ResponseWriter, r *http.Request) {
	if !h.authorized(r) {
		common.JSONError(w, http.StatusUnauthorized, "UNAUTHORIZED", "admin token required", nil)
		return
	}
	var payload struct {
		Table       pricing.Table `json:"table"`
		PublishedBy string        `json:"publishedBy"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		common.JSONError(w, http.StatusBadRequest, "BAD_REQUEST", "invalid rate table payload", nil)
		return
	}
	version, err := h.Publisher.NextVersion(r.Context())
	if err != nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "unable to allocate version", nil)
		return
	}
	payload.Table.Version = version
	if err := payload.Table.Validate(); err != nil {
		common.JSONError(w, http.StatusUnprocessableEntity, "INVALID_TABLE", err.Error(), nil)
		return
	}
	if err := h.Publisher.Publish(r.Context(), &payload.Table, strings.TrimSpace(payload.PublishedBy)); err != nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "unable to publish rate table", nil)
		return
	}
	if h.Bus != nil {
		_, _ = h.Bus.Emit(r.Context(), events.TopicRateTablePublished, uuid.New(), map[string]any{
			"version":     version,
			"publishedBy": payload.PublishedBy,
		})
	}
	common.JSON(w, http.StatusCreated, map[string]any{
		"data": map[string]any{"version": version},
	})
}

// authorized accepts the configured admin token either as plaintext or as an
// argon2id hash, so deployments never have to keep the raw token in the
// environment.
func (h *Handler) authorized(r *http.Request) bool {
	if h.AdminToken == "" {
		return false
	}
	header := strings.TrimSpace(r.Header.Get("Authorization"))
	token := strings.TrimPrefix(header, "Bearer ")
	if strings.HasPrefix(h.AdminToken, "$argon2id$") {
		ok, err := app.VerifyAdminToken(token, h.AdminToken)
		return err == nil && ok
	}
	return subtle.ConstantTimeCompare([]byte(token), []byte(h.AdminToken)) == 1
}
