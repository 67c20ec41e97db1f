package handler

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/google/uuid"

	"github.com/wildfiresync/gendersync/internal/api/apierr"
	"github.com/wildfiresync/gendersync/internal/api/request"
	"github.com/wildfiresync/gendersync/internal/api/response"
	syncsvc "github.com/wildfiresync/gendersync/internal/services/sync"
)

// Bulk query limits, matching what a client rendering nearby players needs
const (
	bulkQueryMin = 2
	bulkQueryMax = 20
)

// QueryHandler handles the read-only endpoints: bulk query, stats, health
type QueryHandler struct {
	coordinator *syncsvc.Coordinator
}

// NewQueryHandler creates a new query handler
func NewQueryHandler(coordinator *syncsvc.Coordinator) *QueryHandler {
	return &QueryHandler{
		coordinator: coordinator,
	}
}

// Bulk handles POST /api/v2/bulk-query
func (h *QueryHandler) Bulk(w http.ResponseWriter, r *http.Request) {
	var req request.BulkQueryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apierr.WriteError(w, apierr.NewInvalidRequestError("invalid request body"))
		return
	}

	// Deduplicate before applying the limits so a padded request can't
	// sneak past them
	seen := make(map[uuid.UUID]struct{}, len(req))
	ids := make([]uuid.UUID, 0, len(req))
	for _, raw := range req {
		id, err := uuid.Parse(raw)
		if err != nil {
			apierr.WriteError(w, apierr.NewInvalidRequestError(fmt.Sprintf("invalid player UUID %q", raw)))
			return
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}

	if len(ids) < bulkQueryMin || len(ids) > bulkQueryMax {
		apierr.WriteError(w, apierr.NewInvalidRequestError(
			fmt.Sprintf("this route requires between %d-%d unique UUIDs", bulkQueryMin, bulkQueryMax)))
		return
	}

	snaps, err := h.coordinator.BulkFetch(r.Context(), ids)
	if err != nil {
		apierr.WriteError(w, err)
		return
	}

	users := make(map[string]response.Profile, len(snaps))
	for id, snap := range snaps {
		users[id.String()] = response.ProfileFromSnapshot(snap)
	}

	response.JSON(w, http.StatusOK, response.BulkQueryResponse{
		Success: true,
		Users:   users,
	})
}

// Stats handles GET /api/v2/stats
func (h *QueryHandler) Stats(w http.ResponseWriter, r *http.Request) {
	count, now, err := h.coordinator.Stats(r.Context())
	if err != nil {
		apierr.WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.StatsResponse{
		SyncedUsers: count,
		Timestamp:   now,
	})
}

// Health handles GET /api/v2/health
func (h *QueryHandler) Health(w http.ResponseWriter, r *http.Request) {
	if err := h.coordinator.Healthy(r.Context()); err != nil {
		apierr.WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.HealthResponse{Status: "ok"})
}
