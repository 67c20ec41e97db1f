package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/wildfiresync/gendersync/internal/api/apierr"
	"github.com/wildfiresync/gendersync/internal/api/middleware"
	"github.com/wildfiresync/gendersync/internal/api/request"
	"github.com/wildfiresync/gendersync/internal/api/response"
	"github.com/wildfiresync/gendersync/internal/model"
	syncsvc "github.com/wildfiresync/gendersync/internal/services/sync"
)

// SyncHandler handles the per-player sync endpoints
type SyncHandler struct {
	coordinator *syncsvc.Coordinator
}

// NewSyncHandler creates a new sync handler
func NewSyncHandler(coordinator *syncsvc.Coordinator) *SyncHandler {
	return &SyncHandler{
		coordinator: coordinator,
	}
}

// Get handles GET /api/v2/sync/{uuid}
func (h *SyncHandler) Get(w http.ResponseWriter, r *http.Request) {
	playerID, err := playerIDFromPath(r)
	if err != nil {
		apierr.WriteError(w, err)
		return
	}

	snap, err := h.coordinator.Fetch(r.Context(), playerID, middleware.GetToken(r.Context()))
	if err != nil {
		apierr.WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.ProfileFromSnapshot(snap))
}

// Push handles POST /api/v2/sync/{uuid}
func (h *SyncHandler) Push(w http.ResponseWriter, r *http.Request) {
	playerID, err := playerIDFromPath(r)
	if err != nil {
		apierr.WriteError(w, err)
		return
	}

	var req request.SyncRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		apierr.WriteError(w, apierr.NewUnprocessableError("invalid request body"))
		return
	}

	snap, err := h.coordinator.Sync(r.Context(), model.SyncRequest{
		PlayerID:    playerID,
		Token:       middleware.GetToken(r.Context()),
		BaseVersion: req.BaseVersion,
		Payload:     req.Payload,
		DeviceHint:  req.DeviceHint,
	})
	if err != nil {
		h.writeRejection(w, snap, err)
		return
	}

	response.JSON(w, http.StatusOK, response.ProfileFromSnapshot(snap))
}

// writeRejection writes errors from a push. Rejections that carry the
// authoritative snapshot include it in the body so a naive client can
// re-base and retry without another fetch.
func (h *SyncHandler) writeRejection(w http.ResponseWriter, snap *model.ProfileSnapshot, err error) {
	rejected := errors.Is(err, model.ErrVersionConflict) ||
		errors.Is(err, model.ErrInvalidBaseVersion) ||
		errors.Is(err, model.ErrPayloadTooLarge)

	if rejected && snap != nil {
		response.JSON(w, apierr.Status(err), response.RejectionFromSnapshot(err, snap))
		return
	}

	apierr.WriteError(w, err)
}

// playerIDFromPath parses the {uuid} path variable
func playerIDFromPath(r *http.Request) (uuid.UUID, error) {
	raw := mux.Vars(r)["uuid"]
	playerID, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, apierr.NewInvalidRequestError("invalid player UUID")
	}
	return playerID, nil
}
