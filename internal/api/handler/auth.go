package handler

import (
	"net/http"

	"github.com/wildfiresync/gendersync/internal/api/apierr"
	"github.com/wildfiresync/gendersync/internal/api/response"
	"github.com/wildfiresync/gendersync/internal/services/auth"
)

// AuthHandler handles token issuance
type AuthHandler struct {
	authService *auth.Service
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(authService *auth.Service) *AuthHandler {
	return &AuthHandler{
		authService: authService,
	}
}

// Issue handles GET /api/v2/auth?serverId=...&username=...
//
// The client must first perform the join-server handshake with the session
// servers; the returned token is then used as the bearer credential on the
// sync endpoints until it expires.
func (h *AuthHandler) Issue(w http.ResponseWriter, r *http.Request) {
	username := r.URL.Query().Get("username")
	serverID := r.URL.Query().Get("serverId")

	if username == "" || serverID == "" {
		apierr.WriteError(w, apierr.NewInvalidRequestError("username and serverId query parameters are required"))
		return
	}

	token, err := h.authService.Issue(r.Context(), username, serverID)
	if err != nil {
		apierr.WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.AuthResponseFromToken(token))
}
