package server

import (
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"github.com/vanshika/paymybuddy/backend/internal/domain"
)

type addFriendRequest struct {
	Email string `json:"email"`
}

type createConnectionRequest struct {
	UserID       string `json:"userId"`
	ConnectionID string `json:"connectionId"`
}

func (h *APIHandlers) listFriends(w http.ResponseWriter, r *http.Request) {
	caller, ok := h.caller(w, r)
	if !ok {
		return
	}

	friends, err := h.connections.ListFriends(r.Context(), caller)
	if err != nil {
		h.writeServiceError(w, err, "list friends")
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"data": toUserResponses(friends),
	})
}

func (h *APIHandlers) addFriend(w http.ResponseWriter, r *http.Request) {
	caller, ok := h.caller(w, r)
	if !ok {
		return
	}

	var payload addFriendRequest
	if err := decodeJSON(r, &payload); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if strings.TrimSpace(payload.Email) == "" {
		writeError(w, http.StatusBadRequest, "email is required")
		return
	}

	conn, err := h.connections.AddFriendByEmail(r.Context(), caller, payload.Email)
	if err != nil {
		h.writeServiceError(w, err, "add friend")
		return
	}
	respondJSON(w, http.StatusCreated, toConnectionResponse(conn))
}

func (h *APIHandlers) removeFriend(w http.ResponseWriter, r *http.Request) {
	caller, ok := h.caller(w, r)
	if !ok {
		return
	}

	if err := h.connections.RemoveFriend(r.Context(), caller, mux.Vars(r)["id"]); err != nil {
		h.writeServiceError(w, err, "remove friend")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *APIHandlers) createConnection(w http.ResponseWriter, r *http.Request) {
	var payload createConnectionRequest
	if err := decodeJSON(r, &payload); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if payload.UserID == "" || payload.ConnectionID == "" {
		writeError(w, http.StatusBadRequest, "userId and connectionId are required")
		return
	}

	conn, err := h.connections.CreateConnection(r.Context(), payload.UserID, payload.ConnectionID)
	if err != nil {
		h.writeServiceError(w, err, "create connection")
		return
	}
	respondJSON(w, http.StatusCreated, toConnectionResponse(conn))
}

func (h *APIHandlers) connectionsByUser(w http.ResponseWriter, r *http.Request) {
	conns, err := h.connections.GetConnectionsByUser(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		h.writeServiceError(w, err, "list connections by user")
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"data": toConnectionResponses(conns),
	})
}

func (h *APIHandlers) connectionsByConnection(w http.ResponseWriter, r *http.Request) {
	conns, err := h.connections.GetConnectionsByConnection(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		h.writeServiceError(w, err, "list connections by connection")
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"data": toConnectionResponses(conns),
	})
}

// deleteConnection only removes edges owned by the caller.
func (h *APIHandlers) deleteConnection(w http.ResponseWriter, r *http.Request) {
	caller, ok := h.caller(w, r)
	if !ok {
		return
	}

	vars := mux.Vars(r)
	if vars["userId"] != caller.ID {
		writeError(w, http.StatusForbidden, "cannot change another user's connections")
		return
	}
	key := domain.ConnectionKey{UserID: caller.ID, ConnectionID: vars["connectionId"]}
	if err := h.connections.DeleteConnection(r.Context(), key); err != nil {
		h.writeServiceError(w, err, "delete connection")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
