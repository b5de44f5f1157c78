package server

import (
	"net/http"

	"github.com/gorilla/mux"

	"github.com/vanshika/paymybuddy/backend/internal/service"
)

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token     string       `json:"token"`
	ExpiresAt string       `json:"expiresAt"`
	User      userResponse `json:"user"`
}

func (h *APIHandlers) registerUser(w http.ResponseWriter, r *http.Request) {
	var payload service.RegisterInput
	if err := decodeJSON(r, &payload); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	user, err := h.users.Register(r.Context(), payload)
	if err != nil {
		h.writeServiceError(w, err, "register user")
		return
	}

	h.logger.Info("user registered", "userId", user.ID)
	respondJSON(w, http.StatusCreated, toUserResponse(user))
}

func (h *APIHandlers) login(w http.ResponseWriter, r *http.Request) {
	var payload loginRequest
	if err := decodeJSON(r, &payload); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	user, err := h.users.Authenticate(r.Context(), payload.Email, payload.Password)
	if err != nil {
		h.writeServiceError(w, err, "authenticate")
		return
	}

	token, expiresAt, err := h.tokens.Issue(user.Email)
	if err != nil {
		h.logger.Error("failed to issue token", "error", err, "userId", user.ID)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	respondJSON(w, http.StatusOK, loginResponse{
		Token:     token,
		ExpiresAt: formatTimestamp(expiresAt),
		User:      toUserResponse(user),
	})
}

func (h *APIHandlers) me(w http.ResponseWriter, r *http.Request) {
	caller, ok := h.caller(w, r)
	if !ok {
		return
	}
	respondJSON(w, http.StatusOK, toUserResponse(caller))
}

func (h *APIHandlers) listUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.users.GetAllUsers(r.Context())
	if err != nil {
		h.writeServiceError(w, err, "list users")
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"data": toUserResponses(users),
	})
}

func (h *APIHandlers) getUser(w http.ResponseWriter, r *http.Request) {
	user, err := h.users.GetUserByID(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		h.writeServiceError(w, err, "get user")
		return
	}
	respondJSON(w, http.StatusOK, toUserResponse(user))
}
