package server

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/vanshika/paymybuddy/backend/internal/auth"
	"github.com/vanshika/paymybuddy/backend/internal/domain"
	"github.com/vanshika/paymybuddy/backend/internal/service"
)

// APIHandlers exposes HTTP handlers for the REST API.
type APIHandlers struct {
	logger       *slog.Logger
	users        *service.UserService
	connections  *service.ConnectionService
	transactions *service.TransactionService
	tokens       *auth.TokenIssuer
	resolver     *auth.Resolver
	limiter      *CallerLimiter
}

// APIDependencies groups the collaborators of APIHandlers. Limiter may be nil.
type APIDependencies struct {
	Users        *service.UserService
	Connections  *service.ConnectionService
	Transactions *service.TransactionService
	Tokens       *auth.TokenIssuer
	Resolver     *auth.Resolver
	Limiter      *CallerLimiter
}

// NewAPIHandlers constructs an APIHandlers instance.
func NewAPIHandlers(logger *slog.Logger, deps APIDependencies) *APIHandlers {
	return &APIHandlers{
		logger:       logger,
		users:        deps.Users,
		connections:  deps.Connections,
		transactions: deps.Transactions,
		tokens:       deps.Tokens,
		resolver:     deps.Resolver,
		limiter:      deps.Limiter,
	}
}

type userResponse struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	Username  string `json:"username"`
	CreatedAt string `json:"createdAt,omitempty"`
}

type connectionResponse struct {
	UserID       string       `json:"userId"`
	ConnectionID string       `json:"connectionId"`
	User         userResponse `json:"user"`
	Connection   userResponse `json:"connection"`
	CreatedAt    string       `json:"createdAt,omitempty"`
}

type transactionResponse struct {
	ID          string       `json:"id"`
	Sender      userResponse `json:"sender"`
	Receiver    userResponse `json:"receiver"`
	Amount      string       `json:"amount"`
	Description *string      `json:"description"`
	CreatedAt   string       `json:"createdAt"`
}

func toUserResponse(u domain.User) userResponse {
	return userResponse{
		ID:        u.ID,
		Email:     u.Email,
		Username:  u.Username,
		CreatedAt: formatTimestamp(u.CreatedAt),
	}
}

func toUserResponses(users []domain.User) []userResponse {
	out := make([]userResponse, 0, len(users))
	for _, u := range users {
		out = append(out, toUserResponse(u))
	}
	return out
}

func toConnectionResponse(c domain.Connection) connectionResponse {
	return connectionResponse{
		UserID:       c.User.ID,
		ConnectionID: c.Connection.ID,
		User:         toUserResponse(c.User),
		Connection:   toUserResponse(c.Connection),
		CreatedAt:    formatTimestamp(c.CreatedAt),
	}
}

func toConnectionResponses(conns []domain.Connection) []connectionResponse {
	out := make([]connectionResponse, 0, len(conns))
	for _, c := range conns {
		out = append(out, toConnectionResponse(c))
	}
	return out
}

func toTransactionResponse(tx domain.Transaction) transactionResponse {
	return transactionResponse{
		ID:          tx.ID,
		Sender:      toUserResponse(tx.Sender),
		Receiver:    toUserResponse(tx.Receiver),
		Amount:      tx.Amount.StringFixed(domain.AmountScale),
		Description: tx.Description,
		CreatedAt:   formatTimestamp(tx.CreatedAt),
	}
}

func toTransactionResponses(txs []domain.Transaction) []transactionResponse {
	out := make([]transactionResponse, 0, len(txs))
	for _, tx := range txs {
		out = append(out, toTransactionResponse(tx))
	}
	return out
}

func formatTimestamp(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}

// caller returns the authenticated user placed on the context by
// requireCaller.
func (h *APIHandlers) caller(w http.ResponseWriter, r *http.Request) (domain.User, bool) {
	user, ok := auth.CallerFromContext(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "authentication required")
	}
	return user, ok
}

// writeServiceError maps a service error onto an HTTP status. Storage
// failures are logged and reported without detail.
func (h *APIHandlers) writeServiceError(w http.ResponseWriter, err error, action string) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		h.logger.Error(action+" failed", "error", err)
		writeError(w, status, "internal error")
		return
	}
	msg, ok := domain.UserMessage(err)
	if !ok {
		msg = http.StatusText(status)
	}
	writeError(w, status, msg)
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrInvalidAmount),
		errors.Is(err, domain.ErrSelfTransferNotAllowed),
		errors.Is(err, domain.ErrSelfConnection),
		errors.Is(err, domain.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrInvalidCredentials):
		return http.StatusUnauthorized
	case errors.Is(err, domain.ErrNotConnected):
		return http.StatusForbidden
	case errors.Is(err, domain.ErrSenderNotFound),
		errors.Is(err, domain.ErrReceiverNotFound),
		errors.Is(err, domain.ErrUserNotFound),
		errors.Is(err, domain.ErrTransactionNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrEmailAlreadyUsed):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func decodeJSON(r *http.Request, dst any) error {
	if r.Body == nil {
		return errors.New("request body is required")
	}
	defer r.Body.Close()

	decoder := json.NewDecoder(http.MaxBytesReader(nil, r.Body, 1<<20))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(dst); err != nil {
		return errors.New("invalid request body: " + err.Error())
	}
	return nil
}

func writeError(w http.ResponseWriter, status int, msg string) {
	respondJSON(w, status, map[string]string{
		"error": msg,
	})
}
