package server

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"

	"github.com/vanshika/paymybuddy/backend/internal/domain"
	"github.com/vanshika/paymybuddy/backend/internal/service"
)

type transferRequest struct {
	ReceiverID  string              `json:"receiverId"`
	Amount      decimal.NullDecimal `json:"amount"`
	Description *string             `json:"description"`
}

func (h *APIHandlers) createTransfer(w http.ResponseWriter, r *http.Request) {
	caller, ok := h.caller(w, r)
	if !ok {
		return
	}

	var payload transferRequest
	if err := decodeJSON(r, &payload); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if payload.ReceiverID == "" {
		writeError(w, http.StatusBadRequest, "receiverId is required")
		return
	}

	tx, err := h.transactions.Transfer(r.Context(), caller, service.TransferInput{
		ReceiverID:  payload.ReceiverID,
		Amount:      payload.Amount,
		Description: payload.Description,
	})
	if err != nil {
		h.writeServiceError(w, err, "transfer")
		return
	}

	h.logger.Info("transfer recorded",
		"transactionId", tx.ID,
		"senderId", tx.Sender.ID,
		"receiverId", tx.Receiver.ID,
	)
	respondJSON(w, http.StatusCreated, toTransactionResponse(tx))
}

func (h *APIHandlers) listMyTransactions(w http.ResponseWriter, r *http.Request) {
	caller, ok := h.caller(w, r)
	if !ok {
		return
	}

	var (
		txs []domain.Transaction
		err error
	)
	switch role := r.URL.Query().Get("role"); role {
	case "", "sent":
		txs, err = h.transactions.GetTransactionsBySender(r.Context(), caller.ID)
	case "received":
		txs, err = h.transactions.GetTransactionsByReceiver(r.Context(), caller.ID)
	default:
		writeError(w, http.StatusBadRequest, "role must be sent or received")
		return
	}
	if err != nil {
		h.writeServiceError(w, err, "list transactions")
		return
	}

	respondJSON(w, http.StatusOK, map[string]any{
		"data": toTransactionResponses(txs),
	})
}

func (h *APIHandlers) listAllTransactions(w http.ResponseWriter, r *http.Request) {
	txs, err := h.transactions.GetAllTransactions(r.Context())
	if err != nil {
		h.writeServiceError(w, err, "list all transactions")
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"data": toTransactionResponses(txs),
	})
}

func (h *APIHandlers) getTransaction(w http.ResponseWriter, r *http.Request) {
	tx, err := h.transactions.GetTransactionByID(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		h.writeServiceError(w, err, "get transaction")
		return
	}
	respondJSON(w, http.StatusOK, toTransactionResponse(tx))
}
